package layout

import (
	"pageflow/doc"
)

// Geometry describes fixed page layout: heights of header and footer regions
// and vertical capacity of the content region between them.
type Geometry struct {
	ContentCapacity float64
	HeaderHeight    float64
	FooterHeight    float64
}

func (g Geometry) PageHeight() float64 {
	return g.HeaderHeight + g.ContentCapacity + g.FooterHeight
}

// Capacity returns capacity of the section region of requested kind.
func (g Geometry) Capacity(kind doc.SectionKind) float64 {
	switch kind {
	case doc.SectionKindHeader:
		return g.HeaderHeight
	case doc.SectionKindFooter:
		return g.FooterHeight
	default:
		return g.ContentCapacity
	}
}

// Overflow returns by how much section exceeds its region, 0 when it fits or
// cannot be measured. Zero region height means unlimited.
func (g Geometry) Overflow(m Measurer, s *doc.Section) float64 {
	limit := g.Capacity(s.Kind)
	if limit <= 0 {
		return 0
	}
	e, ok := SectionExtent(m, s)
	if !ok || e <= limit {
		return 0
	}
	return e - limit
}
