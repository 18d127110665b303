// Package flow keeps paginated document consistent: it enforces page
// structure, moves content blocks between pages when they overflow or
// underflow, synchronizes running headers and footers and removes pages which
// lost their content.
package flow

import (
	"pageflow/doc"
)

var sectionOrder = [...]doc.SectionKind{doc.SectionKindHeader, doc.SectionKindContent, doc.SectionKindFooter}

// runningKinds are section kinds synchronized between pages.
var runningKinds = [...]doc.SectionKind{doc.SectionKindHeader, doc.SectionKindFooter}

// EnforceStructure rewrites page children to be exactly header, content and
// footer. First section of every kind wins and keeps its blocks, missing ones
// are created empty, extras are dropped. Reports whether page was changed.
func EnforceStructure(tx *doc.Tx, p *doc.Page) bool {
	if p.WellFormed() {
		return false
	}
	sections := make([]*doc.Section, 0, len(sectionOrder))
	for _, kind := range sectionOrder {
		s := p.Section(kind)
		if s == nil {
			s = doc.NewSection(kind)
		}
		sections = append(sections, s)
	}
	// page comes from the same transaction, this cannot fail
	_ = tx.SetSections(p, sections...)
	return true
}

// EnforceDocument applies EnforceStructure to every page and returns number
// of pages changed.
func EnforceDocument(tx *doc.Tx) int {
	var n int
	for _, p := range tx.Pages() {
		if EnforceStructure(tx, p) {
			n++
		}
	}
	return n
}
