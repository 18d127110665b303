// Package layout provides measured extents of document blocks. The engine
// never looks at rendering directly, it asks a Measurer.
package layout

import (
	"maps"
	"math"
	"sync"

	"pageflow/doc"
)

// Measurer reports rendered vertical extent of a block. The second return
// value is false while block has not been laid out yet.
type Measurer interface {
	MeasureBlock(b *doc.Block) (float64, bool)
}

// Func adapts a plain function to Measurer.
type Func func(b *doc.Block) (float64, bool)

func (f Func) MeasureBlock(b *doc.Block) (float64, bool) {
	return f(b)
}

// SectionExtent sums extents of all section blocks. It is unavailable when
// any of the blocks is.
func SectionExtent(m Measurer, s *doc.Section) (float64, bool) {
	var total float64
	if s == nil {
		return 0, true
	}
	for _, b := range s.Blocks {
		e, ok := m.MeasureBlock(b)
		if !ok {
			return 0, false
		}
		total += e
	}
	return total, true
}

// BlockExtents measures every block of the section, see SectionExtent.
func BlockExtents(m Measurer, s *doc.Section) ([]float64, bool) {
	res := make([]float64, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		e, ok := m.MeasureBlock(b)
		if !ok {
			return nil, false
		}
		res = append(res, e)
	}
	return res, true
}

// Splitter is implemented by measurers which keep per block state and need
// to know when a block was split in two.
type Splitter interface {
	SplitHint(orig, head, tail *doc.Block)
}

// Static keeps externally supplied extents by block ID. Safe for concurrent
// use.
type Static struct {
	mu      sync.RWMutex
	extents map[string]float64
}

func NewStatic() *Static {
	return &Static{extents: make(map[string]float64)}
}

func (s *Static) Set(id string, extent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extents[id] = extent
}

func (s *Static) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.extents, id)
}

// Merge copies extents known to o, replacing existing ones.
func (s *Static) Merge(o *Static) {
	if s == o {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.extents, o.extents)
}

// Len returns number of known extents.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.extents)
}

func (s *Static) MeasureBlock(b *doc.Block) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.extents[b.ID]
	return e, ok
}

// SplitHint divides extent of the original block between both parts
// proportionally to their text length.
func (s *Static) SplitHint(orig, head, tail *doc.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.extents[orig.ID]
	if !ok {
		return
	}
	hl, tl := head.TextLen(), tail.TextLen()
	if hl+tl == 0 {
		return
	}
	he := math.Round(e*float64(hl)/float64(hl+tl)*100) / 100
	s.extents[head.ID] = he
	s.extents[tail.ID] = e - he
}
