package layout

import (
	"testing"

	"pageflow/doc"
)

func TestSectionExtent(t *testing.T) {
	a, b := doc.NewTextParagraph("a"), doc.NewTextParagraph("b")
	s := &doc.Section{Kind: doc.SectionKindContent, Blocks: []*doc.Block{a, b}}

	m := NewStatic()
	m.Set(a.ID, 40)

	if _, ok := SectionExtent(m, s); ok {
		t.Fatal("extent must be unavailable while a block is not measured")
	}
	m.Set(b.ID, 25)
	e, ok := SectionExtent(m, s)
	if !ok || e != 65 {
		t.Fatalf("SectionExtent() = %v, %v; want 65, true", e, ok)
	}

	extents, ok := BlockExtents(m, s)
	if !ok || len(extents) != 2 || extents[0] != 40 || extents[1] != 25 {
		t.Fatalf("BlockExtents() = %v, %v", extents, ok)
	}

	m.Forget(a.ID)
	if _, ok := BlockExtents(m, s); ok {
		t.Fatal("forgotten block must be unavailable")
	}
}

func TestStaticSplitHint(t *testing.T) {
	orig := doc.NewText("aaaaaa")
	head, tail := doc.NewText("aaaa"), doc.NewText("aa")

	m := NewStatic()
	m.Set(orig.ID, 90)
	m.SplitHint(orig, head, tail)

	he, ok := m.MeasureBlock(head)
	if !ok || he != 60 {
		t.Errorf("head extent = %v, %v; want 60", he, ok)
	}
	te, ok := m.MeasureBlock(tail)
	if !ok || te != 30 {
		t.Errorf("tail extent = %v, %v; want 30", te, ok)
	}

	unknown := doc.NewText("zz")
	m.SplitHint(unknown, doc.NewText("z"), doc.NewText("z"))
	if m.Len() != 3 {
		t.Errorf("hint for unknown block must be ignored, have %d extents", m.Len())
	}
}

func TestStaticMerge(t *testing.T) {
	a, b := doc.NewText("a"), doc.NewText("b")

	m := NewStatic()
	m.Set(a.ID, 10)
	o := NewStatic()
	o.Set(a.ID, 15)
	o.Set(b.ID, 20)

	m.Merge(o)
	m.Merge(m)
	if e, _ := m.MeasureBlock(a); e != 15 {
		t.Errorf("merged extent of a = %v, want 15", e)
	}
	if e, ok := m.MeasureBlock(b); !ok || e != 20 {
		t.Errorf("merged extent of b = %v, %v; want 20", e, ok)
	}
}

func TestEstimator(t *testing.T) {
	e := Estimator{LineHeight: 20, CharsPerLine: 10, ParagraphSpacing: 5}

	tests := []struct {
		name  string
		block *doc.Block
		want  float64
	}{
		{"empty paragraph", doc.NewParagraph(), 25},
		{"short paragraph", doc.NewTextParagraph("hello"), 25},
		{"wrapped paragraph", doc.NewTextParagraph("0123456789abc"), 45},
		{"explicit break", doc.NewParagraph(doc.NewText("a"), doc.NewLineBreak(), doc.NewText("b")), 45},
		{"bare text run", doc.NewText("0123456789012345678901"), 60},
		{"line break", doc.NewLineBreak(), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.MeasureBlock(tt.block)
			if !ok {
				t.Fatal("estimator must always be available")
			}
			if got != tt.want {
				t.Errorf("MeasureBlock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	g := Geometry{ContentCapacity: 100, HeaderHeight: 20, FooterHeight: 10}
	if g.PageHeight() != 130 {
		t.Errorf("PageHeight() = %v", g.PageHeight())
	}

	h := doc.NewSection(doc.SectionKindHeader)
	h.Blocks = []*doc.Block{doc.NewTextParagraph("a"), doc.NewTextParagraph("b")}
	m := Func(func(*doc.Block) (float64, bool) { return 15, true })

	if got := g.Overflow(m, h); got != 10 {
		t.Errorf("header Overflow() = %v, want 10", got)
	}
	c := doc.NewSection(doc.SectionKindContent)
	c.Blocks = h.Blocks
	if got := g.Overflow(m, c); got != 0 {
		t.Errorf("content Overflow() = %v, want 0", got)
	}
	if got := (Geometry{ContentCapacity: 100}).Overflow(m, h); got != 0 {
		t.Errorf("unlimited header must never overflow, got %v", got)
	}
}
