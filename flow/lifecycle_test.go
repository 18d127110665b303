package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pageflow/config"
	"pageflow/doc"
)

func runLifecycle(t *testing.T, l *Lifecycle, d *doc.Document) LifecycleStats {
	t.Helper()
	var stats LifecycleStats
	require.NoError(t, d.UpdateAs(OriginLifecycle, func(tx *doc.Tx) error {
		stats = l.Run(tx)
		return nil
	}))
	return stats
}

func TestLifecycle_EmptyDocumentGetsPage(t *testing.T) {
	d := doc.New()
	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, LifecycleStats{Created: 1}, stats)
	require.Len(t, d.Pages, 1)
	assert.True(t, d.Pages[0].WellFormed())
}

func TestLifecycle_RemovesPagesWithoutContent(t *testing.T) {
	f := newFixture(t)
	p1 := f.page()
	p2 := f.page(f.block("B", 10))
	d := doc.New(p1, p2)
	sess := NewSession()
	sess.Editing(p1.Key, doc.SectionKindHeader)

	stats := runLifecycle(t, NewLifecycle(sess, zaptest.NewLogger(t)), d)

	assert.Equal(t, 1, stats.Removed)
	require.Len(t, d.Pages, 1)
	assert.Same(t, p2, d.Pages[0])
	assert.Empty(t, sess.LastEdited(doc.SectionKindHeader))
}

func TestLifecycle_EmptyRunningSectionsNeverRemovePage(t *testing.T) {
	f := newFixture(t)
	d := doc.New(f.page(f.block("a", 10)), f.page(f.block("b", 10)), f.page(f.block("", 10)))

	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, LifecycleStats{}, stats)
	assert.Len(t, d.Pages, 3)
}

func TestLifecycle_KeepsFirstWhenNothingHasContent(t *testing.T) {
	f := newFixture(t)
	p1, p2, p3 := f.page(), f.page(), f.page()
	d := doc.New(p1, p2, p3)

	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, 2, stats.Removed)
	require.Len(t, d.Pages, 1)
	assert.Same(t, p1, d.Pages[0])
}

func TestLifecycle_MigratesRunningSections(t *testing.T) {
	f := newFixture(t)
	p1 := withFooter(withHeader(f.page(), doc.NewTextParagraph("Acme Corp")), doc.NewTextParagraph("Draft"))
	p2 := withFooter(f.page(f.block("B", 10)), doc.NewTextParagraph("Final"))
	d := doc.New(p1, p2)

	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, 1, stats.Migrated)
	require.Len(t, d.Pages, 1)
	assert.Equal(t, []string{"Acme Corp"}, texts(p2.Header()))
	// survivor footer had content and is kept
	assert.Equal(t, []string{"Final"}, texts(p2.Footer()))
}

func TestLifecycle_MigrationKeepsNestedPageNumbers(t *testing.T) {
	f := newFixture(t)
	pn1, pn2 := doc.NewPageNumber(), doc.NewPageNumber()
	pn1.Text, pn2.Text = "1", "2"
	p1 := withHeader(f.page(), doc.NewParagraph(doc.NewText("Acme Corp "), pn1))
	p2 := withHeader(f.page(f.block("B", 10)), doc.NewParagraph(pn2))
	d := doc.New(p1, p2)

	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, 1, stats.Migrated)
	require.Len(t, d.Pages, 1)
	blocks := p2.Header().Blocks
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Children, 2)
	assert.Equal(t, "Acme Corp ", blocks[0].Children[0].Text)
	assert.Same(t, pn2, blocks[0].Children[1])
	assert.Equal(t, "1", pn2.Text)
}

func TestLifecycle_SinglePageNumberIsOne(t *testing.T) {
	f := newFixture(t)
	pn := doc.NewPageNumber()
	pn.Text = "2"
	p1 := f.page()
	p2 := withFooter(f.page(f.block("B", 10)), pn)
	d := doc.New(p1, p2)

	stats := runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d)

	assert.Equal(t, 1, stats.Renumbered)
	assert.Equal(t, "1", pn.Text)

	// already normalized
	assert.Equal(t, LifecycleStats{}, runLifecycle(t, NewLifecycle(NewSession(), zaptest.NewLogger(t)), d))
}

func TestNumberer(t *testing.T) {
	tests := []struct {
		name      string
		placement config.PageNumberPlacement
		header    []string
		footer    []string
	}{
		{"none", config.PageNumberPlacementNone, []string{"", ""}, []string{"", ""}},
		{"header", config.PageNumberPlacementHeader, []string{"1", "2"}, []string{"", ""}},
		{"footer", config.PageNumberPlacementFooter, []string{"", ""}, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc.New(doc.NewPage(), doc.NewPage())
			n := NewNumberer(tt.placement, zaptest.NewLogger(t))

			var changed int
			update(t, d, func(tx *doc.Tx) { changed = n.Run(tx) })

			for i, p := range d.Pages {
				assert.Equal(t, tt.header[i], pageNumber(p.Header()), "header of page %d", i)
				assert.Equal(t, tt.footer[i], pageNumber(p.Footer()), "footer of page %d", i)
			}
			if tt.placement == config.PageNumberPlacementNone {
				assert.Zero(t, changed)
			} else {
				assert.Equal(t, 2, changed)
			}

			// second run finds nothing to do
			update(t, d, func(tx *doc.Tx) { changed = n.Run(tx) })
			assert.Zero(t, changed)
		})
	}
}

func TestNumberer_Renumbers(t *testing.T) {
	pages := []*doc.Page{doc.NewPage(), doc.NewPage(), doc.NewPage()}
	for i, p := range pages {
		pn := doc.NewPageNumber()
		pn.Text = "9"
		// nested page numbers are maintained as well
		if i == 1 {
			p.Header().Blocks = []*doc.Block{doc.NewParagraph(doc.NewText("Page "), pn)}
			continue
		}
		p.Header().Blocks = []*doc.Block{pn}
	}
	d := doc.New(pages...)
	n := NewNumberer(config.PageNumberPlacementNone, zaptest.NewLogger(t))

	update(t, d, func(tx *doc.Tx) { n.Run(tx) })

	for i, p := range d.Pages {
		assert.Equal(t, []string{"1", "2", "3"}[i], pageNumber(p.Header()))
	}
}

func pageNumber(s *doc.Section) string {
	pns := s.PageNumbers()
	if len(pns) == 0 {
		return ""
	}
	return pns[0].Text
}
