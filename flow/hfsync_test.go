package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"pageflow/doc"
	"pageflow/layout"
)

func newTestSyncer(t *testing.T, f *fixture, sess *Session) *Syncer {
	return NewSyncer(f.m, testConfig().Layout.Geometry(), sess, zaptest.NewLogger(t))
}

func runSync(t *testing.T, s *Syncer, d *doc.Document) SyncStats {
	t.Helper()
	var stats SyncStats
	require.NoError(t, d.UpdateAs(OriginSync, func(tx *doc.Tx) error {
		stats = s.Sync(tx)
		return nil
	}))
	return stats
}

func headers(d *doc.Document) [][]string {
	res := make([][]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		res = append(res, texts(p.Header()))
	}
	return res
}

func TestSync_PropagatesHeader(t *testing.T) {
	f := newFixture(t)
	p1 := withHeader(f.page(f.block("one", 10)), doc.NewTextParagraph("Acme Corp"))
	p2 := f.page(f.block("two", 10))
	d := doc.New(p1, p2)
	sess := NewSession()
	s := newTestSyncer(t, f, sess)

	stats := runSync(t, s, d)

	assert.Equal(t, 1, stats.Rewritten)
	assert.True(t, stats.Guarded)
	assert.Equal(t, [][]string{{"Acme Corp"}, {"Acme Corp"}}, headers(d))
	assert.True(t, p2.Header().Locked)
	assert.True(t, sess.Syncing())

	// guard holds until released
	p1.Header().Blocks[0].Children[0].Text = "Acme Inc"
	assert.Zero(t, runSync(t, s, d).Rewritten)
	assert.Equal(t, "Acme Corp", p2.Header().Blocks[0].PlainText())

	sess.Release()
	assert.Equal(t, 1, runSync(t, s, d).Rewritten)
	assert.Equal(t, "Acme Inc", p2.Header().Blocks[0].PlainText())
}

func TestSync_Idempotent(t *testing.T) {
	f := newFixture(t)
	d := doc.New(
		withFooter(withHeader(f.page(), doc.NewTextParagraph("H")), doc.NewTextParagraph("F")),
		f.page(),
		f.page(),
	)
	sess := NewSession()
	s := newTestSyncer(t, f, sess)

	stats := runSync(t, s, d)
	require.Equal(t, 4, stats.Rewritten)
	sess.Release()

	notified := 0
	cancel := d.Subscribe(func(doc.Change) { notified++ })
	defer cancel()

	stats = runSync(t, s, d)
	assert.Equal(t, SyncStats{}, stats)
	assert.Zero(t, notified)
	assert.False(t, sess.Syncing())
}

func TestSync_SinglePageIsNoop(t *testing.T) {
	f := newFixture(t)
	d := doc.New(withHeader(f.page(), doc.NewTextParagraph("H")))
	sess := NewSession()

	assert.Equal(t, SyncStats{}, runSync(t, newTestSyncer(t, f, sess), d))
	assert.False(t, sess.Syncing())
}

func TestSync_NeverPropagatesEmptiness(t *testing.T) {
	f := newFixture(t)
	p1 := withHeader(f.page(), doc.NewTextParagraph("Acme Corp"))
	p2 := withHeader(f.page(), doc.NewParagraph(doc.NewText(""), doc.NewLineBreak()))
	d := doc.New(p1, p2)
	sess := NewSession()
	s := newTestSyncer(t, f, sess)

	// user cleared header of the second page and still sits there
	sess.Editing(p2.Key, doc.SectionKindHeader)
	stats := runSync(t, s, d)

	assert.Zero(t, stats.Rewritten)
	assert.Equal(t, "Acme Corp", p1.Header().Blocks[0].PlainText())

	t.Run("all empty", func(t *testing.T) {
		d := doc.New(f.page(), f.page())
		assert.Equal(t, SyncStats{}, runSync(t, newTestSyncer(t, f, NewSession()), d))
	})
}

func TestSync_ReferencePriority(t *testing.T) {
	build := func(f *fixture) (*doc.Document, []*doc.Page) {
		pages := []*doc.Page{
			withHeader(f.page(), doc.NewTextParagraph("A")),
			withHeader(f.page(), doc.NewTextParagraph("B")),
			withHeader(f.page(), doc.NewTextParagraph("C")),
		}
		return doc.New(pages...), pages
	}

	t.Run("first non empty", func(t *testing.T) {
		f := newFixture(t)
		d, _ := build(f)
		runSync(t, newTestSyncer(t, f, NewSession()), d)
		assert.Equal(t, [][]string{{"A"}, {"A"}, {"A"}}, headers(d))
	})

	t.Run("last edited", func(t *testing.T) {
		f := newFixture(t)
		d, pages := build(f)
		sess := NewSession()
		sess.Editing(pages[1].Key, doc.SectionKindHeader)
		sess.Blur()

		stats := runSync(t, newTestSyncer(t, f, sess), d)
		assert.Equal(t, 2, stats.Rewritten)
		assert.Equal(t, [][]string{{"B"}, {"B"}, {"B"}}, headers(d))
	})

	t.Run("focused when last edited is empty", func(t *testing.T) {
		f := newFixture(t)
		d, pages := build(f)
		pages[0].Header().Blocks = nil
		sess := NewSession()
		sess.Editing(pages[0].Key, doc.SectionKindHeader)
		sess.Focused(pages[2].Key, doc.SectionKindHeader)

		runSync(t, newTestSyncer(t, f, sess), d)
		assert.Equal(t, [][]string{{"C"}, {"C"}, {"C"}}, headers(d))
	})

	t.Run("focus in other kind is ignored", func(t *testing.T) {
		f := newFixture(t)
		d, pages := build(f)
		sess := NewSession()
		sess.Focused(pages[2].Key, doc.SectionKindFooter)

		runSync(t, newTestSyncer(t, f, sess), d)
		assert.Equal(t, [][]string{{"A"}, {"A"}, {"A"}}, headers(d))
	})
}

func TestSync_FocusedSectionIsExempt(t *testing.T) {
	f := newFixture(t)
	p1 := withHeader(f.page(), doc.NewTextParagraph("A"))
	p2 := withHeader(f.page(), doc.NewTextParagraph("B"))
	p3 := withHeader(f.page(), doc.NewTextParagraph("C"))
	d := doc.New(p1, p2, p3)
	sess := NewSession()
	sess.Editing(p1.Key, doc.SectionKindHeader)
	sess.Focused(p2.Key, doc.SectionKindHeader)

	stats := runSync(t, newTestSyncer(t, f, sess), d)

	assert.Equal(t, 1, stats.Rewritten)
	assert.Equal(t, 1, stats.Exempt)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"A"}}, headers(d))
}

func TestSync_KeepsPageNumbers(t *testing.T) {
	f := newFixture(t)
	pn1, pn2 := doc.NewPageNumber(), doc.NewPageNumber()
	pn1.Text, pn2.Text = "1", "2"
	p1 := withFooter(f.page(), pn1, doc.NewTextParagraph("Confidential"))
	p2 := withFooter(f.page(), pn2)
	d := doc.New(p1, p2)
	sess := NewSession()
	s := newTestSyncer(t, f, sess)

	require.Equal(t, 1, runSync(t, s, d).Rewritten)

	blocks := p2.Footer().Blocks
	require.Len(t, blocks, 2)
	assert.Same(t, pn2, blocks[0])
	assert.Equal(t, "2", pn2.Text)
	assert.Equal(t, "Confidential", blocks[1].PlainText())

	sess.Release()
	assert.Zero(t, runSync(t, s, d).Rewritten)
}

func TestSync_KeepsNestedPageNumbers(t *testing.T) {
	t.Run("same paragraph", func(t *testing.T) {
		f := newFixture(t)
		pn1, pn2 := doc.NewPageNumber(), doc.NewPageNumber()
		pn1.Text, pn2.Text = "1", "2"
		p1 := withHeader(f.page(), doc.NewParagraph(doc.NewText("Acme Corp "), pn1))
		p2 := withHeader(f.page(), doc.NewParagraph(doc.NewText("Old "), pn2))
		d := doc.New(p1, p2)
		sess := NewSession()
		s := newTestSyncer(t, f, sess)

		require.Equal(t, 1, runSync(t, s, d).Rewritten)

		blocks := p2.Header().Blocks
		require.Len(t, blocks, 1)
		require.Len(t, blocks[0].Children, 2)
		assert.Equal(t, "Acme Corp ", blocks[0].Children[0].Text)
		assert.Same(t, pn2, blocks[0].Children[1])
		assert.Equal(t, "2", pn2.Text)
		assert.Equal(t, []*doc.Block{pn1}, p1.Header().PageNumbers())

		sess.Release()
		assert.Zero(t, runSync(t, s, d).Rewritten)
	})

	t.Run("no paragraph at position", func(t *testing.T) {
		f := newFixture(t)
		pn := doc.NewPageNumber()
		pn.Text = "2"
		p1 := withHeader(f.page(), doc.NewTextParagraph("Acme Corp"))
		p2 := withHeader(f.page(), doc.NewTextParagraph("Old"), doc.NewParagraph(doc.NewText("Page "), pn))
		d := doc.New(p1, p2)

		require.Equal(t, 1, runSync(t, newTestSyncer(t, f, NewSession()), d).Rewritten)

		blocks := p2.Header().Blocks
		require.Len(t, blocks, 2)
		assert.Equal(t, "Acme Corp", blocks[0].PlainText())
		assert.Same(t, pn, blocks[1])
		assert.Equal(t, []*doc.Block{pn}, p2.Header().PageNumbers())
	})
}

func TestSync_SkipsMalformedNodes(t *testing.T) {
	f := newFixture(t)
	p1 := withHeader(f.page(),
		doc.NewParagraph(doc.NewText("Acme"), nil),
		&doc.Block{ID: "bogus", Kind: doc.BlockKind(99)},
	)
	p2 := f.page()
	d := doc.New(p1, p2)

	core, logs := observer.New(zap.WarnLevel)
	s := NewSyncer(f.m, testConfig().Layout.Geometry(), NewSession(), zap.New(core))

	require.Equal(t, 1, runSync(t, s, d).Rewritten)
	assert.Equal(t, []string{"Acme"}, texts(p2.Header()))
	assert.Equal(t, 1, logs.FilterMessageSnippet("Malformed nodes").Len())
}

func TestSync_WarnsOnOversizedReference(t *testing.T) {
	f := newFixture(t)
	big := doc.NewTextParagraph("Very tall header")
	d := doc.New(withHeader(f.page(), big), f.page())

	var measured []string
	m := layout.Func(func(b *doc.Block) (float64, bool) {
		measured = append(measured, b.ID)
		return 45, true
	})
	core, logs := observer.New(zap.WarnLevel)
	s := NewSyncer(m, testConfig().Layout.Geometry(), NewSession(), zap.New(core))

	require.Equal(t, 1, runSync(t, s, d).Rewritten)
	assert.Contains(t, measured, big.ID)
	assert.Equal(t, 1, logs.FilterMessageSnippet("does not fit").Len())
	assert.Equal(t, "Very tall header", d.Pages[1].Header().Blocks[0].PlainText())
}
