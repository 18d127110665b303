package flow

import (
	"testing"
	"time"

	"pageflow/config"
	"pageflow/doc"
	"pageflow/layout"
)

func testConfig() *config.Config {
	return &config.Config{
		Version: 1,
		Layout: config.LayoutConfig{
			PageContentCapacity:       100,
			HeaderHeight:              30,
			FooterHeight:              30,
			MinimumTextLengthForSplit: 20,
			MaxReflowPasses:           10,
		},
		Engine: config.EngineConfig{
			Debounce: 10 * time.Millisecond,
		},
	}
}

// fixture builds documents with known block extents.
type fixture struct {
	t *testing.T
	m *layout.Static
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, m: layout.NewStatic()}
}

func (f *fixture) block(text string, extent float64) *doc.Block {
	b := doc.NewTextParagraph(text)
	f.m.Set(b.ID, extent)
	return b
}

func (f *fixture) page(blocks ...*doc.Block) *doc.Page {
	p := doc.NewPage()
	p.Content().Blocks = blocks
	return p
}

func withHeader(p *doc.Page, blocks ...*doc.Block) *doc.Page {
	p.Header().Blocks = blocks
	return p
}

func withFooter(p *doc.Page, blocks ...*doc.Block) *doc.Page {
	p.Footer().Blocks = blocks
	return p
}

// texts returns plain text of every block of the section.
func texts(s *doc.Section) []string {
	res := make([]string, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		res = append(res, b.PlainText())
	}
	return res
}

// contents returns texts of content sections of all pages.
func contents(d *doc.Document) [][]string {
	res := make([][]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		res = append(res, texts(p.Content()))
	}
	return res
}

func update(t *testing.T, d *doc.Document, fn func(tx *doc.Tx)) {
	t.Helper()
	if err := d.Update(func(tx *doc.Tx) error {
		fn(tx)
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}
