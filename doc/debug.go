package doc

import (
	"pageflow/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the document for manual inspection
// during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Node(0, "Document", debug.Attr{Key: "pages", Value: len(d.Pages)})
	for i, p := range d.Pages {
		tw.page(1, i, p)
	}
	return tw.String()
}

func (tw treeWriter) page(depth, index int, p *Page) {
	if p == nil {
		tw.Line(depth, "Page[%d] <nil>", index)
		return
	}
	tw.Node(depth, "Page", debug.Attr{Key: "index", Value: index + 1}, debug.Attr{Key: "key", Value: p.Key})
	for _, s := range p.Sections {
		if s == nil {
			tw.Line(depth+1, "<nil section>")
			continue
		}
		tw.Node(depth+1, s.Kind.String(), debug.Attr{Key: "locked", Value: s.Locked}, debug.Attr{Key: "blocks", Value: len(s.Blocks)})
		for _, b := range s.Blocks {
			tw.block(depth+2, b)
		}
	}
}

func (tw treeWriter) block(depth int, b *Block) {
	if b == nil {
		tw.Line(depth, "<nil block>")
		return
	}
	switch b.Kind {
	case BlockKindText, BlockKindPagenumber:
		tw.TextBlock(depth, b.Kind.String(), b.Text)
	case BlockKindLinebreak:
		tw.Line(depth, "%s", b.Kind)
	default:
		tw.Node(depth, b.Kind.String(), debug.Attr{Key: "id", Value: b.ID})
		for _, c := range b.Children {
			tw.block(depth+1, c)
		}
	}
}
