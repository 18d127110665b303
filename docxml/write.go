package docxml

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"pageflow/doc"
	"pageflow/layout"
)

// Write serializes document. When extents are provided known block extents
// are written as attributes.
func Write(w io.Writer, d *doc.Document, extents layout.Measurer) error {
	xd := etree.NewDocument()
	xd.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	xd.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := xd.CreateElement("document")
	d.View(func(d *doc.Document) {
		for _, p := range d.Pages {
			writePage(root, p, extents)
		}
	})

	xd.Indent(2)
	if _, err := xd.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}

func writePage(parent *etree.Element, p *doc.Page, extents layout.Measurer) {
	el := parent.CreateElement("page")
	el.CreateAttr("key", p.Key)
	for _, s := range p.Sections {
		sel := el.CreateElement(s.Kind.String())
		if s.Locked != s.Kind.IsRunning() {
			sel.CreateAttr("locked", strconv.FormatBool(s.Locked))
		}
		for _, b := range s.Blocks {
			writeBlock(sel, b, extents)
		}
	}
}

func writeBlock(parent *etree.Element, b *doc.Block, extents layout.Measurer) {
	if b == nil || !b.Kind.IsValid() {
		return
	}
	el := parent.CreateElement(b.Kind.String())
	el.CreateAttr("id", b.ID)
	if extents != nil {
		if e, ok := extents.MeasureBlock(b); ok {
			el.CreateAttr("extent", strconv.FormatFloat(e, 'f', -1, 64))
		}
	}
	switch b.Kind {
	case doc.BlockKindParagraph:
		for _, c := range b.Children {
			writeBlock(el, c, extents)
		}
	case doc.BlockKindText, doc.BlockKindPagenumber:
		if b.Text != "" {
			el.SetText(b.Text)
		}
	}
}
