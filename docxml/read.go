// Package docxml reads and writes paginated documents as simple XML:
//
//	<document>
//	  <page key="...">
//	    <header><paragraph><text>Acme Corp</text><pagenumber/></paragraph></header>
//	    <content><paragraph id="b1" extent="40"><text>...</text></paragraph></content>
//	    <footer/>
//	  </page>
//	</document>
//
// Optional extent attributes carry measured block heights.
package docxml

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"pageflow/doc"
	"pageflow/layout"
)

// Parsed is the result of reading document.
type Parsed struct {
	Doc *doc.Document
	// Extents holds values of "extent" attributes keyed by block ID, never nil.
	Extents *layout.Static
}

var declaredEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=`)

// Read parses document. Parsing is permissive: unknown elements and bad
// attribute values are skipped with a warning, missing or repeated page keys
// and block IDs are replaced. Document without encoding declaration which is
// not valid UTF-8 is decoded using fallback when one is provided.
func Read(r io.Reader, fallback encoding.Encoding, log *zap.Logger) (*Parsed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	if fallback != nil && !declaredEncoding.Match(data) && !utf8.Valid(data) {
		if data, err = fallback.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("unable to decode document: %w", err)
		}
	}

	xd := etree.NewDocument()
	xd.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if _, err := xd.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}

	root := xd.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "document" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	p := &parser{
		log:     log,
		extents: layout.NewStatic(),
		ids:     make(map[string]bool),
		keys:    make(map[string]bool),
	}
	var pages []*doc.Page
	for _, child := range root.ChildElements() {
		if child.Tag != "page" {
			log.Warn("Unexpected tag in document, ignoring", zap.String("tag", child.Tag))
			continue
		}
		pages = append(pages, p.page(child))
	}
	return &Parsed{Doc: doc.New(pages...), Extents: p.extents}, nil
}

type parser struct {
	log     *zap.Logger
	extents *layout.Static
	ids     map[string]bool
	keys    map[string]bool
}

func (p *parser) page(el *etree.Element) *doc.Page {
	page := &doc.Page{Key: el.SelectAttrValue("key", "")}
	if page.Key == "" || p.keys[page.Key] {
		if page.Key != "" {
			p.log.Warn("Duplicate page key, replacing", zap.String("key", page.Key))
		}
		page.Key = doc.NewID()
	}
	p.keys[page.Key] = true

	// sections are taken as they are, structure enforcement fixes order and
	// multiplicity later
	for _, child := range el.ChildElements() {
		kind, err := doc.ParseSectionKind(child.Tag)
		if err != nil {
			p.log.Warn("Unexpected tag in page, ignoring", zap.String("page", page.Key), zap.String("tag", child.Tag))
			continue
		}
		sec := doc.NewSection(kind)
		if v := child.SelectAttr("locked"); v != nil {
			if locked, err := strconv.ParseBool(v.Value); err == nil {
				sec.Locked = locked
			} else {
				p.log.Warn("Bad locked attribute value, ignoring", zap.String("page", page.Key), zap.String("value", v.Value))
			}
		}
		sec.Blocks = p.blocks(child, true)
		page.Sections = append(page.Sections, sec)
	}
	return page
}

// blocks parses children of a section (top) or a paragraph.
func (p *parser) blocks(el *etree.Element, top bool) []*doc.Block {
	var res []*doc.Block
	for _, node := range el.Child {
		switch token := node.(type) {
		case *etree.CharData:
			// loose text inside paragraph is a text run
			if top || strings.TrimSpace(token.Data) == "" {
				continue
			}
			res = append(res, doc.NewText(token.Data))
		case *etree.Element:
			if b := p.block(token, top); b != nil {
				res = append(res, b)
			}
		}
	}
	return res
}

func (p *parser) block(el *etree.Element, top bool) *doc.Block {
	kind, err := doc.ParseBlockKind(el.Tag)
	if err != nil || (kind == doc.BlockKindParagraph && !top) {
		p.log.Warn("Unexpected block tag, ignoring", zap.String("parent", el.Parent().Tag), zap.String("tag", el.Tag))
		return nil
	}

	b := &doc.Block{ID: el.SelectAttrValue("id", ""), Kind: kind}
	if b.ID == "" || p.ids[b.ID] {
		if b.ID != "" {
			p.log.Warn("Duplicate block id, replacing", zap.String("id", b.ID))
		}
		b.ID = doc.NewID()
	}
	p.ids[b.ID] = true

	switch kind {
	case doc.BlockKindParagraph:
		b.Children = p.blocks(el, false)
	case doc.BlockKindText, doc.BlockKindPagenumber:
		b.Text = el.Text()
	}

	if v := el.SelectAttr("extent"); v != nil {
		if e, err := strconv.ParseFloat(v.Value, 64); err == nil && e >= 0 {
			p.extents.Set(b.ID, e)
		} else {
			p.log.Warn("Bad extent attribute value, ignoring", zap.String("id", b.ID), zap.String("value", v.Value))
		}
	}
	return b
}
