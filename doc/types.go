// Package doc is an in-memory paginated document tree: pages made of header,
// content and footer sections holding ordered blocks. All mutations go through
// Document.Update which serializes writers and notifies subscribers.
package doc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrSectionLocked  = errors.New("section is locked")
	ErrUnknownPage    = errors.New("page does not belong to document")
	ErrUnknownSection = errors.New("section does not belong to document")
	ErrMalformedBlock = errors.New("malformed block")
)

// Block is a single content unit. Paragraphs carry children, text runs and
// page numbers carry Text, line breaks carry nothing.
type Block struct {
	ID       string
	Kind     BlockKind
	Text     string
	Children []*Block
}

// NewID returns fresh identifier usable as block ID or page key.
func NewID() string {
	return uuid.NewString()
}

func NewText(text string) *Block {
	return &Block{ID: NewID(), Kind: BlockKindText, Text: text}
}

func NewLineBreak() *Block {
	return &Block{ID: NewID(), Kind: BlockKindLinebreak}
}

// NewPageNumber creates page number placeholder. Its value is maintained by
// page numbering and never copied between pages.
func NewPageNumber() *Block {
	return &Block{ID: NewID(), Kind: BlockKindPagenumber}
}

func NewParagraph(children ...*Block) *Block {
	return &Block{ID: NewID(), Kind: BlockKindParagraph, Children: children}
}

// NewTextParagraph is a shortcut for a paragraph with a single text run.
func NewTextParagraph(text string) *Block {
	return NewParagraph(NewText(text))
}

// PlainText returns block text. Line breaks are rendered as new lines, page
// numbers are ignored.
func (b *Block) PlainText() string {
	var buf strings.Builder
	b.writeText(&buf)
	return buf.String()
}

func (b *Block) writeText(buf *strings.Builder) {
	if b == nil {
		return
	}
	switch b.Kind {
	case BlockKindText:
		buf.WriteString(b.Text)
	case BlockKindLinebreak:
		buf.WriteByte('\n')
	case BlockKindParagraph:
		for _, c := range b.Children {
			c.writeText(buf)
		}
	}
}

// TextLen is the length of normalized (NFC) plain text in runes.
func (b *Block) TextLen() int {
	return utf8.RuneCountInString(norm.NFC.String(b.PlainText()))
}

// IsEmpty reports blocks which do not show anything meaningful: empty text
// runs, line breaks and paragraphs consisting only of those. Page numbers are
// page local and do not count as content either.
func (b *Block) IsEmpty() bool {
	if b == nil {
		return true
	}
	switch b.Kind {
	case BlockKindText:
		return len(b.Text) == 0
	case BlockKindLinebreak, BlockKindPagenumber:
		return true
	case BlockKindParagraph:
		for _, c := range b.Children {
			if c == nil {
				continue
			}
			switch c.Kind {
			case BlockKindText:
				if len(c.Text) != 0 {
					return false
				}
			case BlockKindLinebreak, BlockKindPagenumber:
			default:
				return false
			}
		}
		return true
	}
	return false
}

// Validate checks block structure: known kind, only paragraphs have
// children, no nil children.
func (b *Block) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil block", ErrMalformedBlock)
	}
	if !b.Kind.IsValid() {
		return fmt.Errorf("%w: %s has unknown kind %s", ErrMalformedBlock, b.ID, b.Kind)
	}
	if b.Kind != BlockKindParagraph && len(b.Children) > 0 {
		return fmt.Errorf("%w: %s of kind %s has children", ErrMalformedBlock, b.ID, b.Kind)
	}
	for _, c := range b.Children {
		if c == nil {
			return fmt.Errorf("%w: %s has nil child", ErrMalformedBlock, b.ID)
		}
	}
	return nil
}

// Walk visits block and all its descendants depth first. Returning false from
// fn stops descending into children of the current block.
func (b *Block) Walk(fn func(*Block) bool) {
	if b == nil || !fn(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Section is one of header, content or footer of a page.
type Section struct {
	Kind   SectionKind
	Locked bool
	Blocks []*Block
}

// NewSection creates empty section of requested kind. Running sections
// (header and footer) are locked from creation, content never is.
func NewSection(kind SectionKind) *Section {
	return &Section{Kind: kind, Locked: kind.IsRunning()}
}

// IsEmpty is true when section has no blocks or all of them are empty.
func (s *Section) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, b := range s.Blocks {
		if !b.IsEmpty() {
			return false
		}
	}
	return true
}

// PageNumbers returns all page number blocks in the section, recursively.
func (s *Section) PageNumbers() []*Block {
	if s == nil {
		return nil
	}
	var res []*Block
	for _, b := range s.Blocks {
		b.Walk(func(n *Block) bool {
			if n.Kind == BlockKindPagenumber {
				res = append(res, n)
			}
			return true
		})
	}
	return res
}

// Page has stable Key which survives any edit. Sections are kept in a slice
// since external edits may temporarily break header/content/footer order.
type Page struct {
	Key      string
	Sections []*Section
}

// NewPage creates well formed page with empty sections.
func NewPage() *Page {
	return &Page{
		Key: NewID(),
		Sections: []*Section{
			NewSection(SectionKindHeader),
			NewSection(SectionKindContent),
			NewSection(SectionKindFooter),
		},
	}
}

// Section returns first section of requested kind or nil.
func (p *Page) Section(kind SectionKind) *Section {
	for _, s := range p.Sections {
		if s != nil && s.Kind == kind {
			return s
		}
	}
	return nil
}

func (p *Page) Header() *Section  { return p.Section(SectionKindHeader) }
func (p *Page) Content() *Section { return p.Section(SectionKindContent) }
func (p *Page) Footer() *Section  { return p.Section(SectionKindFooter) }

// WellFormed reports whether page has exactly header, content and footer in
// this order.
func (p *Page) WellFormed() bool {
	if len(p.Sections) != 3 {
		return false
	}
	for i, kind := range []SectionKind{SectionKindHeader, SectionKindContent, SectionKindFooter} {
		if p.Sections[i] == nil || p.Sections[i].Kind != kind {
			return false
		}
	}
	return true
}
