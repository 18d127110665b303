package doc

import (
	"fmt"
	"slices"
)

// Tx gives access to document mutation primitives inside Update. It must not
// be retained after Update returns.
type Tx struct {
	doc        *Document
	closed     bool
	changed    bool
	structural bool
	pages      []string
	touched    map[string]struct{}
}

// Doc returns document being updated, for reading.
func (tx *Tx) Doc() *Document {
	return tx.doc
}

// Pages returns current page list. The slice must not be modified directly.
func (tx *Tx) Pages() []*Page {
	return tx.doc.Pages
}

// EditMode reports whether document is in header/footer edit mode.
func (tx *Tx) EditMode() bool {
	return tx.doc.editMode
}

func (tx *Tx) touch(p *Page, structural bool) {
	if tx.closed {
		panic("doc: transaction used after Update returned")
	}
	tx.changed = true
	if structural {
		tx.structural = true
	}
	if p == nil {
		return
	}
	if _, ok := tx.touched[p.Key]; !ok {
		tx.touched[p.Key] = struct{}{}
		tx.pages = append(tx.pages, p.Key)
	}
}

func (tx *Tx) owner(s *Section) (*Page, error) {
	p := tx.doc.Owner(s)
	if p == nil {
		return nil, ErrUnknownSection
	}
	return p, nil
}

// InsertPage inserts new well formed empty page at position at (clamped to
// document bounds) and returns it.
func (tx *Tx) InsertPage(at int) *Page {
	at = max(0, min(at, len(tx.doc.Pages)))
	p := NewPage()
	tx.doc.Pages = slices.Insert(tx.doc.Pages, at, p)
	tx.touch(p, true)
	return p
}

// AppendPage adds new empty page at the end of the document.
func (tx *Tx) AppendPage() *Page {
	return tx.InsertPage(len(tx.doc.Pages))
}

// RemovePage removes page from the document.
func (tx *Tx) RemovePage(p *Page) error {
	i := slices.Index(tx.doc.Pages, p)
	if i < 0 {
		return ErrUnknownPage
	}
	tx.doc.Pages = slices.Delete(tx.doc.Pages, i, i+1)
	tx.touch(p, true)
	return nil
}

// ReplacePages replaces the whole page list. Both old and new pages are
// reported as touched.
func (tx *Tx) ReplacePages(pages ...*Page) {
	for _, p := range tx.doc.Pages {
		tx.touch(p, true)
	}
	for _, p := range pages {
		tx.touch(p, true)
	}
	tx.doc.Pages = pages
}

// SetSections replaces page direct children. Sections are not descended into.
func (tx *Tx) SetSections(p *Page, sections ...*Section) error {
	if !slices.Contains(tx.doc.Pages, p) {
		return ErrUnknownPage
	}
	p.Sections = sections
	tx.touch(p, true)
	return nil
}

// InsertBlocks inserts blocks into section before position at (clamped).
func (tx *Tx) InsertBlocks(s *Section, at int, blocks ...*Block) error {
	p, err := tx.owner(s)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	at = max(0, min(at, len(s.Blocks)))
	s.Blocks = slices.Insert(s.Blocks, at, blocks...)
	tx.touch(p, false)
	return nil
}

// AppendBlocks adds blocks to the end of the section.
func (tx *Tx) AppendBlocks(s *Section, blocks ...*Block) error {
	return tx.InsertBlocks(s, len(s.Blocks), blocks...)
}

// RemoveBlocks detaches blocks [from, to) from the section and returns them
// in original order.
func (tx *Tx) RemoveBlocks(s *Section, from, to int) ([]*Block, error) {
	p, err := tx.owner(s)
	if err != nil {
		return nil, err
	}
	if from < 0 || to > len(s.Blocks) || from > to {
		return nil, fmt.Errorf("invalid block range [%d, %d) for %d blocks", from, to, len(s.Blocks))
	}
	if from == to {
		return nil, nil
	}
	removed := slices.Clone(s.Blocks[from:to])
	s.Blocks = slices.Delete(s.Blocks, from, to)
	tx.touch(p, false)
	return removed, nil
}

// ClearSection removes all top level blocks for which keep returns false
// (all blocks when keep is nil) and returns removed ones.
func (tx *Tx) ClearSection(s *Section, keep func(*Block) bool) ([]*Block, error) {
	p, err := tx.owner(s)
	if err != nil {
		return nil, err
	}
	var kept, removed []*Block
	for _, b := range s.Blocks {
		if keep != nil && keep(b) {
			kept = append(kept, b)
			continue
		}
		removed = append(removed, b)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	s.Blocks = kept
	tx.touch(p, false)
	return removed, nil
}

// SetText changes text of a text run or page number. It is noop when text is
// the same.
func (tx *Tx) SetText(s *Section, b *Block, text string) error {
	p, err := tx.owner(s)
	if err != nil {
		return err
	}
	if b.Kind != BlockKindText && b.Kind != BlockKindPagenumber {
		return fmt.Errorf("%w: cannot set text on %s", ErrMalformedBlock, b.Kind)
	}
	if b.Text == text {
		return nil
	}
	b.Text = text
	tx.touch(p, false)
	return nil
}

// ReplaceChildren sets new children of the paragraph block.
func (tx *Tx) ReplaceChildren(s *Section, b *Block, children ...*Block) error {
	p, err := tx.owner(s)
	if err != nil {
		return err
	}
	if b.Kind != BlockKindParagraph {
		return fmt.Errorf("%w: %s cannot have children", ErrMalformedBlock, b.Kind)
	}
	b.Children = children
	tx.touch(p, false)
	return nil
}

// RemoveBlockByUser is removal requested by editing surface. Locked sections
// reject it unless edit mode is on.
func (tx *Tx) RemoveBlockByUser(s *Section, b *Block) error {
	if s.Locked && !tx.doc.editMode {
		return fmt.Errorf("unable to remove block from %s: %w", s.Kind, ErrSectionLocked)
	}
	i := slices.Index(s.Blocks, b)
	if i < 0 {
		return fmt.Errorf("block %s not found in %s", b.ID, s.Kind)
	}
	_, err := tx.RemoveBlocks(s, i, i+1)
	return err
}
