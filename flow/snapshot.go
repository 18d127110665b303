package flow

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"pageflow/doc"
)

// Node is exported form of a block: structure and text without identity.
type Node struct {
	Kind     doc.BlockKind
	Text     string
	Children []Node
}

// Snapshot is exported content of a header or footer. Page numbers are page
// local and never part of it.
type Snapshot struct {
	Kind  doc.SectionKind
	Nodes []Node
}

// Export serializes section blocks. Malformed blocks are skipped, errors for
// all of them are returned together with the rest of the snapshot.
func Export(s *doc.Section) (Snapshot, error) {
	snap := Snapshot{Kind: s.Kind}
	var errs error
	for _, b := range s.Blocks {
		n, err := exportBlock(b)
		errs = multierr.Append(errs, err)
		if n != nil {
			snap.Nodes = append(snap.Nodes, *n)
		}
	}
	return snap, errs
}

func exportBlock(b *doc.Block) (*Node, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil block", doc.ErrMalformedBlock)
	}
	switch b.Kind {
	case doc.BlockKindPagenumber:
		return nil, nil
	case doc.BlockKindText, doc.BlockKindLinebreak:
		if len(b.Children) > 0 {
			return nil, fmt.Errorf("%w: %s %s has children", doc.ErrMalformedBlock, b.Kind, b.ID)
		}
		n := &Node{Kind: b.Kind}
		if b.Kind == doc.BlockKindText {
			n.Text = b.Text
		}
		return n, nil
	case doc.BlockKindParagraph:
		n := &Node{Kind: b.Kind}
		var errs error
		for _, c := range b.Children {
			cn, err := exportBlock(c)
			errs = multierr.Append(errs, err)
			if cn != nil {
				n.Children = append(n.Children, *cn)
			}
		}
		return n, errs
	}
	return nil, fmt.Errorf("%w: %s has unknown kind %d", doc.ErrMalformedBlock, b.ID, b.Kind)
}

// Equal compares exported content, kind of the snapshot is not considered.
func (s Snapshot) Equal(o Snapshot) bool {
	return slices.EqualFunc(s.Nodes, o.Nodes, Node.Equal)
}

func (n Node) Equal(o Node) bool {
	return n.Kind == o.Kind && n.Text == o.Text && slices.EqualFunc(n.Children, o.Children, Node.Equal)
}

// IsEmpty uses the same notion of emptiness as doc.Section.IsEmpty.
func (s Snapshot) IsEmpty() bool {
	for _, n := range s.Nodes {
		if !n.isEmpty() {
			return false
		}
	}
	return true
}

func (n Node) isEmpty() bool {
	switch n.Kind {
	case doc.BlockKindText:
		return len(n.Text) == 0
	case doc.BlockKindLinebreak:
		return true
	case doc.BlockKindParagraph:
		for _, c := range n.Children {
			if c.Kind == doc.BlockKindParagraph || !c.isEmpty() {
				return false
			}
		}
		return true
	}
	return false
}

// Import replaces section content with snapshot: every top level block
// except page numbers is removed and snapshot nodes are rebuilt as new blocks
// where removed content started. Page numbers nested in removed blocks are
// moved into the rebuilt paragraph at the same position, or to the end of the
// section when there is none. Malformed nodes are skipped and reported.
func Import(tx *doc.Tx, s *doc.Section, snap Snapshot) error {
	at := 0
	for _, b := range s.Blocks {
		if !isPageNumber(b) {
			break
		}
		at++
	}
	nested := nestedPageNumbers(s)
	if _, err := tx.ClearSection(s, isPageNumber); err != nil {
		return fmt.Errorf("unable to clear %s: %w", s.Kind, err)
	}

	var (
		errs   error
		blocks = make([]*doc.Block, 0, len(snap.Nodes))
	)
	for _, n := range snap.Nodes {
		b, err := importNode(n)
		errs = multierr.Append(errs, err)
		if b != nil {
			blocks = append(blocks, b)
		}
	}

	var orphans []*doc.Block
	for _, pn := range nested {
		if pn.slot < len(blocks) && blocks[pn.slot].Kind == doc.BlockKindParagraph {
			blocks[pn.slot].Children = append(blocks[pn.slot].Children, pn.block)
			continue
		}
		orphans = append(orphans, pn.block)
	}
	if err := tx.InsertBlocks(s, at, blocks...); err != nil {
		return multierr.Append(errs, fmt.Errorf("unable to rebuild %s: %w", s.Kind, err))
	}
	if err := tx.AppendBlocks(s, orphans...); err != nil {
		return multierr.Append(errs, fmt.Errorf("unable to restore page numbers in %s: %w", s.Kind, err))
	}
	return errs
}

type slottedBlock struct {
	slot  int
	block *doc.Block
}

// nestedPageNumbers returns page numbers which are not top level blocks
// together with the position of their top level block among blocks which
// are not page numbers.
func nestedPageNumbers(s *doc.Section) []slottedBlock {
	var (
		res  []slottedBlock
		slot int
	)
	for _, b := range s.Blocks {
		if b == nil || isPageNumber(b) {
			continue
		}
		b.Walk(func(n *doc.Block) bool {
			if n != b && isPageNumber(n) {
				res = append(res, slottedBlock{slot: slot, block: n})
			}
			return true
		})
		slot++
	}
	return res
}

func importNode(n Node) (*doc.Block, error) {
	switch n.Kind {
	case doc.BlockKindText:
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%w: text node has children", doc.ErrMalformedBlock)
		}
		return doc.NewText(n.Text), nil
	case doc.BlockKindLinebreak:
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%w: line break node has children", doc.ErrMalformedBlock)
		}
		return doc.NewLineBreak(), nil
	case doc.BlockKindParagraph:
		p := doc.NewParagraph()
		var errs error
		for _, c := range n.Children {
			b, err := importNode(c)
			errs = multierr.Append(errs, err)
			if b != nil {
				p.Children = append(p.Children, b)
			}
		}
		return p, errs
	}
	// page numbers are never imported, they belong to the page
	return nil, fmt.Errorf("%w: cannot import %s node", doc.ErrMalformedBlock, n.Kind)
}

func isPageNumber(b *doc.Block) bool {
	return b != nil && b.Kind == doc.BlockKindPagenumber
}
