package doc

// Deep copy helpers. Document.Clone keeps identities (page keys and block
// IDs) so a copy can be compared with the original, Block.Clone produces a new
// node with fresh IDs suitable for insertion into the same document.

// Clone creates a deep copy of the document. Subscribers and edit mode are
// not copied.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	res := &Document{Pages: make([]*Page, 0, len(d.Pages))}
	for _, p := range d.Pages {
		res.Pages = append(res.Pages, clonePage(p))
	}
	return res
}

func clonePage(p *Page) *Page {
	if p == nil {
		return nil
	}
	res := &Page{Key: p.Key, Sections: make([]*Section, 0, len(p.Sections))}
	for _, s := range p.Sections {
		res.Sections = append(res.Sections, cloneSection(s))
	}
	return res
}

func cloneSection(s *Section) *Section {
	if s == nil {
		return nil
	}
	return &Section{Kind: s.Kind, Locked: s.Locked, Blocks: cloneBlocks(s.Blocks, true)}
}

func cloneBlocks(blocks []*Block, keepIDs bool) []*Block {
	if blocks == nil {
		return nil
	}
	res := make([]*Block, len(blocks))
	for i, b := range blocks {
		res[i] = cloneBlock(b, keepIDs)
	}
	return res
}

func cloneBlock(b *Block, keepIDs bool) *Block {
	if b == nil {
		return nil
	}
	res := &Block{ID: b.ID, Kind: b.Kind, Text: b.Text, Children: cloneBlocks(b.Children, keepIDs)}
	if !keepIDs {
		res.ID = NewID()
	}
	return res
}

// Clone returns deep copy of the block with fresh IDs.
func (b *Block) Clone() *Block {
	return cloneBlock(b, false)
}
