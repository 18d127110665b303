package doc

import (
	"slices"
	"sync"
)

// Change describes what a completed transaction touched.
type Change struct {
	// Seq increases with every transaction which changed anything.
	Seq uint64
	// Pages lists keys of pages touched, in order of first touch.
	Pages []string
	// Structural is set when pages were added, removed or had their
	// sections replaced.
	Structural bool
	// Origin is the tag passed to UpdateAs, empty for Update.
	Origin string
}

// Document is ordered sequence of pages. Reading outside of View or Update is
// only safe when nobody else holds the document.
type Document struct {
	Pages []*Page

	mu       sync.Mutex
	lmu      sync.Mutex
	editMode bool
	seq      uint64
	nextSub  int
	subs     map[int]func(Change)
}

// New creates document with requested pages. Use NewPage() for empty well
// formed ones.
func New(pages ...*Page) *Document {
	return &Document{Pages: pages}
}

// View runs fn with exclusive access to the document. fn must not modify it.
func (d *Document) View(fn func(d *Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

// Update runs fn inside exclusive update scope. Concurrent callers are
// serialized. When fn changed anything subscribers are notified after the
// scope is released. Changes done before fn returned an error are kept.
func (d *Document) Update(fn func(tx *Tx) error) error {
	return d.UpdateAs("", fn)
}

// UpdateAs is Update which tags resulting change notification with origin so
// subscribers could recognize their own writes.
func (d *Document) UpdateAs(origin string, fn func(tx *Tx) error) error {
	ch, changed, err := d.apply(origin, fn)
	if changed {
		d.notify(ch)
	}
	return err
}

// apply runs fn under the document lock. The lock is released and the
// transaction closed even when fn panics.
func (d *Document) apply(origin string, fn func(tx *Tx) error) (ch Change, changed bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx := &Tx{doc: d, touched: make(map[string]struct{})}
	defer func() { tx.closed = true }()

	err = fn(tx)
	if tx.changed {
		d.seq++
		ch = Change{Seq: d.seq, Pages: tx.pages, Structural: tx.structural, Origin: origin}
		changed = true
	}
	return ch, changed, err
}

// Subscribe registers listener called after every transaction which changed
// the document. Returned function cancels subscription.
func (d *Document) Subscribe(fn func(Change)) (cancel func()) {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	if d.subs == nil {
		d.subs = make(map[int]func(Change))
	}
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.lmu.Lock()
		defer d.lmu.Unlock()
		delete(d.subs, id)
	}
}

func (d *Document) notify(ch Change) {
	d.lmu.Lock()
	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, d.subs[id])
	}
	d.lmu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// SetEditMode toggles explicit header/footer edit mode. While it is on user
// initiated removals from locked sections are allowed.
func (d *Document) SetEditMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editMode = on
}

// EditMode reports current edit mode.
func (d *Document) EditMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editMode
}

// PageIndex returns position of the page with requested key or -1.
func (d *Document) PageIndex(key string) int {
	return slices.IndexFunc(d.Pages, func(p *Page) bool { return p.Key == key })
}

// PageByKey returns page with requested key or nil.
func (d *Document) PageByKey(key string) *Page {
	if i := d.PageIndex(key); i >= 0 {
		return d.Pages[i]
	}
	return nil
}

// Owner returns page owning the section or nil.
func (d *Document) Owner(s *Section) *Page {
	for _, p := range d.Pages {
		if slices.Contains(p.Sections, s) {
			return p
		}
	}
	return nil
}
