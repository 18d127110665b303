package flow

import (
	"go.uber.org/zap"

	"pageflow/doc"
)

// Lifecycle keeps page set sane: removes pages without content and makes
// sure document always has at least one page.
type Lifecycle struct {
	sess *Session
	log  *zap.Logger
}

func NewLifecycle(sess *Session, log *zap.Logger) *Lifecycle {
	return &Lifecycle{sess: sess, log: log}
}

type LifecycleStats struct {
	Created    int
	Removed    int
	Migrated   int
	Renumbered int
}

// Run reconciles pages. Only pages with no content blocks at all are removed,
// empty header or footer never causes removal.
func (l *Lifecycle) Run(tx *doc.Tx) LifecycleStats {
	var stats LifecycleStats

	pages := tx.Pages()
	switch len(pages) {
	case 0:
		tx.AppendPage()
		stats.Created++
		l.log.Debug("Created page for empty document")
		return stats
	case 1:
		stats.Renumbered = l.normalizeSingle(tx, pages[0])
		return stats
	}

	var candidates, survivors []*doc.Page
	for _, p := range pages {
		if c := p.Content(); c != nil && len(c.Blocks) == 0 {
			candidates = append(candidates, p)
		} else {
			survivors = append(survivors, p)
		}
	}
	if len(candidates) == 0 {
		return stats
	}
	if len(survivors) == 0 {
		// nothing has content, first page stays
		survivors, candidates = candidates[:1], candidates[1:]
	} else if len(candidates) == 1 && len(survivors) == 1 {
		stats.Migrated = l.migrate(tx, candidates[0], survivors[0])
	}

	for _, p := range candidates {
		if err := tx.RemovePage(p); err != nil {
			l.log.Error("Unable to remove empty page", zap.String("page", p.Key), zap.Error(err))
			continue
		}
		l.sess.Forget(p.Key)
		stats.Removed++
	}
	l.log.Debug("Removed pages without content", zap.Int("removed", stats.Removed), zap.Int("left", len(tx.Pages())))

	if len(tx.Pages()) == 1 {
		stats.Renumbered = l.normalizeSingle(tx, tx.Pages()[0])
	}
	return stats
}

// migrate moves header and footer of the page about to be removed to the
// remaining page when remaining one has none.
func (l *Lifecycle) migrate(tx *doc.Tx, from, to *doc.Page) int {
	var n int
	for _, kind := range runningKinds {
		src, dst := from.Section(kind), to.Section(kind)
		if src == nil || dst == nil || src.IsEmpty() || !dst.IsEmpty() {
			continue
		}
		snap, err := Export(src)
		if err != nil {
			l.log.Warn("Malformed nodes skipped during migration", zap.Stringer("kind", kind), zap.Error(err))
		}
		if snap.IsEmpty() {
			continue
		}
		if err := Import(tx, dst, snap); err != nil {
			l.log.Warn("Malformed nodes skipped during migration", zap.Stringer("kind", kind), zap.Error(err))
		}
		n++
	}
	return n
}

// normalizeSingle sets all page numbers of the only page to "1".
func (l *Lifecycle) normalizeSingle(tx *doc.Tx, p *doc.Page) int {
	var n int
	for _, kind := range runningKinds {
		sec := p.Section(kind)
		for _, pn := range sec.PageNumbers() {
			if pn.Text == "1" {
				continue
			}
			if err := tx.SetText(sec, pn, "1"); err != nil {
				l.log.Error("Unable to set page number", zap.String("page", p.Key), zap.Error(err))
				continue
			}
			n++
		}
	}
	return n
}
