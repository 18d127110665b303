package flow

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pageflow/doc"
	"pageflow/layout"
)

// Syncer propagates reference header and footer to all pages.
type Syncer struct {
	m    layout.Measurer
	geo  layout.Geometry
	sess *Session
	log  *zap.Logger
}

func NewSyncer(m layout.Measurer, geo layout.Geometry, sess *Session, log *zap.Logger) *Syncer {
	return &Syncer{m: m, geo: geo, sess: sess, log: log}
}

// SyncStats describes single synchronization pass.
type SyncStats struct {
	Rewritten int
	// Exempt counts sections left alone because they hold focus.
	Exempt int
	// Guarded is set when pass took synchronization guard, caller is
	// responsible for releasing it on the next tick.
	Guarded bool
}

type rewrite struct {
	section *doc.Section
	ref     Snapshot
}

// Sync runs synchronization pass for headers and footers. Nothing is done
// for documents with less than two pages or while guard is set.
func (s *Syncer) Sync(tx *doc.Tx) SyncStats {
	var stats SyncStats
	pages := tx.Pages()
	if len(pages) < 2 || s.sess.Syncing() {
		return stats
	}

	var plan []rewrite
	for _, kind := range runningKinds {
		plan = append(plan, s.plan(pages, kind, &stats)...)
	}
	if len(plan) == 0 {
		return stats
	}
	if !s.sess.acquire() {
		return stats
	}
	stats.Guarded = true

	for _, rw := range plan {
		if err := Import(tx, rw.section, rw.ref); err != nil {
			s.log.Warn("Some nodes were skipped during synchronization",
				zap.Stringer("kind", rw.section.Kind), zap.Int("skipped", errorCount(err)), zap.Error(err))
		}
		stats.Rewritten++
	}
	return stats
}

// plan selects reference section of requested kind and returns sections
// which differ from it.
func (s *Syncer) plan(pages []*doc.Page, kind doc.SectionKind, stats *SyncStats) []rewrite {
	ref := s.reference(pages, kind)
	if ref == nil {
		return nil
	}
	snap, err := Export(ref)
	if err != nil {
		s.log.Warn("Malformed nodes in reference section skipped",
			zap.Stringer("kind", kind), zap.Int("skipped", errorCount(err)), zap.Error(err))
	}
	// never propagate emptiness
	if snap.IsEmpty() {
		return nil
	}
	if over := s.geo.Overflow(s.m, ref); over > 0 {
		s.log.Warn("Reference section does not fit its region", zap.Stringer("kind", kind), zap.Float64("overflow", over))
	}

	focus, focused := s.sess.Focus()

	var res []rewrite
	for _, p := range pages {
		sec := p.Section(kind)
		if sec == nil || sec == ref {
			continue
		}
		if focused && focus.Kind == kind && focus.PageKey == p.Key {
			stats.Exempt++
			continue
		}
		cur, err := Export(sec)
		if err != nil {
			s.log.Debug("Malformed nodes in section skipped", zap.String("page", p.Key), zap.Stringer("kind", kind), zap.Error(err))
		}
		if cur.Equal(snap) {
			continue
		}
		res = append(res, rewrite{section: sec, ref: snap})
	}
	return res
}

// reference selects section to synchronize others with: last edited one if
// it has content, then focused one, then first non empty in page order.
func (s *Syncer) reference(pages []*doc.Page, kind doc.SectionKind) *doc.Section {
	if key := s.sess.LastEdited(kind); key != "" {
		for _, p := range pages {
			if p.Key != key {
				continue
			}
			if sec := p.Section(kind); sec != nil && !sec.IsEmpty() {
				return sec
			}
			break
		}
	}
	if focus, ok := s.sess.Focus(); ok && focus.Kind == kind {
		for _, p := range pages {
			if p.Key == focus.PageKey {
				if sec := p.Section(kind); sec != nil {
					return sec
				}
				break
			}
		}
	}
	for _, p := range pages {
		if sec := p.Section(kind); sec != nil && !sec.IsEmpty() {
			return sec
		}
	}
	return nil
}

// errorCount returns number of errors aggregated in err.
func errorCount(err error) int {
	return len(multierr.Errors(err))
}
