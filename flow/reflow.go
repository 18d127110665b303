package flow

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"pageflow/config"
	"pageflow/doc"
	"pageflow/layout"
)

// Reflower moves content blocks between adjacent pages so content of every
// page fits its capacity.
type Reflower struct {
	m         layout.Measurer
	capacity  float64
	minSplit  int
	maxPasses int
	underflow config.UnderflowMode
	log       *zap.Logger
}

func NewReflower(m layout.Measurer, lc *config.LayoutConfig, underflow config.UnderflowMode, log *zap.Logger) *Reflower {
	return &Reflower{
		m:         m,
		capacity:  lc.PageContentCapacity,
		minSplit:  lc.MinimumTextLengthForSplit,
		maxPasses: max(lc.MaxReflowPasses, 1),
		underflow: underflow,
		log:       log,
	}
}

// PassStats describes what single overflow pass did.
type PassStats struct {
	Moved   int
	Split   int
	Created int
	// Skipped counts pages which could not be measured yet.
	Skipped int
}

func (s PassStats) Changed() bool {
	return s.Moved > 0 || s.Split > 0
}

// Result accumulates statistics of all passes of Run.
type Result struct {
	PassStats
	Passes    int
	Converged bool
}

// Pass runs single overflow pass over all pages top to bottom. Blocks pushed
// to the next page are looked at again when pass reaches that page.
func (r *Reflower) Pass(tx *doc.Tx) PassStats {
	var stats PassStats
	for i := 0; i < len(tx.Pages()); i++ {
		p := tx.Pages()[i]
		content := p.Content()
		if content == nil || len(content.Blocks) == 0 {
			continue
		}

		extents, ok := layout.BlockExtents(r.m, content)
		if !ok {
			stats.Skipped++
			continue
		}
		split := splitIndex(extents, r.capacity)
		if split < 0 {
			continue
		}

		if len(content.Blocks) == 1 {
			if r.splitSingle(tx, i, content, &stats) {
				stats.Split++
			}
			continue
		}

		// oversized first block stays where it is, moving it would only
		// move the problem to the next page
		from := max(split, 1)
		moved, err := tx.RemoveBlocks(content, from, len(content.Blocks))
		if err != nil {
			r.log.Error("Unable to detach overflowing blocks", zap.String("page", p.Key), zap.Error(err))
			continue
		}
		next := r.nextContent(tx, i, &stats)
		if err := tx.InsertBlocks(next, 0, moved...); err != nil {
			r.log.Error("Unable to move overflowing blocks", zap.String("page", p.Key), zap.Error(err))
			continue
		}
		stats.Moved += len(moved)
		r.log.Debug("Moved overflowing blocks", zap.String("page", p.Key), zap.Int("index", i), zap.Int("blocks", len(moved)))
	}
	return stats
}

// splitIndex returns index of the first block which does not fit or -1 when
// all blocks fit.
func splitIndex(extents []float64, capacity float64) int {
	var total float64
	for i, e := range extents {
		total += e
		if total > capacity {
			return i
		}
	}
	return -1
}

// nextContent returns content section of the page following page i, page is
// created when there is none.
func (r *Reflower) nextContent(tx *doc.Tx, i int, stats *PassStats) *doc.Section {
	if i+1 < len(tx.Pages()) {
		next := tx.Pages()[i+1]
		if next.Content() == nil {
			EnforceStructure(tx, next)
		}
		return next.Content()
	}
	stats.Created++
	return tx.InsertPage(i + 1).Content()
}

// splitSingle splits lone overflowing block in two, first part stays, the
// rest starts next page.
func (r *Reflower) splitSingle(tx *doc.Tx, i int, content *doc.Section, stats *PassStats) bool {
	b := content.Blocks[0]
	n := b.TextLen()
	if n <= r.minSplit {
		return false
	}
	tail, ok := splitBlock(tx, content, b, 2*n/3)
	if !ok {
		return false
	}
	if s, ok := r.m.(layout.Splitter); ok {
		s.SplitHint(b, b, tail)
	}
	next := r.nextContent(tx, i, stats)
	if err := tx.InsertBlocks(next, 0, tail); err != nil {
		r.log.Error("Unable to move split block", zap.String("block", b.ID), zap.Error(err))
		return false
	}
	r.log.Debug("Split oversized block", zap.String("block", b.ID), zap.Int("length", n), zap.String("tail", tail.ID))
	return true
}

// splitBlock cuts block text at rune offset. Block keeps the head and the
// returned new block holds the tail.
func splitBlock(tx *doc.Tx, s *doc.Section, b *doc.Block, offset int) (*doc.Block, bool) {
	if offset <= 0 {
		return nil, false
	}
	switch b.Kind {
	case doc.BlockKindText:
		head, tail, ok := splitText(b.Text, offset)
		if !ok {
			return nil, false
		}
		if err := tx.SetText(s, b, head); err != nil {
			return nil, false
		}
		return doc.NewText(tail), true

	case doc.BlockKindParagraph:
		for j, c := range b.Children {
			l := childLen(c)
			if offset >= l {
				offset -= l
				continue
			}
			headChildren := b.Children[:j:j]
			tailChildren := b.Children[j:]
			if c.Kind == doc.BlockKindText && offset > 0 {
				head, tail, ok := splitText(c.Text, offset)
				if !ok {
					return nil, false
				}
				headChildren = append(headChildren, doc.NewText(head))
				tailChildren = append([]*doc.Block{doc.NewText(tail)}, b.Children[j+1:]...)
			}
			if len(headChildren) == 0 {
				return nil, false
			}
			if err := tx.ReplaceChildren(s, b, headChildren...); err != nil {
				return nil, false
			}
			return doc.NewParagraph(tailChildren...), true
		}
	}
	return nil, false
}

func childLen(b *doc.Block) int {
	if b == nil {
		return 0
	}
	return b.TextLen()
}

func splitText(text string, offset int) (string, string, bool) {
	text = norm.NFC.String(text)
	if offset <= 0 || offset >= utf8.RuneCountInString(text) {
		return "", "", false
	}
	runes := []rune(text)
	return string(runes[:offset]), string(runes[offset:]), true
}

// Run repeats overflow passes, each in its own transaction, until a pass
// changes nothing or pass limit is reached.
func (r *Reflower) Run(ctx context.Context, d *doc.Document) (Result, error) {
	var res Result
	for res.Passes < r.maxPasses {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var stats PassStats
		_ = d.UpdateAs(OriginReflow, func(tx *doc.Tx) error {
			stats = r.Pass(tx)
			return nil
		})
		res.Passes++
		res.Moved += stats.Moved
		res.Split += stats.Split
		res.Created += stats.Created
		res.Skipped += stats.Skipped
		if !stats.Changed() {
			res.Converged = true
			return res, nil
		}
	}
	r.log.Warn("Reflow did not converge, layout may still overflow",
		zap.Int("passes", res.Passes), zap.Int("moved", res.Moved), zap.Int("split", res.Split))
	return res, nil
}

// PullUp moves up to touched (at least one) blocks from the start of the
// next page content to the end of every page which has spare capacity.
func (r *Reflower) PullUp(tx *doc.Tx, touched int) int {
	n := max(touched, 1)
	pulled := 0
	for i := 0; i+1 < len(tx.Pages()); i++ {
		cur, next := tx.Pages()[i].Content(), tx.Pages()[i+1].Content()
		if cur == nil || next == nil || len(next.Blocks) == 0 {
			continue
		}
		extent, ok := layout.SectionExtent(r.m, cur)
		if !ok || extent >= r.capacity {
			continue
		}

		count := min(n, len(next.Blocks))
		if r.underflow == config.UnderflowModeCapacityChecked {
			count = r.fitting(next.Blocks[:count], r.capacity-extent)
		}
		if count == 0 {
			continue
		}

		moved, err := tx.RemoveBlocks(next, 0, count)
		if err != nil {
			r.log.Error("Unable to detach blocks for pull up", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		if err := tx.AppendBlocks(cur, moved...); err != nil {
			r.log.Error("Unable to pull blocks up", zap.Int("index", i), zap.Error(err))
			continue
		}
		pulled += count
	}
	return pulled
}

// fitting counts leading blocks which fit into spare capacity.
func (r *Reflower) fitting(blocks []*doc.Block, spare float64) int {
	for i, b := range blocks {
		e, ok := r.m.MeasureBlock(b)
		if !ok || e > spare {
			return i
		}
		spare -= e
	}
	return len(blocks)
}
