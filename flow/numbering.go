package flow

import (
	"strconv"

	"go.uber.org/zap"

	"pageflow/config"
	"pageflow/doc"
)

// Numberer maintains page number blocks in headers and footers.
type Numberer struct {
	placement config.PageNumberPlacement
	log       *zap.Logger
}

func NewNumberer(placement config.PageNumberPlacement, log *zap.Logger) *Numberer {
	return &Numberer{placement: placement, log: log}
}

// Run sets every page number to 1-based page index. When placement is
// configured pages which miss page number in that section get one appended.
// Returns number of blocks added or changed.
func (n *Numberer) Run(tx *doc.Tx) int {
	var changed int
	for i, p := range tx.Pages() {
		value := strconv.Itoa(i + 1)
		for _, kind := range runningKinds {
			sec := p.Section(kind)
			if sec == nil {
				continue
			}
			pns := sec.PageNumbers()
			if len(pns) == 0 && n.wants(kind) {
				pn := doc.NewPageNumber()
				if err := tx.AppendBlocks(sec, pn); err != nil {
					n.log.Error("Unable to add page number", zap.String("page", p.Key), zap.Error(err))
					continue
				}
				pns = append(pns, pn)
			}
			for _, pn := range pns {
				if pn.Text == value {
					continue
				}
				if err := tx.SetText(sec, pn, value); err != nil {
					n.log.Error("Unable to set page number", zap.String("page", p.Key), zap.Error(err))
					continue
				}
				changed++
			}
		}
	}
	return changed
}

func (n *Numberer) wants(kind doc.SectionKind) bool {
	switch n.placement {
	case config.PageNumberPlacementHeader:
		return kind == doc.SectionKindHeader
	case config.PageNumberPlacementFooter:
		return kind == doc.SectionKindFooter
	}
	return false
}
