package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"pageflow/doc"
)

// Estimator approximates rendered extent from text length when no real
// layout is available (batch processing, tests). It is always available.
type Estimator struct {
	LineHeight       float64
	CharsPerLine     int
	ParagraphSpacing float64
}

func (e Estimator) MeasureBlock(b *doc.Block) (float64, bool) {
	if b == nil {
		return 0, true
	}
	switch b.Kind {
	case doc.BlockKindParagraph:
		return float64(e.lines(b.PlainText()))*e.LineHeight + e.ParagraphSpacing, true
	case doc.BlockKindText:
		return float64(e.lines(b.Text)) * e.LineHeight, true
	case doc.BlockKindLinebreak, doc.BlockKindPagenumber:
		return e.LineHeight, true
	}
	return 0, true
}

// lines counts wrapped lines, every explicit line break starts a new one.
// Empty text still occupies a line.
func (e Estimator) lines(text string) int {
	width := max(e.CharsPerLine, 1)
	total := 0
	for line := range strings.SplitSeq(norm.NFC.String(text), "\n") {
		n := utf8.RuneCountInString(line)
		total += max(1, (n+width-1)/width)
	}
	return total
}
