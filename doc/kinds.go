package doc

//go:generate go tool go-enum --marshal --names

// Kind of the page section. Every page owns exactly one of each, in this order.
// ENUM(header, content, footer)
type SectionKind int

// Kind of the block inside a section.
// ENUM(paragraph, text, linebreak, pagenumber)
type BlockKind int

// IsRunning is true for header and footer, which repeat on every page.
func (k SectionKind) IsRunning() bool {
	return k == SectionKindHeader || k == SectionKindFooter
}
