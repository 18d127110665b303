// Package debug has helpers producing human readable dumps of document trees.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// Attr is a single key=value pair printed after node label.
type Attr struct {
	Key   string
	Value any
}

// TreeWriter accumulates indented lines. Zero value is not usable, use
// NewTreeWriter.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w:      &strings.Builder{},
		indent: "  ",
	}
}

// WithIndent changes indentation unit.
func (tw *TreeWriter) WithIndent(indent string) *TreeWriter {
	tw.indent = indent
	return tw
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Node writes label followed by attributes. String values are quoted, empty
// ones skipped.
func (tw *TreeWriter) Node(depth int, label string, attrs ...Attr) {
	tw.pad(depth)
	tw.w.WriteString(label)
	for _, a := range attrs {
		var v string
		switch val := a.Value.(type) {
		case string:
			if val == "" {
				continue
			}
			v = strconv.Quote(val)
		case fmt.Stringer:
			v = val.String()
		default:
			v = fmt.Sprint(val)
		}
		tw.w.WriteByte(' ')
		tw.w.WriteString(a.Key)
		tw.w.WriteByte('=')
		tw.w.WriteString(v)
	}
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
