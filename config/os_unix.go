//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SafeName turns arbitrary string (document title, page key) into usable
// file name replacing characters not allowed by the OS.
func SafeName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if strings.ContainsRune(string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return '_'
		}
		return sym
	}, in), ".")
	if len(out) == 0 {
		out = "_unnamed_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
