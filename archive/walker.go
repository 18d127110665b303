// Package archive lists documents stored in zip archives.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// Entry is a regular file inside archive.
type Entry struct {
	// Archive is the path of the archive passed to Walk.
	Archive string
	// Name is the entry path with forward slashes. Names not flagged as UTF-8
	// are decoded with code page given to Walk.
	Name string
	File *zip.File
}

// WalkFunc is called for every entry visited by Walk. If an error is returned,
// processing stops.
type WalkFunc func(e Entry) error

// Walk visits regular files in archive which names start with prefix, in
// natural order of their names. Archive with absolute entry paths or entries
// containing ".." is rejected as a whole.
func Walk(ctx context.Context, archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	var entries []Entry
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := decodeName(f, cp)
		if strings.HasPrefix(name, prefix) {
			entries = append(entries, Entry{Archive: archive, Name: name, File: f})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return natural.Less(entries[i].Name, entries[j].Name)
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

func decodeName(f *zip.File, cp encoding.Encoding) string {
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	if n, err := cp.NewDecoder().String(f.Name); err == nil {
		return n
	}
	return f.Name
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !strings.Contains("/"+strings.ReplaceAll(name, `\`, "/")+"/", "/../")
}
