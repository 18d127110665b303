package paginate

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"pageflow/config"
	"pageflow/docxml"
	"pageflow/state"
)

// setupTestEnv creates a test environment with proper context and logger.
// Documents are measured by their extent attributes against 100 units pages.
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Layout.PageContentCapacity = 100
	cfg.Layout.Measurement.Mode = config.MeasureModeStatic
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

// sampleDocument returns single page document with "header" text in the
// header and content paragraphs of given extents.
func sampleDocument(header string, extents ...int) []byte {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<document><page key="p1"><header>`)
	if header != "" {
		fmt.Fprintf(&buf, `<paragraph id="h1"><text>%s</text></paragraph>`, header)
	}
	buf.WriteString(`</header><content>`)
	for i, e := range extents {
		fmt.Fprintf(&buf, `<paragraph id="b%d" extent="%d"><text>block %d</text></paragraph>`, i+1, e, i+1)
	}
	buf.WriteString(`</content><footer/></page></document>`)
	return []byte(buf.String())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeZip(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s in zip: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write %s in zip: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

// readResult parses produced document and returns header texts of its pages.
func readResult(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	defer f.Close()

	parsed, err := docxml.Read(f, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var headers []string
	for _, p := range parsed.Doc.Pages {
		var text []string
		for _, b := range p.Header().Blocks {
			text = append(text, b.PlainText())
		}
		headers = append(headers, strings.Join(text, " "))
	}
	return headers
}

func encodeFor(t *testing.T, data []byte, enc srcEncoding) []byte {
	t.Helper()
	switch enc {
	case encUnknown:
		return data
	case encUTF8:
		return append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		return encodeWithTransformer(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	case encUTF16LittleEndian:
		return encodeWithTransformer(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case encUTF32BigEndian:
		return encodeWithTransformer(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())
	case encUTF32LittleEndian:
		return encodeWithTransformer(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())
	}
	t.Fatalf("unsupported encoding: %v", enc)
	return nil
}

func encodeWithTransformer(t *testing.T, data []byte, encoder transform.Transformer) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}
