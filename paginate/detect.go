package paginate

import (
	"archive/zip"
	"bytes"
	"io"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "UTF-8"
	case encUTF16BigEndian:
		return "UTF-16BE"
	case encUTF16LittleEndian:
		return "UTF-16LE"
	case encUTF32BigEndian:
		return "UTF-32BE"
	case encUTF32LittleEndian:
		return "UTF-32LE"
	}
	return "unknown"
}

// encodings maps byte order marks to decoders, BOM is consumed by decoder.
var encodings = map[srcEncoding]encoding.Encoding{
	encUTF8:              unicode.UTF8BOM,
	encUTF16BigEndian:    unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM),
	encUTF16LittleEndian: unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
	encUTF32BigEndian:    utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM),
	encUTF32LittleEndian: utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM),
}

// headerSize is how much of the file is looked at to detect its type.
const headerSize = 512

var documentType = filetype.NewType("pfx", "application/vnd.pageflow+xml")

func init() {
	filetype.AddMatcher(documentType, documentMatcher)
}

// documentMatcher recognizes XML with "document" root element in any of
// supported unicode encodings.
func documentMatcher(buf []byte) bool {
	enc := detectUTF(buf)
	if enc != encUnknown {
		// partial trailing characters are expected here
		decoded, _, _ := transform.Bytes(encodings[enc].NewDecoder(), buf)
		buf = decoded
	}
	buf = bytes.TrimSpace(buf)
	for bytes.HasPrefix(buf, []byte("<?")) || bytes.HasPrefix(buf, []byte("<!--")) {
		end := []byte("?>")
		if bytes.HasPrefix(buf, []byte("<!--")) {
			end = []byte("-->")
		}
		i := bytes.Index(buf, end)
		if i < 0 {
			return false
		}
		buf = bytes.TrimSpace(buf[i+len(end):])
	}
	rest, ok := bytes.CutPrefix(buf, []byte("<document"))
	if !ok {
		return false
	}
	return len(rest) == 0 || bytes.ContainsAny(rest[:1], " \t\r\n/>")
}

func detectUTF(buf []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(buf, []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	case bytes.HasPrefix(buf, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps reader with decoder when BOM was detected.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	if e, ok := encodings[enc]; ok {
		return transform.NewReader(r, e.NewDecoder())
	}
	return r
}

func readHeader(r io.Reader) ([]byte, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

func isDocument(r io.Reader) (bool, srcEncoding, error) {
	head, err := readHeader(r)
	if err != nil {
		return false, encUnknown, err
	}
	if !filetype.IsType(head, documentType) {
		return false, encUnknown, nil
	}
	return true, detectUTF(head), nil
}

func isDocumentFile(path string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()
	return isDocument(f)
}

func isDocumentInArchive(f *zip.File) (bool, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()
	return isDocument(r)
}
