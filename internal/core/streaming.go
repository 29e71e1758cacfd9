package core

// streaming.go normalizes the byte stream of an uploaded CSV before parsing.
//
// Spreadsheet tools on Windows like to prepend a byte order mark and sometimes
// save as UTF-16. The decoder chain below:
//
//   - Strips a UTF-8 BOM
//   - Switches to UTF-16 (LE/BE) when a UTF-16 BOM is present
//   - Replaces invalid UTF-8 sequences with U+FFFD
//
// Everything runs on the fly, so memory stays O(buffer) regardless of file size.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodingReader wraps r so reads yield valid UTF-8 with any BOM removed.
func NewDecodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader tracks the number of bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
