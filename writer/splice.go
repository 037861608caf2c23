package writer

import (
	"bytes"
	"strings"
	"time"
)

// Splice inserts text into content at byte offset at and returns the new
// content together with the offset where text starts.
//
// A newline is added before text when the preceding content is non-empty and
// either lacks a trailing newline or is followed by nothing. A newline is added
// after text unless the following content already starts with one.
func Splice(content []byte, at int64, text string) ([]byte, int64) {
	before, after := content[:at], content[at:]

	var buf bytes.Buffer
	buf.Grow(len(content) + len(text) + 2)

	buf.Write(before)
	if len(before) > 0 && (before[len(before)-1] != '\n' || len(after) == 0) {
		buf.WriteByte('\n')
	}

	start := int64(buf.Len())
	buf.WriteString(text)

	if len(after) == 0 || after[0] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(after)

	return buf.Bytes(), start
}

// Insert splices text, the rendered entry dated date, into content and returns
// the new content and the offset where the entry starts. offsets must be
// folded (see Fold) and describe content. Trailing newlines of text are
// dropped; the splice rules supply the line ending.
func Insert(content []byte, offsets []DateOffset, date time.Time, text string) ([]byte, int64, error) {
	if err := validate(offsets, int64(len(content))); err != nil {
		return nil, 0, err
	}
	out, start := Splice(content, InsertionPoint(offsets, date), strings.TrimRight(text, "\n"))
	return out, start, nil
}
