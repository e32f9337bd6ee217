// Package strtab implements the BTF string table: a flat buffer of
// NUL-terminated, UTF-8 names addressed by byte offset, offset 0 always
// being the empty string.
package strtab

import (
	"bytes"
	"unicode/utf8"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
)

// Table is a bounded lookup from string offset to name.
type Table struct {
	data []byte
}

// New wraps the raw string section. It does not require data[0] == 0 up
// front — an empty section is valid and simply answers BadStringOffset for
// any non-zero offset.
func New(data []byte) *Table {
	return &Table{data: data}
}

// NameOf returns the NUL-terminated, UTF-8 string beginning at offset.
// Offset 0 into a non-empty table conventionally yields "".
func (t *Table) NameOf(offset uint32) (string, error) {
	if int(offset) >= len(t.data) {
		if offset == 0 && len(t.data) == 0 {
			return "", nil
		}
		return "", kinds.New(kinds.BadStringOffset, "offset %d is past string section of length %d", offset, len(t.data))
	}

	rest := t.data[offset:]
	idx := bytes.IndexByte(rest, 0)
	if idx == -1 {
		return "", kinds.New(kinds.UnterminatedString, "no NUL terminator after offset %d", offset)
	}

	s := rest[:idx]
	if !utf8.Valid(s) {
		return "", kinds.New(kinds.BadStringEncoding, "string at offset %d is not valid UTF-8", offset)
	}
	return string(s), nil
}

// Len returns the size of the underlying string section in bytes.
func (t *Table) Len() int { return len(t.data) }
