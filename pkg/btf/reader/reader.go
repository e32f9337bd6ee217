// Package reader implements an endian-aware, bounds-checked cursor over an
// immutable byte buffer. It never reads past the end of the buffer it was
// built from; only CString copies, to build the string it returns.
package reader

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
)

// Reader is a movable-cursor view over buf. The zero value is not usable;
// construct with New.
type Reader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// New wraps buf for reading in the given byte order. buf is retained, not
// copied; the caller must not mutate it while the Reader is in use.
func New(buf []byte, order binary.ByteOrder) *Reader {
	return &Reader{buf: buf, order: order}
}

// Pos returns the current cursor position in bytes from the start of buf.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) truncated(need int) error {
	return kinds.New(kinds.Truncated, "offset %d needs %d more bytes, have %d", r.pos, need, r.Remaining())
}

// Seek moves the cursor to an absolute byte offset. It fails if pos would
// land outside [0, len(buf)].
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return r.truncated(pos - r.pos)
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bytes, which may be negative.
func (r *Reader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

// readUint reads a little/big-endian unsigned integer of byteWidth bytes
// and advances the cursor. Shared by the fixed-width accessors below so the
// bounds check and advance logic exists exactly once.
func readUint[T constraints.Unsigned](r *Reader, byteWidth int, decode func([]byte) T) (T, error) {
	if r.Remaining() < byteWidth {
		var zero T
		return zero, r.truncated(byteWidth)
	}
	v := decode(r.buf[r.pos : r.pos+byteWidth])
	r.pos += byteWidth
	return v, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	return readUint[uint8](r, 1, func(b []byte) uint8 { return b[0] })
}

// U16 reads a 16-bit unsigned integer in the reader's byte order.
func (r *Reader) U16() (uint16, error) {
	return readUint[uint16](r, 2, r.order.Uint16)
}

// U32 reads a 32-bit unsigned integer in the reader's byte order.
func (r *Reader) U32() (uint32, error) {
	return readUint[uint32](r, 4, r.order.Uint32)
}

// U64 reads a 64-bit unsigned integer in the reader's byte order.
func (r *Reader) U64() (uint64, error) {
	return readUint[uint64](r, 8, r.order.Uint64)
}

// I32 reads a 32-bit two's-complement signed integer in the reader's byte order.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// PeekU32 reads a 32-bit unsigned integer without advancing the cursor.
func (r *Reader) PeekU32() (uint32, error) {
	save := r.pos
	v, err := r.U32()
	r.pos = save
	return v, err
}

// Bytes returns a bounded subslice of the next n bytes and advances the
// cursor. The returned slice aliases the underlying buffer; callers that
// need to retain it past the buffer's lifetime must copy it themselves.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, r.truncated(n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// CString reads a NUL-terminated, UTF-8 validated string starting at the
// cursor and advances past the terminator.
func (r *Reader) CString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := r.buf[start:r.pos]
			r.pos++
			if !utf8.Valid(s) {
				return "", kinds.New(kinds.BadStringEncoding, "string at offset %d is not valid UTF-8", start)
			}
			return string(s), nil
		}
		r.pos++
	}
	return "", kinds.New(kinds.UnterminatedString, "no NUL terminator after offset %d", start)
}
