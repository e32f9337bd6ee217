// Package header decodes and validates the 24-byte BTF header that precedes
// the type and string sections.
package header

import (
	"encoding/binary"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/reader"
)

const (
	magicLE uint16 = 0xeB9F
	magicBE uint16 = 0x9FeB

	wantVersion = 1
	wantFlags   = 0
	wantHdrLen  = 24
)

// Header is the decoded BTF header. Section offsets are relative to the end
// of the header itself (byte 24), as stored on the wire.
type Header struct {
	Order       binary.ByteOrder
	Version     uint8
	Flags       uint8
	HdrLen      uint32
	TypeOff     uint32
	TypeLen     uint32
	StringOff   uint32
	StringLen   uint32
}

// Decode reads and validates the header at the start of buf, returning the
// parsed Header. buf must contain the full BTF blob; section bounds are
// checked against its total length.
func Decode(buf []byte) (*Header, error) {
	if len(buf) < 2 {
		return nil, kinds.New(kinds.Truncated, "buffer too short for BTF magic")
	}

	// Sniff byte order from the raw magic bytes before constructing a Reader,
	// since the Reader itself needs to know the order to decode anything else.
	rawMagic := binary.LittleEndian.Uint16(buf[:2])
	var order binary.ByteOrder
	switch rawMagic {
	case magicLE:
		order = binary.LittleEndian
	case magicBE:
		order = binary.BigEndian
	default:
		return nil, kinds.New(kinds.BadMagic, "magic 0x%04x is neither 0x%04x nor 0x%04x", rawMagic, magicLE, magicBE)
	}

	r := reader.New(buf, order)
	if _, err := r.U16(); err != nil {
		return nil, err
	}

	version, err := r.U8()
	if err != nil {
		return nil, err
	}
	if version != wantVersion {
		return nil, kinds.New(kinds.UnsupportedVersion, "version %d, want %d", version, wantVersion)
	}

	flags, err := r.U8()
	if err != nil {
		return nil, err
	}
	if flags != wantFlags {
		return nil, kinds.New(kinds.UnknownFlags, "flags 0x%02x, want 0", flags)
	}

	hdrLen, err := r.U32()
	if err != nil {
		return nil, err
	}
	if hdrLen != wantHdrLen {
		return nil, kinds.New(kinds.BadHeaderLength, "header_len %d, want %d", hdrLen, wantHdrLen)
	}

	typeOff, err := r.U32()
	if err != nil {
		return nil, err
	}
	typeLen, err := r.U32()
	if err != nil {
		return nil, err
	}
	strOff, err := r.U32()
	if err != nil {
		return nil, err
	}
	strLen, err := r.U32()
	if err != nil {
		return nil, err
	}

	h := &Header{
		Order:     order,
		Version:   version,
		Flags:     flags,
		HdrLen:    hdrLen,
		TypeOff:   typeOff,
		TypeLen:   typeLen,
		StringOff: strOff,
		StringLen: strLen,
	}

	base := int(hdrLen)
	if err := checkSection(buf, base, typeOff, typeLen, "type"); err != nil {
		return nil, err
	}
	if err := checkSection(buf, base, strOff, strLen, "string"); err != nil {
		return nil, err
	}

	return h, nil
}

func checkSection(buf []byte, base int, off, length uint32, name string) error {
	start := base + int(off)
	end := start + int(length)
	if off > uint32(len(buf)) || start < base || end > len(buf) || end < start {
		return kinds.New(kinds.SectionOutOfBounds, "%s section [%d:%d) exceeds buffer of length %d", name, start, end, len(buf))
	}
	return nil
}

// TypeSection returns the raw type section bytes for the given full BTF buffer.
func (h *Header) TypeSection(buf []byte) []byte {
	start := int(h.HdrLen) + int(h.TypeOff)
	return buf[start : start+int(h.TypeLen)]
}

// StringSection returns the raw string section bytes for the given full BTF buffer.
func (h *Header) StringSection(buf []byte) []byte {
	start := int(h.HdrLen) + int(h.StringOff)
	return buf[start : start+int(h.StringLen)]
}
