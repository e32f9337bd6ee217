// Package offset implements the dotted-path field offset walker: given a
// starting type id and a path like "d_name.len" or "arr.2", it threads
// through structs, unions, and arrays, accumulating a bit-precise offset.
package offset

import (
	"strconv"
	"strings"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/resolve"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

// Table is the lookup surface the walker needs: record access for
// canonicalization and struct/union/array dispatch, plus byte sizes for
// array stride arithmetic.
type Table interface {
	RecordOf(id types.TypeID) (types.Record, error)
	SizeOf(id types.TypeID) (uint64, error)
}

// FieldOffset is the result of a path walk: a bit offset from the start of
// the base type, plus an optional explicit bit-field width.
type FieldOffset struct {
	BitOffset uint64
	BitWidth  *uint8
}

// ByteOffset returns (offset, true) when the result is byte-aligned and has
// either no explicit bit width or one that is a multiple of 8; otherwise
// callers must use the bit form directly.
func (fo FieldOffset) ByteOffset() (uint64, bool) {
	if fo.BitOffset%8 != 0 {
		return 0, false
	}
	if fo.BitWidth != nil && *fo.BitWidth%8 != 0 {
		return 0, false
	}
	return fo.BitOffset / 8, true
}

// OffsetOf walks path from id and returns the accumulated field offset.
func OffsetOf(table Table, id types.TypeID, path string) (FieldOffset, error) {
	if path == "" {
		return FieldOffset{BitOffset: 0}, nil
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return FieldOffset{}, kinds.New(kinds.EmptyPathSegment, "path %q has an empty segment", path)
		}
	}

	currentID := id
	var accBits uint64
	var bitWidth *uint8

	for _, seg := range segments {
		_, rec, err := resolve.Canonicalize(table, currentID)
		if err != nil {
			return FieldOffset{}, err
		}
		if rec == nil {
			return FieldOffset{}, kinds.New(kinds.NotAggregate, "type id %d is void, which has no fields", currentID)
		}

		switch r := rec.(type) {
		case types.StructRecord:
			m, ok := findMember(r.Members, seg)
			if !ok {
				return FieldOffset{}, kinds.New(kinds.UnknownField, "no member %q", seg)
			}
			accBits += uint64(m.BitOffset)
			currentID = m.Type
			bitWidth = explicitWidth(m)

		case types.UnionRecord:
			m, ok := findMember(r.Members, seg)
			if !ok {
				return FieldOffset{}, kinds.New(kinds.UnknownField, "no member %q", seg)
			}
			// Union members all start at bit offset 0; still add it so the
			// bit-field case (a union of bit-fields) is handled uniformly.
			accBits += uint64(m.BitOffset)
			currentID = m.Type
			bitWidth = explicitWidth(m)

		case types.ArrayRecord:
			idx, err := strconv.ParseUint(seg, 10, 64)
			if err != nil {
				return FieldOffset{}, kinds.Wrap(kinds.BadArrayIndex, err, "%q is not a valid array index", seg)
			}
			if r.NumElements != 0 && idx >= uint64(r.NumElements) {
				return FieldOffset{}, kinds.New(kinds.ArrayIndexOutOfRange, "index %d >= element count %d", idx, r.NumElements)
			}
			elemSize, err := table.SizeOf(r.ElementType)
			if err != nil {
				return FieldOffset{}, err
			}
			accBits += idx * elemSize * 8
			currentID = r.ElementType
			bitWidth = nil

		default:
			return FieldOffset{}, kinds.New(kinds.NotAggregate, "type id %d has kind %s, which cannot precede a dotted segment", currentID, rec.Kind())
		}
	}

	return FieldOffset{BitOffset: accBits, BitWidth: bitWidth}, nil
}

func findMember(members []types.Member, name string) (types.Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return types.Member{}, false
}

func explicitWidth(m types.Member) *uint8 {
	if !m.HasBitWidth {
		return nil
	}
	w := m.BitWidth
	return &w
}
