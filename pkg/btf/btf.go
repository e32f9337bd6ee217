// Package btf decodes the BPF Type Format and exposes a queryable type
// index: name and id lookups, canonical sizes, and dotted-path field
// offsets. The heavy lifting lives in the sub-packages under pkg/btf; this
// package is the public surface that wires them together.
package btf

import (
	"os"

	"github.com/alessandrogario/btfparse/pkg/btf/header"
	"github.com/alessandrogario/btfparse/pkg/btf/index"
	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/offset"
	"github.com/alessandrogario/btfparse/pkg/btf/strtab"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

// Re-exported so callers can name these types through this one package. The
// ErrorKind constants (kinds.BadMagic, ...) and the Kind constants
// (types.KindInt, ...) are not re-exported and live in their own packages.
type (
	TypeID      = types.TypeID
	Kind        = types.Kind
	Record      = types.Record
	FieldOffset = offset.FieldOffset
	Error       = kinds.Error
	ErrorKind   = kinds.ErrorKind
)

// Concrete record payloads, for callers that type-switch on Record.
type (
	IntRecord         = types.IntRecord
	FloatRecord       = types.FloatRecord
	PointerRecord     = types.PointerRecord
	ArrayRecord       = types.ArrayRecord
	StructRecord      = types.StructRecord
	UnionRecord       = types.UnionRecord
	Enum32Record      = types.Enum32Record
	Enum64Record      = types.Enum64Record
	ForwardRecord     = types.ForwardRecord
	TypedefRecord     = types.TypedefRecord
	ConstRecord       = types.ConstRecord
	VolatileRecord    = types.VolatileRecord
	RestrictRecord    = types.RestrictRecord
	TypeTagRecord     = types.TypeTagRecord
	FunctionRecord    = types.FunctionRecord
	FuncProtoRecord   = types.FuncProtoRecord
	VariableRecord    = types.VariableRecord
	DataSectionRecord = types.DataSectionRecord
	DeclTagRecord     = types.DeclTagRecord
	Member            = types.Member
)

// Index is the decoded, queryable type graph.
type Index struct {
	inner *index.Index
}

// Open decodes data as a BTF blob and builds a queryable Index. It copies
// every name it needs out of data during decode, so the caller's buffer can
// be discarded (or reused) once Open returns.
func Open(data []byte) (*Index, error) {
	h, err := header.Decode(data)
	if err != nil {
		return nil, err
	}

	strings := strtab.New(h.StringSection(data))
	records, err := types.Decode(h.TypeSection(data), h.Order, strings)
	if err != nil {
		return nil, err
	}

	ix, err := index.New(records)
	if err != nil {
		return nil, err
	}

	return &Index{inner: ix}, nil
}

// OpenFile reads path fully into memory and calls Open on its contents.
func OpenFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kinds.Wrap(kinds.SourceUnavailable, err, "reading %s", path)
	}
	return Open(data)
}

// Len returns the number of decoded type records.
func (ix *Index) Len() int { return ix.inner.Len() }

// RecordOf returns the decoded record for id.
func (ix *Index) RecordOf(id TypeID) (Record, error) { return ix.inner.RecordOf(id) }

// NameOf returns the name bound to id, or "" if it has none.
func (ix *Index) NameOf(id TypeID) string { return ix.inner.NameOf(id) }

// IDOf returns the first id bound to name in decode order.
func (ix *Index) IDOf(name string) (TypeID, error) { return ix.inner.IDOf(name) }

// AllIDsOf returns every id bound to name, in decode order.
func (ix *Index) AllIDsOf(name string) []TypeID { return ix.inner.AllIDsOf(name) }

// SizeOf returns the canonical byte size of id.
func (ix *Index) SizeOf(id TypeID) (uint64, error) { return ix.inner.SizeOf(id) }

// KindOf returns the raw (non-canonicalized) kind of id.
func (ix *Index) KindOf(id TypeID) (Kind, error) { return ix.inner.KindOf(id) }

// OffsetOf walks the dotted field path from id and returns its bit offset.
func (ix *Index) OffsetOf(id TypeID, path string) (FieldOffset, error) {
	return offset.OffsetOf(ix.inner, id, path)
}

// All iterates every (id, record) pair in id order.
func (ix *Index) All(yield func(TypeID, Record) bool) {
	ix.inner.All(yield)
}
