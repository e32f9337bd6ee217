// Package index builds the dense, cross-referenced type table queries run
// against: a slice of decoded records addressable by id, plus a name to
// id-list multimap built once at construction time.
package index

import (
	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/resolve"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

// pointerByteSize is the pointer width assumed for BTF_KIND_PTR records,
// which carry no size of their own on the wire. This matches the word size
// of every BTF producer in practice (x86_64 and arm64 vmlinux, and modern
// userspace DWARF-to-BTF converters all emit 64-bit pointers).
const pointerByteSize = 8

// Index is the dense, immutable type table. The zero value is not usable;
// build one with New.
type Index struct {
	records []types.Record // records[i] is the record for type id i+1
	names   map[string][]types.TypeID
}

// New validates and indexes a decoded record slice. records[i] must be the
// record for type id i+1; id 0 ("void") has no record and is handled by the
// query methods directly.
func New(records []types.Record) (*Index, error) {
	ix := &Index{
		records: records,
		names:   make(map[string][]types.TypeID, len(records)),
	}

	for i, rec := range records {
		id := types.TypeID(i + 1)
		if name := rec.TypeName(); name != "" {
			ix.names[name] = append(ix.names[name], id)
		}
	}

	if err := ix.checkReferences(); err != nil {
		return nil, err
	}

	return ix, nil
}

func (ix *Index) validID(id types.TypeID) bool {
	return id == 0 || (int(id) >= 1 && int(id) <= len(ix.records))
}

// checkReferences enforces invariant 1 from the data model: every type id
// referenced by any record is 0 or a valid decoded record id.
func (ix *Index) checkReferences() error {
	check := func(from types.TypeID, ref types.TypeID) error {
		if !ix.validID(ref) {
			return kinds.New(kinds.DanglingTypeRef, "type id %d references non-existent type id %d", from, ref)
		}
		return nil
	}

	for i, rec := range ix.records {
		id := types.TypeID(i + 1)
		var err error
		switch r := rec.(type) {
		case types.PointerRecord:
			err = check(id, r.Referent)
		case types.ArrayRecord:
			if err = check(id, r.ElementType); err == nil {
				err = check(id, r.IndexType)
			}
		case types.StructRecord:
			for _, m := range r.Members {
				if err = check(id, m.Type); err != nil {
					break
				}
			}
		case types.UnionRecord:
			for _, m := range r.Members {
				if err = check(id, m.Type); err != nil {
					break
				}
			}
		case types.TypedefRecord:
			err = check(id, r.Referent)
		case types.ConstRecord:
			err = check(id, r.Referent)
		case types.VolatileRecord:
			err = check(id, r.Referent)
		case types.RestrictRecord:
			err = check(id, r.Referent)
		case types.TypeTagRecord:
			err = check(id, r.Referent)
		case types.FunctionRecord:
			err = check(id, r.Proto)
		case types.FuncProtoRecord:
			if err = check(id, r.Return); err == nil {
				for _, p := range r.Params {
					if err = check(id, p.Type); err != nil {
						break
					}
				}
			}
		case types.VariableRecord:
			err = check(id, r.Referent)
		case types.DataSectionRecord:
			for _, v := range r.Vars {
				if err = check(id, v.Type); err != nil {
					break
				}
			}
		case types.DeclTagRecord:
			err = check(id, r.Referent)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of decoded records (not counting the implicit void
// id 0).
func (ix *Index) Len() int { return len(ix.records) }

// RecordOf returns the decoded record for id, or BadTypeID if id is out of
// range or is the reserved void id.
func (ix *Index) RecordOf(id types.TypeID) (types.Record, error) {
	if id == 0 || int(id) < 1 || int(id) > len(ix.records) {
		return nil, kinds.New(kinds.BadTypeID, "type id %d is out of range [1, %d]", id, len(ix.records))
	}
	return ix.records[id-1], nil
}

// NameOf returns the name associated with id, or "" for void, unnamed
// records, and out-of-range ids.
func (ix *Index) NameOf(id types.TypeID) string {
	rec, err := ix.RecordOf(id)
	if err != nil {
		return ""
	}
	return rec.TypeName()
}

// IDOf returns the first id bound to name in decode order.
func (ix *Index) IDOf(name string) (types.TypeID, error) {
	ids := ix.names[name]
	if len(ids) == 0 {
		return 0, kinds.New(kinds.UnknownName, "no type named %q", name)
	}
	return ids[0], nil
}

// AllIDsOf returns every id bound to name, in decode order. The returned
// slice is owned by the caller; it is never nil, but may be empty.
func (ix *Index) AllIDsOf(name string) []types.TypeID {
	ids := ix.names[name]
	out := make([]types.TypeID, len(ids))
	copy(out, ids)
	return out
}

// maxSizeOfSteps bounds the Array/Variable recursion chain SizeOf follows,
// the same way resolve.maxSteps bounds canonicalization: a self- or
// mutually-referential chain (e.g. an array whose element type is itself)
// passes checkReferences, since every id it touches still exists, but must
// not be allowed to recurse without bound.
const maxSizeOfSteps = 64

// SizeOf returns the byte size of the canonical type id resolves to.
// Forwards, functions, function prototypes, decl tags, and void have no
// size and yield NoSizeForKind.
func (ix *Index) SizeOf(id types.TypeID) (uint64, error) {
	return ix.sizeOf(id, 0)
}

func (ix *Index) sizeOf(id types.TypeID, depth int) (uint64, error) {
	if depth >= maxSizeOfSteps {
		return 0, kinds.New(kinds.ResolutionCycle, "type id %d did not resolve to a fixed size within %d steps", id, maxSizeOfSteps)
	}

	canonID, rec, err := resolve.Canonicalize(ix, id)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, kinds.New(kinds.NoSizeForKind, "type id %d (void) has no size", id)
	}

	switch r := rec.(type) {
	case types.IntRecord:
		return uint64(r.ByteSize), nil
	case types.FloatRecord:
		return uint64(r.ByteSize), nil
	case types.PointerRecord:
		return pointerByteSize, nil
	case types.ArrayRecord:
		elemSize, err := ix.sizeOf(r.ElementType, depth+1)
		if err != nil {
			return 0, err
		}
		return elemSize * uint64(r.NumElements), nil
	case types.StructRecord:
		return uint64(r.ByteSize), nil
	case types.UnionRecord:
		return uint64(r.ByteSize), nil
	case types.Enum32Record:
		return uint64(r.ByteSize), nil
	case types.Enum64Record:
		return uint64(r.ByteSize), nil
	case types.DataSectionRecord:
		return uint64(r.ByteSize), nil
	case types.VariableRecord:
		return ix.sizeOf(r.Referent, depth+1)
	default:
		return 0, kinds.New(kinds.NoSizeForKind, "type id %d has kind %s, which has no size", canonID, rec.Kind())
	}
}

// KindOf returns the raw (not canonicalized) kind of id's own record.
func (ix *Index) KindOf(id types.TypeID) (types.Kind, error) {
	rec, err := ix.RecordOf(id)
	if err != nil {
		return 0, err
	}
	return rec.Kind(), nil
}

// All iterates every decoded (id, record) pair in id order, for dumping.
func (ix *Index) All(yield func(types.TypeID, types.Record) bool) {
	for i, rec := range ix.records {
		if !yield(types.TypeID(i+1), rec) {
			return
		}
	}
}
