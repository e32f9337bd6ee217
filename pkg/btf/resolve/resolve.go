// Package resolve implements canonicalization: stripping typedefs and
// qualifiers down to the layout-bearing type they ultimately name. It is the
// single place that understands "transparent" kinds, so every caller that
// needs a canonical type (the offset engine, size_of) walks through here
// instead of repeating the skip loop.
package resolve

import (
	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

// maxSteps bounds the typedef/qualifier chain length canonicalize will
// follow before concluding the type graph is cyclic.
const maxSteps = 64

// RecordOf is the minimal lookup canonicalize needs; *index.Index satisfies
// it without this package importing index (which would create a cycle,
// since index imports this package to compute canonical sizes).
type RecordOf interface {
	RecordOf(id types.TypeID) (types.Record, error)
}

// Canonicalize repeatedly replaces id with its referent while the record's
// kind is transparent (typedef, const, volatile, restrict, type_tag),
// stopping at the first layout-bearing kind. id 0 (void) canonicalizes to
// itself; it has no record.
func Canonicalize(table RecordOf, id types.TypeID) (types.TypeID, types.Record, error) {
	if id == 0 {
		return 0, nil, nil
	}

	current := id
	for step := 0; ; step++ {
		if step >= maxSteps {
			return 0, nil, kinds.New(kinds.ResolutionCycle, "type id %d did not resolve to a concrete type within %d steps", id, maxSteps)
		}

		rec, err := table.RecordOf(current)
		if err != nil {
			return 0, nil, err
		}

		referent, transparent := referentOf(rec)
		if !transparent {
			return current, rec, nil
		}
		current = referent
		if current == 0 {
			// A qualifier/typedef chain bottoming out at void is legal
			// (e.g. "typedef void *voidp" is a pointer, not this case, but
			// "const void" is): void has no record, so stop here.
			return 0, nil, nil
		}
	}
}

func referentOf(rec types.Record) (types.TypeID, bool) {
	switch r := rec.(type) {
	case types.TypedefRecord:
		return r.Referent, true
	case types.ConstRecord:
		return r.Referent, true
	case types.VolatileRecord:
		return r.Referent, true
	case types.RestrictRecord:
		return r.Referent, true
	case types.TypeTagRecord:
		return r.Referent, true
	default:
		return 0, false
	}
}
