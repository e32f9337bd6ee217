package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

func TestNewAndBasicLookups(t *testing.T) {
	records := []types.Record{
		types.IntRecord{ByteSize: 4},    // id 1
		types.StructRecord{ByteSize: 8}, // id 2, anonymous
	}
	ix, err := New(records)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())

	rec, err := ix.RecordOf(1)
	require.NoError(t, err)
	assert.Equal(t, types.KindInt, rec.Kind())

	_, err = ix.RecordOf(0)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.BadTypeID, kerr.Kind)

	_, err = ix.RecordOf(99)
	require.Error(t, err)
}

func TestIDOfAndAllIDsOf(t *testing.T) {
	records := []types.Record{
		types.TypedefRecord{Base: types.Base{Name: "u32"}, Referent: 2},
		types.IntRecord{Base: types.Base{Name: "u32"}, ByteSize: 4, Bits: 32},
		types.StructRecord{Base: types.Base{Name: "u32"}}, // duplicate name, later in decode order
	}
	ix, err := New(records)
	require.NoError(t, err)

	id, err := ix.IDOf("u32")
	require.NoError(t, err)
	assert.Equal(t, types.TypeID(1), id) // first-bound wins

	all := ix.AllIDsOf("u32")
	assert.Equal(t, []types.TypeID{1, 2, 3}, all)

	_, err = ix.IDOf("missing")
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.UnknownName, kerr.Kind)
}

func TestDanglingReference(t *testing.T) {
	records := []types.Record{
		types.PointerRecord{Referent: 5}, // id 1, points nowhere
	}
	_, err := New(records)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.DanglingTypeRef, kerr.Kind)
}

func TestSizeOfPointerAndArray(t *testing.T) {
	records := []types.Record{
		types.IntRecord{ByteSize: 4},                       // id 1
		types.PointerRecord{Referent: 1},                   // id 2
		types.ArrayRecord{ElementType: 1, NumElements: 10}, // id 3
	}
	ix, err := New(records)
	require.NoError(t, err)

	sz, err := ix.SizeOf(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), sz)

	sz, err = ix.SizeOf(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), sz)
}

func TestSizeOfForwardHasNoSize(t *testing.T) {
	records := []types.Record{types.ForwardRecord{}}
	ix, err := New(records)
	require.NoError(t, err)

	_, err = ix.SizeOf(1)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.NoSizeForKind, kerr.Kind)
}

func TestSizeOfVoidHasNoSize(t *testing.T) {
	ix, err := New(nil)
	require.NoError(t, err)

	_, err = ix.SizeOf(0)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.NoSizeForKind, kerr.Kind)
}

func TestSizeOfSelfReferentialArrayIsBoundedNotAStackOverflow(t *testing.T) {
	// A crafted array whose element type is itself: every id it references
	// exists (so checkReferences accepts it), but SizeOf must not recurse
	// forever trying to size the element.
	records := []types.Record{
		types.ArrayRecord{ElementType: 1, NumElements: 4}, // id 1, points at itself
	}
	ix, err := New(records)
	require.NoError(t, err)

	_, err = ix.SizeOf(1)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.ResolutionCycle, kerr.Kind)
}

func TestSizeOfMutuallyReferentialArraysIsBounded(t *testing.T) {
	records := []types.Record{
		types.ArrayRecord{ElementType: 2, NumElements: 2}, // id 1 -> id 2
		types.ArrayRecord{ElementType: 1, NumElements: 2}, // id 2 -> id 1
	}
	ix, err := New(records)
	require.NoError(t, err)

	_, err = ix.SizeOf(1)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.ResolutionCycle, kerr.Kind)
}
