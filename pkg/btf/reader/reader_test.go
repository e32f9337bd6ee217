package reader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
)

func TestReadFixedWidth(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := New(buf, binary.LittleEndian)

	b, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x07060504), u32)
}

func TestU64BigEndian(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 0x0102030405060708)
	r := New(buf, binary.BigEndian)

	v, err := r.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v)
}

func TestTruncated(t *testing.T) {
	r := New([]byte{0x01, 0x02}, binary.LittleEndian)
	_, err := r.U32()
	require.Error(t, err)

	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.Truncated, kerr.Kind)
}

func TestSeekAndSkip(t *testing.T) {
	r := New([]byte{0, 1, 2, 3, 4}, binary.LittleEndian)
	require.NoError(t, r.Seek(3))
	assert.Equal(t, 3, r.Pos())

	b, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), b)

	require.NoError(t, r.Skip(-2))
	assert.Equal(t, 2, r.Pos())

	require.Error(t, r.Seek(100))
}

func TestPeekU32DoesNotAdvance(t *testing.T) {
	buf := []byte{0xeB, 0x9F, 0, 0}
	r := New(buf, binary.LittleEndian)
	v, err := r.PeekU32()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Pos())
	assert.Equal(t, uint32(0x00009Feb), v)
}

func TestBytesBounds(t *testing.T) {
	r := New([]byte{1, 2, 3}, binary.LittleEndian)
	b, err := r.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	_, err = r.Bytes(5)
	require.Error(t, err)
}

func TestCString(t *testing.T) {
	r := New([]byte("hello\x00world\x00"), binary.LittleEndian)
	s, err := r.CString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = r.CString()
	require.NoError(t, err)
	assert.Equal(t, "world", s)
}

func TestCStringUnterminated(t *testing.T) {
	r := New([]byte("no-terminator"), binary.LittleEndian)
	_, err := r.CString()
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.UnterminatedString, kerr.Kind)
}

func TestCStringBadUTF8(t *testing.T) {
	buf := append([]byte{0xff, 0xfe}, 0x00)
	r := New(buf, binary.LittleEndian)
	_, err := r.CString()
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.BadStringEncoding, kerr.Kind)
}
