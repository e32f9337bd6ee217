package header

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
)

func buildHeader(order binary.ByteOrder, magic uint16, version, flags uint8, hdrLen, typeOff, typeLen, strOff, strLen uint32, trailer int) []byte {
	buf := make([]byte, 24+trailer)
	binary.LittleEndian.PutUint16(buf[0:], magic) // magic is always read as raw LE bytes first
	buf[2] = version
	buf[3] = flags
	order.PutUint32(buf[4:], hdrLen)
	order.PutUint32(buf[8:], typeOff)
	order.PutUint32(buf[12:], typeLen)
	order.PutUint32(buf[16:], strOff)
	order.PutUint32(buf[20:], strLen)
	return buf
}

func TestDecodeLittleEndian(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 1, 0, 24, 0, 10, 10, 4, 14)
	h, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, h.Order)
	assert.Equal(t, uint32(10), h.TypeLen)
	assert.Equal(t, uint32(4), h.StringLen)
}

func TestDecodeBigEndian(t *testing.T) {
	buf := buildHeader(binary.BigEndian, magicBE, 1, 0, 24, 0, 0, 0, 1, 1)
	h, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, h.Order)
}

func TestDecodeBadMagic(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, 0xDEAD, 1, 0, 24, 0, 0, 0, 0, 0)
	_, err := Decode(buf)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.BadMagic, kerr.Kind)
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 2, 0, 24, 0, 0, 0, 0, 0)
	_, err := Decode(buf)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.UnsupportedVersion, kerr.Kind)
}

func TestDecodeUnknownFlags(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 1, 1, 24, 0, 0, 0, 0, 0)
	_, err := Decode(buf)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.UnknownFlags, kerr.Kind)
}

func TestDecodeBadHeaderLength(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 1, 0, 30, 0, 0, 0, 0, 0)
	_, err := Decode(buf)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.BadHeaderLength, kerr.Kind)
}

func TestDecodeSectionOutOfBounds(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 1, 0, 24, 0, 1000, 0, 0, 0)
	_, err := Decode(buf)
	require.Error(t, err)
	var kerr *kinds.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kinds.SectionOutOfBounds, kerr.Kind)
}

func TestSectionSlices(t *testing.T) {
	buf := buildHeader(binary.LittleEndian, magicLE, 1, 0, 24, 0, 12, 12, 3, 15)
	copy(buf[24:36], []byte("typesection!"))
	copy(buf[36:39], []byte("str"))
	h, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("typesection!"), h.TypeSection(buf))
	assert.Equal(t, []byte("str"), h.StringSection(buf))
}
