package types

import (
	"encoding/binary"

	"github.com/alessandrogario/btfparse/pkg/btf/kinds"
	"github.com/alessandrogario/btfparse/pkg/btf/reader"
	"github.com/alessandrogario/btfparse/pkg/btf/strtab"
)

// Wire kind values, bit-exact with the upstream Linux BTF_KIND_* constants.
const (
	wireInt       = 1
	wirePtr       = 2
	wireArray     = 3
	wireStruct    = 4
	wireUnion     = 5
	wireEnum      = 6
	wireFwd       = 7
	wireTypedef   = 8
	wireVolatile  = 9
	wireConst     = 10
	wireRestrict  = 11
	wireFunc      = 12
	wireFuncProto = 13
	wireVar       = 14
	wireDatasec   = 15
	wireFloat     = 16
	wireDeclTag   = 17
	wireTypeTag   = 18
	wireEnum64    = 19
)

const descriptorSize = 12 // name_off(4) + info(4) + size_or_type(4)

// Decode consumes the full type section and returns one Record per decoded
// type, in id order (Records[0] corresponds to type id 1). strings resolves
// name offsets against the accompanying string section.
func Decode(section []byte, order binary.ByteOrder, strings *strtab.Table) ([]Record, error) {
	r := reader.New(section, order)

	var records []Record
	id := TypeID(1)

	for r.Remaining() > 0 {
		if r.Remaining() < descriptorSize {
			return nil, kinds.Wrap(kinds.TrailingBytes, truncatedErr(r), "%d bytes left over after the last type record, fewer than a descriptor", r.Remaining())
		}

		nameOff, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: name offset", id)
		}
		info, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: info", id)
		}
		sizeOrType, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: size_or_type", id)
		}

		vlen := uint16(info & 0xFFFF)
		reserved := uint8((info >> 16) & 0xFF)
		wireKind := uint8((info >> 24) & 0x1F)
		topReserved := uint8((info >> 29) & 0x3)
		kindFlag := (info >> 31) != 0

		if reserved != 0 || topReserved != 0 {
			return nil, kinds.New(kinds.BadReservedBits, "type id %d: reserved info bits are non-zero (0x%08x)", id, info)
		}

		name, err := strings.NameOf(nameOff)
		if err != nil {
			return nil, err
		}

		rec, err := decodeOne(r, strings, id, wireKind, kindFlag, vlen, sizeOrType, name)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
		id++
	}

	if r.Remaining() != 0 {
		return nil, kinds.New(kinds.TrailingBytes, "%d bytes left over after the last type record", r.Remaining())
	}

	return records, nil
}

func truncatedErr(r *reader.Reader) error {
	_, err := r.Bytes(descriptorSize)
	return err
}

func decodeOne(r *reader.Reader, strings *strtab.Table, id TypeID, wireKind uint8, kindFlag bool, vlen uint16, sizeOrType uint32, name string) (Record, error) {
	b := Base{Name: name}

	switch wireKind {
	case wireInt:
		word, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: int encoding word", id)
		}
		encBits := uint8((word >> 24) & 0xFF)
		offset := uint8((word >> 16) & 0xFF)
		bits := uint8(word & 0xFF)

		enc, err := decodeIntEncoding(encBits)
		if err != nil {
			return nil, kinds.Wrap(kinds.BadIntegerEncoding, err, "type id %d", id)
		}

		return IntRecord{Base: b, ByteSize: uint8(sizeOrType), BitOffset: offset, Bits: bits, Encoding: enc}, nil

	case wireFloat:
		return FloatRecord{Base: b, ByteSize: uint8(sizeOrType)}, nil

	case wirePtr:
		return PointerRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireArray:
		elemType, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: array element type", id)
		}
		idxType, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: array index type", id)
		}
		nelems, err := r.U32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: array nelems", id)
		}
		return ArrayRecord{Base: b, ElementType: TypeID(elemType), IndexType: TypeID(idxType), NumElements: nelems}, nil

	case wireStruct, wireUnion:
		members := make([]Member, 0, vlen)
		for i := uint16(0); i < vlen; i++ {
			mNameOff, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: member %d name", id, i)
			}
			mType, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: member %d type", id, i)
			}
			mOffsetBits, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: member %d offset", id, i)
			}

			mName, err := strings.NameOf(mNameOff)
			if err != nil {
				return nil, err
			}

			m := Member{Name: mName, Type: TypeID(mType)}
			if kindFlag {
				width := uint8((mOffsetBits >> 24) & 0xFF)
				m.BitOffset = mOffsetBits & 0x00FFFFFF
				if width != 0 {
					m.BitWidth = width
					m.HasBitWidth = true
				}
			} else {
				m.BitOffset = mOffsetBits
			}
			members = append(members, m)
		}

		if wireKind == wireStruct {
			return StructRecord{Base: b, ByteSize: sizeOrType, Members: members}, nil
		}
		return UnionRecord{Base: b, ByteSize: sizeOrType, Members: members}, nil

	case wireEnum:
		values := make([]EnumValue, 0, vlen)
		for i := uint16(0); i < vlen; i++ {
			vNameOff, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: enum value %d name", id, i)
			}
			v, err := r.I32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: enum value %d", id, i)
			}
			vName, err := strings.NameOf(vNameOff)
			if err != nil {
				return nil, err
			}
			values = append(values, EnumValue{Name: vName, Value: int64(v)})
		}
		return Enum32Record{Base: b, ByteSize: uint8(sizeOrType), Signed: kindFlag, Values: values}, nil

	case wireEnum64:
		values := make([]EnumValue, 0, vlen)
		for i := uint16(0); i < vlen; i++ {
			vNameOff, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: enum64 value %d name", id, i)
			}
			lo, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: enum64 value %d lo", id, i)
			}
			hi, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: enum64 value %d hi", id, i)
			}
			vName, err := strings.NameOf(vNameOff)
			if err != nil {
				return nil, err
			}
			values = append(values, EnumValue{Name: vName, Value: int64(assembleU64(lo, hi))})
		}
		return Enum64Record{Base: b, ByteSize: uint8(sizeOrType), Signed: kindFlag, Values: values}, nil

	case wireFwd:
		return ForwardRecord{Base: b, Union: kindFlag}, nil

	case wireTypedef:
		return TypedefRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireConst:
		return ConstRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireVolatile:
		return VolatileRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireRestrict:
		return RestrictRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireTypeTag:
		return TypeTagRecord{Base: b, Referent: TypeID(sizeOrType)}, nil

	case wireFunc:
		return FunctionRecord{Base: b, Proto: TypeID(sizeOrType), Linkage: linkageFromWire(vlen)}, nil

	case wireFuncProto:
		params := make([]Param, 0, vlen)
		for i := uint16(0); i < vlen; i++ {
			pNameOff, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: param %d name", id, i)
			}
			pType, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: param %d type", id, i)
			}
			pName, err := strings.NameOf(pNameOff)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: pName, Type: TypeID(pType)})
		}
		return FuncProtoRecord{Base: b, Return: TypeID(sizeOrType), Params: params}, nil

	case wireVar:
		return VariableRecord{Base: b, Referent: TypeID(sizeOrType), Linkage: linkageFromWire(vlen)}, nil

	case wireDatasec:
		vars := make([]DataSectionVar, 0, vlen)
		for i := uint16(0); i < vlen; i++ {
			vType, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: datasec var %d type", id, i)
			}
			vOffset, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: datasec var %d offset", id, i)
			}
			vSize, err := r.U32()
			if err != nil {
				return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: datasec var %d size", id, i)
			}
			vars = append(vars, DataSectionVar{Type: TypeID(vType), Offset: vOffset, Size: vSize})
		}
		return DataSectionRecord{Base: b, ByteSize: sizeOrType, Vars: vars}, nil

	case wireDeclTag:
		word, err := r.I32()
		if err != nil {
			return nil, kinds.Wrap(kinds.TruncatedType, err, "type id %d: decl_tag component index", id)
		}
		return DeclTagRecord{Base: b, Referent: TypeID(sizeOrType), ComponentIdx: word}, nil

	default:
		return nil, kinds.New(kinds.UnknownKind, "type id %d: unrecognized kind %d", id, wireKind)
	}
}

func decodeIntEncoding(bits uint8) (IntEncoding, error) {
	const (
		flagSigned = 1 << 0
		flagChar   = 1 << 1
		flagBool   = 1 << 2
	)
	set := 0
	var enc IntEncoding = EncodingPlain
	if bits&flagSigned != 0 {
		set++
		enc = EncodingSigned
	}
	if bits&flagChar != 0 {
		set++
		enc = EncodingChar
	}
	if bits&flagBool != 0 {
		set++
		enc = EncodingBool
	}
	if set > 1 {
		return 0, kinds.New(kinds.BadIntegerEncoding, "more than one encoding bit set (0x%02x)", bits)
	}
	return enc, nil
}

func linkageFromWire(v uint16) Linkage {
	switch v {
	case 1:
		return LinkageGlobal
	case 2:
		return LinkageExtern
	default:
		return LinkageStatic
	}
}

func assembleU64(lo, hi uint32) uint64 {
	return uint64(lo) | uint64(hi)<<32
}
