// Package types defines the decoded BTF type records (the tagged variant
// described by the data model) and the decoder that produces them from a
// raw type section.
package types

import "fmt"

// TypeID identifies a record by its position in the type section. 0 is the
// reserved id for "void" and never has a decoded record behind it.
type TypeID uint32

// Kind discriminates which payload a Record carries.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum32
	KindEnum64
	KindForward
	KindTypedef
	KindConst
	KindVolatile
	KindRestrict
	KindFunction
	KindFuncProto
	KindVariable
	KindDataSection
	KindDeclTag
	KindTypeTag
)

var kindNames = [...]string{
	KindInt:         "Int",
	KindFloat:       "Float",
	KindPointer:     "Pointer",
	KindArray:       "Array",
	KindStruct:      "Struct",
	KindUnion:       "Union",
	KindEnum32:      "Enum32",
	KindEnum64:      "Enum64",
	KindForward:     "Forward",
	KindTypedef:     "Typedef",
	KindConst:       "Const",
	KindVolatile:    "Volatile",
	KindRestrict:    "Restrict",
	KindFunction:    "Function",
	KindFuncProto:   "FuncProto",
	KindVariable:    "Variable",
	KindDataSection: "DataSection",
	KindDeclTag:     "DeclTag",
	KindTypeTag:     "TypeTag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsTransparent reports whether the kind is stripped by canonicalization
// (qualifiers and typedefs never contribute to layout).
func (k Kind) IsTransparent() bool {
	switch k {
	case KindTypedef, KindConst, KindVolatile, KindRestrict, KindTypeTag:
		return true
	default:
		return false
	}
}

// Record is the common interface every decoded type payload satisfies.
type Record interface {
	Kind() Kind
	TypeName() string
}

type Base struct {
	Name string
}

func (b Base) TypeName() string { return b.Name }

// IntEncoding is the BTF integer encoding discriminator; the bit flags are
// mutually exclusive on the wire.
type IntEncoding uint8

const (
	EncodingPlain IntEncoding = iota
	EncodingSigned
	EncodingChar
	EncodingBool
)

// IntRecord is a BTF_KIND_INT.
type IntRecord struct {
	Base
	ByteSize  uint8
	BitOffset uint8
	Bits      uint8
	Encoding  IntEncoding
}

func (IntRecord) Kind() Kind { return KindInt }

// FloatRecord is a BTF_KIND_FLOAT.
type FloatRecord struct {
	Base
	ByteSize uint8
}

func (FloatRecord) Kind() Kind { return KindFloat }

// PointerRecord is a BTF_KIND_PTR.
type PointerRecord struct {
	Base
	Referent TypeID
}

func (PointerRecord) Kind() Kind { return KindPointer }

// ArrayRecord is a BTF_KIND_ARRAY.
type ArrayRecord struct {
	Base
	ElementType TypeID
	IndexType   TypeID
	NumElements uint32
}

func (ArrayRecord) Kind() Kind { return KindArray }

// Member is one field of a StructRecord or UnionRecord.
type Member struct {
	Name        string
	Type        TypeID
	BitOffset   uint32
	BitWidth    uint8
	HasBitWidth bool
}

// StructRecord is a BTF_KIND_STRUCT.
type StructRecord struct {
	Base
	ByteSize uint32
	Members  []Member
}

func (StructRecord) Kind() Kind { return KindStruct }

// UnionRecord is a BTF_KIND_UNION.
type UnionRecord struct {
	Base
	ByteSize uint32
	Members  []Member
}

func (UnionRecord) Kind() Kind { return KindUnion }

// EnumValue is one (name, value) pair of an enum.
type EnumValue struct {
	Name  string
	Value int64
}

// Enum32Record is a BTF_KIND_ENUM.
type Enum32Record struct {
	Base
	ByteSize uint8
	Signed   bool
	Values   []EnumValue
}

func (Enum32Record) Kind() Kind { return KindEnum32 }

// Enum64Record is a BTF_KIND_ENUM64.
type Enum64Record struct {
	Base
	ByteSize uint8
	Signed   bool
	Values   []EnumValue
}

func (Enum64Record) Kind() Kind { return KindEnum64 }

// ForwardRecord is a BTF_KIND_FWD. It carries no layout information.
type ForwardRecord struct {
	Base
	Union bool
}

func (ForwardRecord) Kind() Kind { return KindForward }

// TypedefRecord is a BTF_KIND_TYPEDEF. Transparent for layout.
type TypedefRecord struct {
	Base
	Referent TypeID
}

func (TypedefRecord) Kind() Kind { return KindTypedef }

// ConstRecord is a BTF_KIND_CONST. Transparent for layout.
type ConstRecord struct {
	Base
	Referent TypeID
}

func (ConstRecord) Kind() Kind { return KindConst }

// VolatileRecord is a BTF_KIND_VOLATILE. Transparent for layout.
type VolatileRecord struct {
	Base
	Referent TypeID
}

func (VolatileRecord) Kind() Kind { return KindVolatile }

// RestrictRecord is a BTF_KIND_RESTRICT. Transparent for layout.
type RestrictRecord struct {
	Base
	Referent TypeID
}

func (RestrictRecord) Kind() Kind { return KindRestrict }

// TypeTagRecord is a BTF_KIND_TYPE_TAG. Transparent for layout.
type TypeTagRecord struct {
	Base
	Referent TypeID
}

func (TypeTagRecord) Kind() Kind { return KindTypeTag }

// Linkage is the BTF linkage discriminator shared by Function and Variable.
type Linkage uint8

const (
	LinkageStatic Linkage = iota
	LinkageGlobal
	LinkageExtern
)

// FunctionRecord is a BTF_KIND_FUNC.
type FunctionRecord struct {
	Base
	Proto   TypeID
	Linkage Linkage
}

func (FunctionRecord) Kind() Kind { return KindFunction }

// Param is one parameter of a FuncProtoRecord.
type Param struct {
	Name string
	Type TypeID
}

// FuncProtoRecord is a BTF_KIND_FUNC_PROTO.
type FuncProtoRecord struct {
	Base
	Return TypeID
	Params []Param
}

func (FuncProtoRecord) Kind() Kind { return KindFuncProto }

// VariableRecord is a BTF_KIND_VAR.
type VariableRecord struct {
	Base
	Referent TypeID
	Linkage  Linkage
}

func (VariableRecord) Kind() Kind { return KindVariable }

// DataSectionVar is one entry of a DataSectionRecord.
type DataSectionVar struct {
	Type   TypeID
	Offset uint32
	Size   uint32
}

// DataSectionRecord is a BTF_KIND_DATASEC.
type DataSectionRecord struct {
	Base
	ByteSize uint32
	Vars     []DataSectionVar
}

func (DataSectionRecord) Kind() Kind { return KindDataSection }

// DeclTagRecord is a BTF_KIND_DECL_TAG. ComponentIdx is -1 for "whole type".
type DeclTagRecord struct {
	Base
	Referent     TypeID
	ComponentIdx int32
}

func (DeclTagRecord) Kind() Kind { return KindDeclTag }
