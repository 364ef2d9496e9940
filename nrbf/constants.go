package nrbf

import "fmt"

// RecordType is the single-byte tag opening every NRBF record.
type RecordType byte

// Record type tags as defined by the MS-NRBF wire format.
const (
	RecordSerializedStreamHeader         RecordType = 0
	RecordClassWithID                    RecordType = 1
	RecordSystemClassWithMembers         RecordType = 2
	RecordClassWithMembers               RecordType = 3
	RecordSystemClassWithMembersAndTypes RecordType = 4
	RecordClassWithMembersAndTypes       RecordType = 5
	RecordBinaryObjectString             RecordType = 6
	RecordBinaryArray                    RecordType = 7
	RecordMemberPrimitiveTyped           RecordType = 8
	RecordMemberReference                RecordType = 9
	RecordObjectNull                     RecordType = 10
	RecordMessageEnd                     RecordType = 11
	RecordBinaryLibrary                  RecordType = 12
	RecordObjectNullMultiple256          RecordType = 13
	RecordObjectNullMultiple             RecordType = 14
	RecordArraySinglePrimitive           RecordType = 15
	RecordArraySingleObject              RecordType = 16
	RecordArraySingleString              RecordType = 17

	// Remoting method records. Recognized so they produce a precise error,
	// but not parsed: they never occur in the metadata streams this library
	// targets and their payload needs the remoting MessageFlags layout.
	RecordBinaryMethodCall   RecordType = 21
	RecordBinaryMethodReturn RecordType = 22
)

var recordTypeNames = map[RecordType]string{
	RecordSerializedStreamHeader:         "SerializedStreamHeader",
	RecordClassWithID:                    "ClassWithId",
	RecordSystemClassWithMembers:         "SystemClassWithMembers",
	RecordClassWithMembers:               "ClassWithMembers",
	RecordSystemClassWithMembersAndTypes: "SystemClassWithMembersAndTypes",
	RecordClassWithMembersAndTypes:       "ClassWithMembersAndTypes",
	RecordBinaryObjectString:             "BinaryObjectString",
	RecordBinaryArray:                    "BinaryArray",
	RecordMemberPrimitiveTyped:           "MemberPrimitiveTyped",
	RecordMemberReference:                "MemberReference",
	RecordObjectNull:                     "ObjectNull",
	RecordMessageEnd:                     "MessageEnd",
	RecordBinaryLibrary:                  "BinaryLibrary",
	RecordObjectNullMultiple256:          "ObjectNullMultiple256",
	RecordObjectNullMultiple:             "ObjectNullMultiple",
	RecordArraySinglePrimitive:           "ArraySinglePrimitive",
	RecordArraySingleObject:              "ArraySingleObject",
	RecordArraySingleString:              "ArraySingleString",
	RecordBinaryMethodCall:               "BinaryMethodCall",
	RecordBinaryMethodReturn:             "BinaryMethodReturn",
}

func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RecordType(0x%02x)", byte(t))
}

// BinaryType is the member/element type tag used in class and array
// type descriptors.
type BinaryType byte

const (
	TypePrimitive      BinaryType = 0
	TypeString         BinaryType = 1
	TypeObject         BinaryType = 2
	TypeSystemClass    BinaryType = 3
	TypeClass          BinaryType = 4
	TypeObjectArray    BinaryType = 5
	TypeStringArray    BinaryType = 6
	TypePrimitiveArray BinaryType = 7
)

var binaryTypeNames = [...]string{
	"Primitive", "String", "Object", "SystemClass",
	"Class", "ObjectArray", "StringArray", "PrimitiveArray",
}

func (t BinaryType) String() string {
	if int(t) < len(binaryTypeNames) {
		return binaryTypeNames[t]
	}
	return fmt.Sprintf("BinaryType(0x%02x)", byte(t))
}

func (t BinaryType) valid() bool {
	return t <= TypePrimitiveArray
}

// PrimitiveType is the sub-type code carried by Primitive and
// PrimitiveArray descriptors and by MemberPrimitiveTyped records.
type PrimitiveType byte

const (
	PrimBoolean  PrimitiveType = 1
	PrimByte     PrimitiveType = 2
	PrimChar     PrimitiveType = 3
	PrimDecimal  PrimitiveType = 5
	PrimDouble   PrimitiveType = 6
	PrimInt16    PrimitiveType = 7
	PrimInt32    PrimitiveType = 8
	PrimInt64    PrimitiveType = 9
	PrimSByte    PrimitiveType = 10
	PrimSingle   PrimitiveType = 11
	PrimTimeSpan PrimitiveType = 12
	PrimDateTime PrimitiveType = 13
	PrimUInt16   PrimitiveType = 14
	PrimUInt32   PrimitiveType = 15
	PrimUInt64   PrimitiveType = 16
	PrimNull     PrimitiveType = 17
	PrimString   PrimitiveType = 18
)

var primitiveTypeNames = map[PrimitiveType]string{
	PrimBoolean:  "Boolean",
	PrimByte:     "Byte",
	PrimChar:     "Char",
	PrimDecimal:  "Decimal",
	PrimDouble:   "Double",
	PrimInt16:    "Int16",
	PrimInt32:    "Int32",
	PrimInt64:    "Int64",
	PrimSByte:    "SByte",
	PrimSingle:   "Single",
	PrimTimeSpan: "TimeSpan",
	PrimDateTime: "DateTime",
	PrimUInt16:   "UInt16",
	PrimUInt32:   "UInt32",
	PrimUInt64:   "UInt64",
	PrimNull:     "Null",
	PrimString:   "String",
}

func (t PrimitiveType) String() string {
	if name, ok := primitiveTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveType(0x%02x)", byte(t))
}

func (t PrimitiveType) valid() bool {
	_, ok := primitiveTypeNames[t]
	return ok
}

// BinaryArrayType is the shape discriminator of a BinaryArray record.
type BinaryArrayType byte

const (
	ArraySingle            BinaryArrayType = 0
	ArrayJagged            BinaryArrayType = 1
	ArrayRectangular       BinaryArrayType = 2
	ArraySingleOffset      BinaryArrayType = 3
	ArrayJaggedOffset      BinaryArrayType = 4
	ArrayRectangularOffset BinaryArrayType = 5
)

var binaryArrayTypeNames = [...]string{
	"Single", "Jagged", "Rectangular",
	"SingleOffset", "JaggedOffset", "RectangularOffset",
}

func (t BinaryArrayType) String() string {
	if int(t) < len(binaryArrayTypeNames) {
		return binaryArrayTypeNames[t]
	}
	return fmt.Sprintf("BinaryArrayType(0x%02x)", byte(t))
}

func (t BinaryArrayType) valid() bool {
	return t <= ArrayRectangularOffset
}

// hasLowerBounds reports whether the array shape carries a lower-bound
// value per dimension after the lengths.
func (t BinaryArrayType) hasLowerBounds() bool {
	return t == ArraySingleOffset || t == ArrayJaggedOffset || t == ArrayRectangularOffset
}
