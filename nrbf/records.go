package nrbf

// Record is one self-contained unit of the NRBF wire format. The set of
// implementations is closed: every wire record tag maps to exactly one
// concrete type below, and the Decoder and Encoder both switch exhaustively
// over them.
type Record interface {
	// Type returns the wire tag this record is written with.
	Type() RecordType
}

// ClassInfo is the common identity block of all class records: the object
// id, the class name, and the ordered member names. The wire member count
// is always len(MemberNames).
type ClassInfo struct {
	ObjectID    int32
	Name        string
	MemberNames []string
}

// TypeDescriptor describes the declared type of one class member or array
// element. The payload fields are populated according to Tag: Primitive and
// PrimitiveArray carry a primitive sub-type, SystemClass carries a class
// name, Class carries a class name and a library id. All other tags have
// no payload.
type TypeDescriptor struct {
	Tag       BinaryType
	Primitive PrimitiveType
	ClassName string
	LibraryID int32
}

// MemberTypeInfo is the ordered list of member type descriptors attached to
// a ClassWithMembersAndTypes-family record, parallel to ClassInfo.MemberNames.
type MemberTypeInfo []TypeDescriptor

// PrimitiveValue is an inline primitive. Exactly one payload field is
// meaningful, selected by Type:
//
//	Bool   Boolean
//	Int    Int16, Int32, Int64, SByte, TimeSpan
//	Uint   Byte, Char, DateTime, UInt16, UInt32, UInt64
//	Float  Single, Double
//	Str    String, Decimal (16 raw bytes, hex encoded)
//
// Null has no payload. Char holds the single raw byte the stream carries.
type PrimitiveValue struct {
	Type  PrimitiveType
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
}

// MemberValue is one member or array element slot: either an inline
// primitive (when the declared type is Primitive) or a nested record.
// A null-run record (ObjectNull, ObjectNullMultiple, ObjectNullMultiple256)
// stored here covers Slots() consecutive slots; the decoder preserves the
// run exactly as written so re-encoding reproduces the same compact form.
type MemberValue struct {
	Primitive *PrimitiveValue
	Record    Record
}

// Slots returns the number of logical member/element slots this value
// occupies. Everything is 1 except null-run records.
func (v MemberValue) Slots() int32 {
	if v.Record == nil {
		return 1
	}
	switch r := v.Record.(type) {
	case *ObjectNullMultiple:
		return r.NullCount
	case *ObjectNullMultiple256:
		return int32(r.NullCount)
	default:
		return 1
	}
}

// SerializationHeader is the mandatory first record of a message.
type SerializationHeader struct {
	RootID       int32
	HeaderID     int32
	MajorVersion int32
	MinorVersion int32
}

func (*SerializationHeader) Type() RecordType { return RecordSerializedStreamHeader }

// BinaryLibrary declares a library id used by later class records.
type BinaryLibrary struct {
	LibraryID   int32
	LibraryName string
}

func (*BinaryLibrary) Type() RecordType { return RecordBinaryLibrary }

// ClassWithMembersAndTypes declares a class with full member type
// descriptors and a library reference, followed inline by its member values.
type ClassWithMembersAndTypes struct {
	ClassInfo      ClassInfo
	MemberTypeInfo MemberTypeInfo
	LibraryID      int32
	MemberValues   []MemberValue
}

func (*ClassWithMembersAndTypes) Type() RecordType { return RecordClassWithMembersAndTypes }

// SystemClassWithMembersAndTypes is ClassWithMembersAndTypes for mscorlib
// types; it carries no library id.
type SystemClassWithMembersAndTypes struct {
	ClassInfo      ClassInfo
	MemberTypeInfo MemberTypeInfo
	MemberValues   []MemberValue
}

func (*SystemClassWithMembersAndTypes) Type() RecordType { return RecordSystemClassWithMembersAndTypes }

// SystemClassWithMembers declares a system class without member type
// descriptors; member values are all encoded as records.
type SystemClassWithMembers struct {
	ClassInfo    ClassInfo
	MemberValues []MemberValue
}

func (*SystemClassWithMembers) Type() RecordType { return RecordSystemClassWithMembers }

// ClassWithMembers declares a class without member type descriptors.
type ClassWithMembers struct {
	ClassInfo    ClassInfo
	LibraryID    int32
	MemberValues []MemberValue
}

func (*ClassWithMembers) Type() RecordType { return RecordClassWithMembers }

// ClassWithID is an instance of a previously declared class: its member
// layout is the one registered under MetadataID.
type ClassWithID struct {
	ObjectID     int32
	MetadataID   int32
	MemberValues []MemberValue
}

func (*ClassWithID) Type() RecordType { return RecordClassWithID }

// BinaryObjectString is an identified UTF-8 string value.
type BinaryObjectString struct {
	ObjectID int32
	Value    string
}

func (*BinaryObjectString) Type() RecordType { return RecordBinaryObjectString }

// BinaryArray is the general array record: any rank, any element type,
// optional per-dimension lower bounds.
type BinaryArray struct {
	ObjectID    int32
	ArrayType   BinaryArrayType
	Rank        int32
	Lengths     []int32
	LowerBounds []int32 // present only for the Offset array shapes
	ElementType TypeDescriptor
	Elements    []MemberValue
}

func (*BinaryArray) Type() RecordType { return RecordBinaryArray }

// ArraySingleObject is a single-dimension array of untyped object slots.
type ArraySingleObject struct {
	ObjectID int32
	Length   int32
	Elements []MemberValue
}

func (*ArraySingleObject) Type() RecordType { return RecordArraySingleObject }

// ArraySinglePrimitive is a single-dimension array of one primitive type,
// its values packed inline with no per-element tags.
type ArraySinglePrimitive struct {
	ObjectID    int32
	Length      int32
	ElementType PrimitiveType
	Values      []PrimitiveValue
}

func (*ArraySinglePrimitive) Type() RecordType { return RecordArraySinglePrimitive }

// ArraySingleString is a single-dimension array of string slots.
type ArraySingleString struct {
	ObjectID int32
	Length   int32
	Elements []MemberValue
}

func (*ArraySingleString) Type() RecordType { return RecordArraySingleString }

// MemberPrimitiveTyped is a self-describing inline primitive: a primitive
// type code followed by the value.
type MemberPrimitiveTyped struct {
	Value PrimitiveValue
}

func (*MemberPrimitiveTyped) Type() RecordType { return RecordMemberPrimitiveTyped }

// MemberReference is a forward or back reference to the record that
// declared IDRef as its object id.
type MemberReference struct {
	IDRef int32
}

func (*MemberReference) Type() RecordType { return RecordMemberReference }

// ObjectNull is a single null member/element slot.
type ObjectNull struct{}

func (*ObjectNull) Type() RecordType { return RecordObjectNull }

// ObjectNullMultiple is a run of NullCount consecutive null slots.
type ObjectNullMultiple struct {
	NullCount int32
}

func (*ObjectNullMultiple) Type() RecordType { return RecordObjectNullMultiple }

// ObjectNullMultiple256 is a run of up to 255 null slots with a one-byte count.
type ObjectNullMultiple256 struct {
	NullCount uint8
}

func (*ObjectNullMultiple256) Type() RecordType { return RecordObjectNullMultiple256 }

// MessageEnd terminates a message. It has no payload.
type MessageEnd struct{}

func (*MessageEnd) Type() RecordType { return RecordMessageEnd }

// objectID returns the object id a record introduces, if any. Only records
// that declare a new identity return ok.
func objectID(r Record) (int32, bool) {
	switch rec := r.(type) {
	case *ClassWithMembersAndTypes:
		return rec.ClassInfo.ObjectID, true
	case *SystemClassWithMembersAndTypes:
		return rec.ClassInfo.ObjectID, true
	case *SystemClassWithMembers:
		return rec.ClassInfo.ObjectID, true
	case *ClassWithMembers:
		return rec.ClassInfo.ObjectID, true
	case *ClassWithID:
		return rec.ObjectID, true
	case *BinaryObjectString:
		return rec.ObjectID, true
	case *BinaryArray:
		return rec.ObjectID, true
	case *ArraySingleObject:
		return rec.ObjectID, true
	case *ArraySinglePrimitive:
		return rec.ObjectID, true
	case *ArraySingleString:
		return rec.ObjectID, true
	default:
		return 0, false
	}
}

// isNullRun reports whether r is one of the three null-slot records.
func isNullRun(r Record) bool {
	switch r.(type) {
	case *ObjectNull, *ObjectNullMultiple, *ObjectNullMultiple256:
		return true
	default:
		return false
	}
}
