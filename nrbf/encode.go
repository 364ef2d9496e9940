package nrbf

import (
	"encoding/hex"
	"io"

	"go.uber.org/zap"

	nrbferr "github.com/driedpampas/nrbf-parser/errors"
	"github.com/driedpampas/nrbf-parser/nrbf/internal/binary"
)

// Encoder writes an NRBF message record by record. It runs the same
// registration and closure checks as the Decoder, so a record sequence that
// encodes cleanly would also decode cleanly. Not safe for concurrent use.
type Encoder struct {
	w       *binary.Writer
	classes classRegistry
	refs    *referenceTable
	state   decodeState
	index   int
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:       binary.NewWriter(w),
		classes: make(classRegistry),
		refs:    newReferenceTable(),
	}
}

// EncodeMessage writes all records of m to w in order.
func EncodeMessage(w io.Writer, m *Message) error {
	e := NewEncoder(w)
	for _, rec := range m.Records {
		if err := e.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes one top-level record. The first record must be the
// serialization header; encoding past MessageEnd is an error.
func (e *Encoder) Encode(r Record) error {
	if e.state == stateEnded {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
			Offset(e.w.Count()).
			Detail("%s record after MessageEnd", r.Type()).
			Build())
	}
	start := e.w.Count()
	if e.state == stateExpectHeader && r.Type() != RecordSerializedStreamHeader {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindMissingHeader).
			Offset(start).
			Detail("first record is %s, want SerializedStreamHeader", r.Type()).
			Build())
	}
	if err := e.writeRecord(r); err != nil {
		return err
	}
	if err := e.w.Err(); err != nil {
		return e.locate(nrbferr.IO(nrbferr.PhaseEncode, e.w.Count(), err))
	}
	switch r.Type() {
	case RecordSerializedStreamHeader:
		e.state = stateReadingRecords
	case RecordMessageEnd:
		if cerr := e.refs.checkClosure(nrbferr.PhaseEncode); cerr != nil {
			return e.locate(cerr)
		}
		e.state = stateEnded
	}
	Logger().Debug("record encoded",
		zap.Stringer("type", r.Type()),
		zap.Int64("offset", start),
		zap.Int("index", e.index))
	e.index++
	return nil
}

// writeRecord writes the tag byte and body of one record. Registration
// mirrors the decode side so duplicate ids and unknown class references are
// caught while producing a stream, not only while consuming one.
func (e *Encoder) writeRecord(r Record) error {
	e.w.Byte(byte(r.Type()))
	switch rec := r.(type) {
	case *SerializationHeader:
		e.w.WriteInt32(rec.RootID)
		e.w.WriteInt32(rec.HeaderID)
		e.w.WriteInt32(rec.MajorVersion)
		e.w.WriteInt32(rec.MinorVersion)
		return nil
	case *BinaryLibrary:
		e.w.WriteInt32(rec.LibraryID)
		e.w.WriteString(rec.LibraryName)
		if rerr := e.refs.registerLibrary(nrbferr.PhaseEncode, e.w.Count(), rec.LibraryID, rec.LibraryName); rerr != nil {
			return e.locate(rerr)
		}
		return nil
	case *ClassWithMembersAndTypes:
		if len(rec.MemberTypeInfo) != len(rec.ClassInfo.MemberNames) {
			return e.slotMismatch(len(rec.MemberTypeInfo), len(rec.ClassInfo.MemberNames))
		}
		e.writeClassInfo(rec.ClassInfo)
		e.writeMemberTypeInfo(rec.MemberTypeInfo)
		e.w.WriteInt32(rec.LibraryID)
		e.refs.noteLibraryRef(rec.LibraryID)
		if err := e.registerClass(rec, rec.ClassInfo, rec.MemberTypeInfo, rec.LibraryID, true); err != nil {
			return err
		}
		return e.writeMemberValues(rec.ClassInfo, rec.MemberTypeInfo, rec.MemberValues)
	case *SystemClassWithMembersAndTypes:
		if len(rec.MemberTypeInfo) != len(rec.ClassInfo.MemberNames) {
			return e.slotMismatch(len(rec.MemberTypeInfo), len(rec.ClassInfo.MemberNames))
		}
		e.writeClassInfo(rec.ClassInfo)
		e.writeMemberTypeInfo(rec.MemberTypeInfo)
		if err := e.registerClass(rec, rec.ClassInfo, rec.MemberTypeInfo, 0, false); err != nil {
			return err
		}
		return e.writeMemberValues(rec.ClassInfo, rec.MemberTypeInfo, rec.MemberValues)
	case *SystemClassWithMembers:
		e.writeClassInfo(rec.ClassInfo)
		if err := e.registerClass(rec, rec.ClassInfo, nil, 0, false); err != nil {
			return err
		}
		return e.writeMemberValues(rec.ClassInfo, nil, rec.MemberValues)
	case *ClassWithMembers:
		e.writeClassInfo(rec.ClassInfo)
		e.w.WriteInt32(rec.LibraryID)
		e.refs.noteLibraryRef(rec.LibraryID)
		if err := e.registerClass(rec, rec.ClassInfo, nil, rec.LibraryID, true); err != nil {
			return err
		}
		return e.writeMemberValues(rec.ClassInfo, nil, rec.MemberValues)
	case *ClassWithID:
		e.w.WriteInt32(rec.ObjectID)
		e.w.WriteInt32(rec.MetadataID)
		if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
			return e.locate(rerr)
		}
		meta, ok := e.classes.lookup(rec.MetadataID)
		if !ok {
			return e.locate(nrbferr.UnknownClassReference(nrbferr.PhaseEncode, e.w.Count(), rec.MetadataID))
		}
		return e.writeMemberValues(meta.Info, meta.Types, rec.MemberValues)
	case *BinaryObjectString:
		e.w.WriteInt32(rec.ObjectID)
		e.w.WriteString(rec.Value)
		if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
			return e.locate(rerr)
		}
		return nil
	case *BinaryArray:
		return e.writeBinaryArray(rec)
	case *ArraySinglePrimitive:
		return e.writeArraySinglePrimitive(rec)
	case *ArraySingleObject:
		e.w.WriteInt32(rec.ObjectID)
		e.w.WriteInt32(rec.Length)
		if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
			return e.locate(rerr)
		}
		return e.writeSlotValues(int(rec.Length), func(int) TypeDescriptor { return TypeDescriptor{Tag: TypeObject} }, rec.Elements)
	case *ArraySingleString:
		e.w.WriteInt32(rec.ObjectID)
		e.w.WriteInt32(rec.Length)
		if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
			return e.locate(rerr)
		}
		return e.writeSlotValues(int(rec.Length), func(int) TypeDescriptor { return TypeDescriptor{Tag: TypeString} }, rec.Elements)
	case *MemberPrimitiveTyped:
		e.w.Byte(byte(rec.Value.Type))
		return e.writePrimitiveValue(rec.Value)
	case *MemberReference:
		e.w.WriteInt32(rec.IDRef)
		e.refs.noteObjectRef(rec.IDRef)
		return nil
	case *ObjectNull:
		return nil
	case *ObjectNullMultiple256:
		e.w.Byte(rec.NullCount)
		return nil
	case *ObjectNullMultiple:
		e.w.WriteInt32(rec.NullCount)
		return nil
	case *MessageEnd:
		return nil
	default:
		return e.locate(nrbferr.UnknownRecordTag(nrbferr.PhaseEncode, e.w.Count(), byte(r.Type())))
	}
}

// writeValueRecord writes a record appearing in a member or element slot.
func (e *Encoder) writeValueRecord(r Record) error {
	switch r.Type() {
	case RecordSerializedStreamHeader, RecordMessageEnd:
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
			Offset(e.w.Count()).
			Detail("%s record in value position", r.Type()).
			Build())
	}
	return e.writeRecord(r)
}

func (e *Encoder) writeClassInfo(info ClassInfo) {
	e.w.WriteInt32(info.ObjectID)
	e.w.WriteString(info.Name)
	e.w.WriteInt32(int32(len(info.MemberNames)))
	for _, name := range info.MemberNames {
		e.w.WriteString(name)
	}
}

func (e *Encoder) registerClass(rec Record, info ClassInfo, types MemberTypeInfo, libID int32, hasLib bool) error {
	if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), info.ObjectID, rec); rerr != nil {
		return e.locate(rerr)
	}
	meta := &classMetadata{Info: info, Types: types, LibraryID: libID, HasLib: hasLib}
	if rerr := e.classes.declare(nrbferr.PhaseEncode, e.w.Count(), meta); rerr != nil {
		return e.locate(rerr)
	}
	return nil
}

func (e *Encoder) writeBinaryArray(rec *BinaryArray) error {
	if !rec.ArrayType.valid() {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
			Offset(e.w.Count()).
			Detail("array shape 0x%02x", byte(rec.ArrayType)).
			Build())
	}
	if rec.Rank <= 0 || int(rec.Rank) != len(rec.Lengths) {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
			Offset(e.w.Count()).
			Detail("rank %d with %d lengths", rec.Rank, len(rec.Lengths)).
			Build())
	}
	if rec.ArrayType.hasLowerBounds() != (rec.LowerBounds != nil) || (rec.LowerBounds != nil && len(rec.LowerBounds) != int(rec.Rank)) {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
			Offset(e.w.Count()).
			Detail("lower bounds do not match array shape %s", rec.ArrayType).
			Build())
	}
	total := int64(1)
	for _, n := range rec.Lengths {
		if n < 0 {
			return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
				Offset(e.w.Count()).
				Detail("negative array length %d", n).
				Build())
		}
		total *= int64(n)
	}
	e.w.WriteInt32(rec.ObjectID)
	e.w.Byte(byte(rec.ArrayType))
	e.w.WriteInt32(rec.Rank)
	for _, n := range rec.Lengths {
		e.w.WriteInt32(n)
	}
	for _, b := range rec.LowerBounds {
		e.w.WriteInt32(b)
	}
	e.writeTypeDescriptor(rec.ElementType)
	if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
		return e.locate(rerr)
	}
	return e.writeSlotValues(int(total), func(int) TypeDescriptor { return rec.ElementType }, rec.Elements)
}

func (e *Encoder) writeArraySinglePrimitive(rec *ArraySinglePrimitive) error {
	if !rec.ElementType.valid() {
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindUnknownPrimitiveType).
			Offset(e.w.Count()).
			Detail("primitive array element type 0x%02x", byte(rec.ElementType)).
			Build())
	}
	if int(rec.Length) != len(rec.Values) {
		return e.slotMismatch(len(rec.Values), int(rec.Length))
	}
	e.w.WriteInt32(rec.ObjectID)
	e.w.WriteInt32(rec.Length)
	e.w.Byte(byte(rec.ElementType))
	if rerr := e.refs.registerObject(nrbferr.PhaseEncode, e.w.Count(), rec.ObjectID, rec); rerr != nil {
		return e.locate(rerr)
	}
	for _, pv := range rec.Values {
		if pv.Type != rec.ElementType {
			return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
				Offset(e.w.Count()).
				Detail("%s value in %s array", pv.Type, rec.ElementType).
				Build())
		}
		if err := e.writePrimitiveValue(pv); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeMemberValues(info ClassInfo, types MemberTypeInfo, values []MemberValue) error {
	return e.writeSlotValues(len(info.MemberNames), func(i int) TypeDescriptor {
		if types == nil {
			return TypeDescriptor{Tag: TypeObject}
		}
		return types[i]
	}, values)
}

// writeSlotValues writes values into total slots, mirroring the decode-side
// slot accounting. The values must cover every slot exactly; null runs
// advance by their run length.
func (e *Encoder) writeSlotValues(total int, tdFor func(i int) TypeDescriptor, values []MemberValue) error {
	filled := 0
	for _, v := range values {
		if filled >= total {
			break
		}
		td := tdFor(filled)
		if td.Tag == TypePrimitive {
			if v.Primitive == nil {
				return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
					Offset(e.w.Count()).
					Detail("record value in %s-typed slot", td.Primitive).
					Build())
			}
			if v.Primitive.Type != td.Primitive {
				return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
					Offset(e.w.Count()).
					Detail("%s value in %s-typed slot", v.Primitive.Type, td.Primitive).
					Build())
			}
			if err := e.writePrimitiveValue(*v.Primitive); err != nil {
				return err
			}
			filled++
			continue
		}
		if v.Record == nil {
			return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
				Offset(e.w.Count()).
				Detail("inline primitive in record-typed slot").
				Build())
		}
		if isNullRun(v.Record) {
			n := int(v.Slots())
			if n <= 0 || filled+n > total {
				return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
					Offset(e.w.Count()).
					Detail("null run of %d with %d remaining slots", n, total-filled).
					Build())
			}
			if err := e.writeValueRecord(v.Record); err != nil {
				return err
			}
			filled += n
			continue
		}
		if td.Tag == TypeString && !stringValueCompatible(v.Record) {
			return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
				Offset(e.w.Count()).
				Detail("%s value in String-typed slot", v.Record.Type()).
				Build())
		}
		if err := e.writeValueRecord(v.Record); err != nil {
			return err
		}
		filled++
	}
	if filled != total {
		return e.slotMismatch(filled, total)
	}
	return nil
}

func (e *Encoder) slotMismatch(got, want int) error {
	return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
		Offset(e.w.Count()).
		Detail("%d value slots for %d declared", got, want).
		Build())
}

// writePrimitiveValue writes one inline primitive. Decimal values must hold
// exactly 32 hex digits (16 raw bytes).
func (e *Encoder) writePrimitiveValue(pv PrimitiveValue) error {
	switch pv.Type {
	case PrimBoolean:
		e.w.WriteBool(pv.Bool)
	case PrimByte, PrimChar:
		e.w.Byte(byte(pv.Uint))
	case PrimSByte:
		e.w.Byte(byte(int8(pv.Int)))
	case PrimInt16:
		e.w.WriteInt16(int16(pv.Int))
	case PrimInt32:
		e.w.WriteInt32(int32(pv.Int))
	case PrimInt64, PrimTimeSpan:
		e.w.WriteInt64(pv.Int)
	case PrimUInt16:
		e.w.WriteUint16(uint16(pv.Uint))
	case PrimUInt32:
		e.w.WriteUint32(uint32(pv.Uint))
	case PrimUInt64, PrimDateTime:
		e.w.WriteUint64(pv.Uint)
	case PrimSingle:
		e.w.WriteFloat32(float32(pv.Float))
	case PrimDouble:
		e.w.WriteFloat64(pv.Float)
	case PrimDecimal:
		raw, err := hex.DecodeString(pv.Str)
		if err != nil || len(raw) != 16 {
			return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
				Offset(e.w.Count()).
				Detail("decimal payload %q is not 16 hex-encoded bytes", pv.Str).
				Build())
		}
		e.w.WriteBytes(raw)
	case PrimString:
		e.w.WriteString(pv.Str)
	case PrimNull:
		// no payload
	default:
		return e.locate(nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindUnknownPrimitiveType).
			Offset(e.w.Count()).
			Detail("primitive type 0x%02x", byte(pv.Type)).
			Build())
	}
	return nil
}

// locate fills in the record index on a structured error.
func (e *Encoder) locate(err *nrbferr.Error) error {
	if err.RecordIndex < 0 {
		err.RecordIndex = e.index
	}
	return err
}
