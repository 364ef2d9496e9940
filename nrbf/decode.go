package nrbf

import (
	"bufio"
	"encoding/hex"
	"errors"
	"io"

	"go.uber.org/zap"

	nrbferr "github.com/driedpampas/nrbf-parser/errors"
	"github.com/driedpampas/nrbf-parser/nrbf/internal/binary"
)

type decodeState int

const (
	stateExpectHeader decodeState = iota
	stateReadingRecords
	stateEnded
)

// Decoder parses one NRBF message from a byte stream, one record per
// DecodeNext call. It owns a class metadata registry and a reference table
// scoped to the stream; both are discarded with the Decoder. A Decoder
// consumes strictly forward and is not safe for concurrent use, but
// independent Decoders share no state.
type Decoder struct {
	r       *binary.Reader
	classes classRegistry
	refs    *referenceTable
	state   decodeState
	index   int
}

// NewDecoder creates a Decoder reading from r, positioned at the start of
// an NRBF message. If r does not implement io.ByteReader it is wrapped in
// a bufio.Reader.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{
		r:       binary.NewReader(br),
		classes: make(classRegistry),
		refs:    newReferenceTable(),
	}
}

// DecodeMessage parses one complete NRBF message from r.
func DecodeMessage(r io.Reader) (*Message, error) {
	d := NewDecoder(r)
	var records []Record
	for {
		rec, err := d.DecodeNext()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		records = append(records, rec)
	}
	return &Message{Records: records, refs: d.refs}, nil
}

// DecodeNext decodes one top-level record. It returns nil, nil once
// MessageEnd has been consumed. The first record must be the serialization
// header; a stream that ends before MessageEnd is a structural error.
func (d *Decoder) DecodeNext() (Record, error) {
	if d.state == stateEnded {
		return nil, nil
	}
	start := d.r.Position()
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if d.state == stateExpectHeader {
				return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindMissingHeader).
					Offset(start).
					Detail("empty stream").
					Build())
			}
			return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindMissingTerminator).
				Offset(start).
				Detail("stream ended before MessageEnd").
				Build())
		}
		return nil, d.wrap(err)
	}
	tag := RecordType(b)
	if d.state == stateExpectHeader && tag != RecordSerializedStreamHeader {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindMissingHeader).
			Offset(start).
			Detail("first record is %s, want SerializedStreamHeader", tag).
			Build())
	}
	if d.state == stateReadingRecords && tag == RecordSerializedStreamHeader {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(start).
			Detail("second SerializedStreamHeader").
			Build())
	}
	rec, err := d.readRecord(tag, start)
	if err != nil {
		return nil, err
	}
	switch tag {
	case RecordSerializedStreamHeader:
		d.state = stateReadingRecords
	case RecordMessageEnd:
		if cerr := d.refs.checkClosure(nrbferr.PhaseDecode); cerr != nil {
			return nil, d.locate(cerr)
		}
		d.state = stateEnded
	}
	Logger().Debug("record decoded",
		zap.Stringer("type", tag),
		zap.Int64("offset", start),
		zap.Int("index", d.index))
	d.index++
	return rec, nil
}

// readRecord parses the record body for a tag that has already been read.
// start is the offset of the tag byte.
func (d *Decoder) readRecord(tag RecordType, start int64) (Record, error) {
	switch tag {
	case RecordSerializedStreamHeader:
		return d.readSerializationHeader()
	case RecordBinaryLibrary:
		return d.readBinaryLibrary()
	case RecordClassWithMembersAndTypes:
		return d.readClassWithMembersAndTypes()
	case RecordSystemClassWithMembersAndTypes:
		return d.readSystemClassWithMembersAndTypes()
	case RecordSystemClassWithMembers:
		return d.readSystemClassWithMembers()
	case RecordClassWithMembers:
		return d.readClassWithMembers()
	case RecordClassWithID:
		return d.readClassWithID()
	case RecordBinaryObjectString:
		return d.readBinaryObjectString()
	case RecordBinaryArray:
		return d.readBinaryArray()
	case RecordArraySinglePrimitive:
		return d.readArraySinglePrimitive()
	case RecordArraySingleObject:
		return d.readArraySingleObject()
	case RecordArraySingleString:
		return d.readArraySingleString()
	case RecordMemberPrimitiveTyped:
		return d.readMemberPrimitiveTyped()
	case RecordMemberReference:
		id, err := d.r.ReadInt32()
		if err != nil {
			return nil, d.wrap(err)
		}
		d.refs.noteObjectRef(id)
		return &MemberReference{IDRef: id}, nil
	case RecordObjectNull:
		return &ObjectNull{}, nil
	case RecordObjectNullMultiple256:
		n, err := d.r.ReadByte()
		if err != nil {
			return nil, d.wrap(err)
		}
		return &ObjectNullMultiple256{NullCount: n}, nil
	case RecordObjectNullMultiple:
		n, err := d.r.ReadInt32()
		if err != nil {
			return nil, d.wrap(err)
		}
		return &ObjectNullMultiple{NullCount: n}, nil
	case RecordMessageEnd:
		return &MessageEnd{}, nil
	default:
		return nil, d.locate(nrbferr.UnknownRecordTag(nrbferr.PhaseDecode, start, byte(tag)))
	}
}

// readValueRecord reads a record appearing in a member or element slot.
// Header and terminator records are invalid there.
func (d *Decoder) readValueRecord() (Record, error) {
	start := d.r.Position()
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, d.wrap(err)
	}
	tag := RecordType(b)
	if tag == RecordSerializedStreamHeader || tag == RecordMessageEnd {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(start).
			Detail("%s record in value position", tag).
			Build())
	}
	return d.readRecord(tag, start)
}

func (d *Decoder) readSerializationHeader() (*SerializationHeader, error) {
	h := &SerializationHeader{}
	for _, field := range []*int32{&h.RootID, &h.HeaderID, &h.MajorVersion, &h.MinorVersion} {
		v, err := d.r.ReadInt32()
		if err != nil {
			return nil, d.wrap(err)
		}
		*field = v
	}
	return h, nil
}

func (d *Decoder) readBinaryLibrary() (*BinaryLibrary, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	name, err := d.r.ReadString()
	if err != nil {
		return nil, d.wrap(err)
	}
	lib := &BinaryLibrary{LibraryID: id, LibraryName: name}
	if rerr := d.refs.registerLibrary(nrbferr.PhaseDecode, d.r.Position(), id, name); rerr != nil {
		return nil, d.locate(rerr)
	}
	return lib, nil
}

func (d *Decoder) readClassInfo() (ClassInfo, error) {
	var info ClassInfo
	id, err := d.r.ReadInt32()
	if err != nil {
		return info, d.wrap(err)
	}
	name, err := d.r.ReadString()
	if err != nil {
		return info, d.wrap(err)
	}
	count, err := d.r.ReadInt32()
	if err != nil {
		return info, d.wrap(err)
	}
	if count < 0 {
		return info, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("negative member count %d", count).
			Build())
	}
	names := make([]string, count)
	for i := range names {
		n, err := d.r.ReadString()
		if err != nil {
			return info, d.wrap(err)
		}
		names[i] = n
	}
	info.ObjectID = id
	info.Name = name
	info.MemberNames = names
	return info, nil
}

func (d *Decoder) readClassWithMembersAndTypes() (*ClassWithMembersAndTypes, error) {
	info, err := d.readClassInfo()
	if err != nil {
		return nil, err
	}
	types, err := d.readMemberTypeInfo(len(info.MemberNames))
	if err != nil {
		return nil, err
	}
	libID, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	d.refs.noteLibraryRef(libID)
	rec := &ClassWithMembersAndTypes{ClassInfo: info, MemberTypeInfo: types, LibraryID: libID}
	if err := d.registerClass(rec, info, types, libID, true); err != nil {
		return nil, err
	}
	rec.MemberValues, err = d.readMemberValues(info, types)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readSystemClassWithMembersAndTypes() (*SystemClassWithMembersAndTypes, error) {
	info, err := d.readClassInfo()
	if err != nil {
		return nil, err
	}
	types, err := d.readMemberTypeInfo(len(info.MemberNames))
	if err != nil {
		return nil, err
	}
	rec := &SystemClassWithMembersAndTypes{ClassInfo: info, MemberTypeInfo: types}
	if err := d.registerClass(rec, info, types, 0, false); err != nil {
		return nil, err
	}
	rec.MemberValues, err = d.readMemberValues(info, types)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readSystemClassWithMembers() (*SystemClassWithMembers, error) {
	info, err := d.readClassInfo()
	if err != nil {
		return nil, err
	}
	rec := &SystemClassWithMembers{ClassInfo: info}
	if err := d.registerClass(rec, info, nil, 0, false); err != nil {
		return nil, err
	}
	rec.MemberValues, err = d.readMemberValues(info, nil)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readClassWithMembers() (*ClassWithMembers, error) {
	info, err := d.readClassInfo()
	if err != nil {
		return nil, err
	}
	libID, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	d.refs.noteLibraryRef(libID)
	rec := &ClassWithMembers{ClassInfo: info, LibraryID: libID}
	if err := d.registerClass(rec, info, nil, libID, true); err != nil {
		return nil, err
	}
	rec.MemberValues, err = d.readMemberValues(info, nil)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// registerClass registers a class record's object id and declares its
// metadata. Registration happens before member values are parsed: nested
// values may reference the class (including recursively), so the schema
// and the id must be visible first.
func (d *Decoder) registerClass(rec Record, info ClassInfo, types MemberTypeInfo, libID int32, hasLib bool) error {
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), info.ObjectID, rec); rerr != nil {
		return d.locate(rerr)
	}
	meta := &classMetadata{Info: info, Types: types, LibraryID: libID, HasLib: hasLib}
	if rerr := d.classes.declare(nrbferr.PhaseDecode, d.r.Position(), meta); rerr != nil {
		return d.locate(rerr)
	}
	return nil
}

func (d *Decoder) readClassWithID() (*ClassWithID, error) {
	objID, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	metaID, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	rec := &ClassWithID{ObjectID: objID, MetadataID: metaID}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), objID, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	meta, ok := d.classes.lookup(metaID)
	if !ok {
		return nil, d.locate(nrbferr.UnknownClassReference(nrbferr.PhaseDecode, d.r.Position(), metaID))
	}
	rec.MemberValues, err = d.readMemberValues(meta.Info, meta.Types)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readBinaryObjectString() (*BinaryObjectString, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	value, err := d.r.ReadString()
	if err != nil {
		return nil, d.wrap(err)
	}
	rec := &BinaryObjectString{ObjectID: id, Value: value}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), id, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	return rec, nil
}

func (d *Decoder) readBinaryArray() (*BinaryArray, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	shapeByte, err := d.r.ReadByte()
	if err != nil {
		return nil, d.wrap(err)
	}
	shape := BinaryArrayType(shapeByte)
	if !shape.valid() {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position() - 1).
			Detail("array shape 0x%02x", shapeByte).
			Build())
	}
	rank, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	if rank <= 0 {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("array rank %d", rank).
			Build())
	}
	lengths := make([]int32, rank)
	total := int64(1)
	for i := range lengths {
		n, err := d.r.ReadInt32()
		if err != nil {
			return nil, d.wrap(err)
		}
		if n < 0 {
			return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
				Offset(d.r.Position()).
				Detail("negative array length %d", n).
				Build())
		}
		lengths[i] = n
		total *= int64(n)
	}
	if total > int64(1)<<31-1 {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("array element count %d overflows", total).
			Build())
	}
	var bounds []int32
	if shape.hasLowerBounds() {
		bounds = make([]int32, rank)
		for i := range bounds {
			b, err := d.r.ReadInt32()
			if err != nil {
				return nil, d.wrap(err)
			}
			bounds[i] = b
		}
	}
	elemType, err := d.readTypeDescriptor()
	if err != nil {
		return nil, err
	}
	rec := &BinaryArray{
		ObjectID:    id,
		ArrayType:   shape,
		Rank:        rank,
		Lengths:     lengths,
		LowerBounds: bounds,
		ElementType: elemType,
	}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), id, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	rec.Elements, err = d.readSlotValues(int(total), func(int) TypeDescriptor { return elemType })
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readArraySinglePrimitive() (*ArraySinglePrimitive, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	length, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	if length < 0 {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("negative array length %d", length).
			Build())
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, d.wrap(err)
	}
	pt := PrimitiveType(b)
	if !pt.valid() {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindUnknownPrimitiveType).
			Offset(d.r.Position() - 1).
			Detail("primitive type 0x%02x", b).
			Build())
	}
	rec := &ArraySinglePrimitive{ObjectID: id, Length: length, ElementType: pt}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), id, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	rec.Values = make([]PrimitiveValue, length)
	for i := range rec.Values {
		pv, err := d.readPrimitiveValue(pt)
		if err != nil {
			return nil, err
		}
		rec.Values[i] = pv
	}
	return rec, nil
}

func (d *Decoder) readArraySingleObject() (*ArraySingleObject, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	length, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	if length < 0 {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("negative array length %d", length).
			Build())
	}
	rec := &ArraySingleObject{ObjectID: id, Length: length}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), id, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	rec.Elements, err = d.readSlotValues(int(length), func(int) TypeDescriptor { return TypeDescriptor{Tag: TypeObject} })
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readArraySingleString() (*ArraySingleString, error) {
	id, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	length, err := d.r.ReadInt32()
	if err != nil {
		return nil, d.wrap(err)
	}
	if length < 0 {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
			Offset(d.r.Position()).
			Detail("negative array length %d", length).
			Build())
	}
	rec := &ArraySingleString{ObjectID: id, Length: length}
	if rerr := d.refs.registerObject(nrbferr.PhaseDecode, d.r.Position(), id, rec); rerr != nil {
		return nil, d.locate(rerr)
	}
	rec.Elements, err = d.readSlotValues(int(length), func(int) TypeDescriptor { return TypeDescriptor{Tag: TypeString} })
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Decoder) readMemberPrimitiveTyped() (*MemberPrimitiveTyped, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, d.wrap(err)
	}
	pt := PrimitiveType(b)
	if !pt.valid() {
		return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindUnknownPrimitiveType).
			Offset(d.r.Position() - 1).
			Detail("primitive type 0x%02x", b).
			Build())
	}
	pv, err := d.readPrimitiveValue(pt)
	if err != nil {
		return nil, err
	}
	return &MemberPrimitiveTyped{Value: pv}, nil
}

// readMemberValues reads the member value slots of a class record. A null
// run may span several consecutive members, so slots are tracked globally
// rather than per member.
func (d *Decoder) readMemberValues(info ClassInfo, types MemberTypeInfo) ([]MemberValue, error) {
	return d.readSlotValues(len(info.MemberNames), func(i int) TypeDescriptor {
		if types == nil {
			return TypeDescriptor{Tag: TypeObject}
		}
		return types[i]
	})
}

// readSlotValues fills total slots. Primitive-typed slots are read inline
// with no record tag; all other slots hold nested records. Null-run
// records are kept as single values covering multiple slots, exactly as
// written, so re-encoding reproduces the same compact form.
func (d *Decoder) readSlotValues(total int, tdFor func(i int) TypeDescriptor) ([]MemberValue, error) {
	var out []MemberValue
	for filled := 0; filled < total; {
		td := tdFor(filled)
		if td.Tag == TypePrimitive {
			pv, err := d.readPrimitiveValue(td.Primitive)
			if err != nil {
				return nil, err
			}
			out = append(out, MemberValue{Primitive: &pv})
			filled++
			continue
		}
		start := d.r.Position()
		rec, err := d.readValueRecord()
		if err != nil {
			return nil, err
		}
		mv := MemberValue{Record: rec}
		if isNullRun(rec) {
			n := int(mv.Slots())
			if n <= 0 {
				return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
					Offset(start).
					Detail("null run count %d", n).
					Build())
			}
			if filled+n > total {
				return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
					Offset(start).
					Detail("null run of %d exceeds %d remaining slots", n, total-filled).
					Build())
			}
			out = append(out, mv)
			filled += n
			continue
		}
		if td.Tag == TypeString && !stringValueCompatible(rec) {
			return nil, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidValue).
				Offset(start).
				Detail("%s value in String-typed slot", rec.Type()).
				Build())
		}
		out = append(out, mv)
		filled++
	}
	return out, nil
}

// stringValueCompatible reports whether a record may fill a String-typed
// slot. Null runs are checked separately.
func stringValueCompatible(r Record) bool {
	switch r.(type) {
	case *BinaryObjectString, *MemberReference:
		return true
	default:
		return false
	}
}

// readPrimitiveValue reads one inline primitive of the given type.
// Char is the single raw byte the stream carries; Decimal is 16 raw bytes
// kept hex-encoded so the round trip is exact.
func (d *Decoder) readPrimitiveValue(pt PrimitiveType) (PrimitiveValue, error) {
	pv := PrimitiveValue{Type: pt}
	switch pt {
	case PrimBoolean:
		v, err := d.r.ReadBool()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Bool = v
	case PrimByte, PrimChar:
		b, err := d.r.ReadByte()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Uint = uint64(b)
	case PrimSByte:
		b, err := d.r.ReadByte()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Int = int64(int8(b))
	case PrimInt16:
		v, err := d.r.ReadInt16()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Int = int64(v)
	case PrimInt32:
		v, err := d.r.ReadInt32()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Int = int64(v)
	case PrimInt64, PrimTimeSpan:
		v, err := d.r.ReadInt64()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Int = v
	case PrimUInt16:
		v, err := d.r.ReadUint16()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Uint = uint64(v)
	case PrimUInt32:
		v, err := d.r.ReadUint32()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Uint = uint64(v)
	case PrimUInt64, PrimDateTime:
		v, err := d.r.ReadUint64()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Uint = v
	case PrimSingle:
		v, err := d.r.ReadFloat32()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Float = float64(v)
	case PrimDouble:
		v, err := d.r.ReadFloat64()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Float = v
	case PrimDecimal:
		buf, err := d.r.ReadBytes(16)
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Str = hex.EncodeToString(buf)
	case PrimString:
		s, err := d.r.ReadString()
		if err != nil {
			return pv, d.wrap(err)
		}
		pv.Str = s
	case PrimNull:
		// no payload
	default:
		return pv, d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindUnknownPrimitiveType).
			Offset(d.r.Position()).
			Detail("primitive type 0x%02x", byte(pt)).
			Build())
	}
	return pv, nil
}

// locate fills in the record index on a structured error.
func (d *Decoder) locate(e *nrbferr.Error) error {
	if e.RecordIndex < 0 {
		e.RecordIndex = d.index
	}
	return e
}

// wrap maps low-level read failures to structured errors tagged with the
// current stream offset. Structured errors pass through unchanged.
func (d *Decoder) wrap(err error) error {
	var se *nrbferr.Error
	if errors.As(err, &se) {
		return err
	}
	pos := d.r.Position()
	switch {
	case errors.Is(err, binary.ErrVarIntTooLong):
		return d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindMalformedLength).
			Offset(pos).
			Cause(err).
			Build())
	case errors.Is(err, binary.ErrInvalidUTF8):
		return d.locate(nrbferr.New(nrbferr.PhaseDecode, nrbferr.KindInvalidStringEncoding).
			Offset(pos).
			Cause(err).
			Build())
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return d.locate(nrbferr.Truncated(nrbferr.PhaseDecode, pos, err))
	default:
		return d.locate(nrbferr.IO(nrbferr.PhaseDecode, pos, err))
	}
}
