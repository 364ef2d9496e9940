package interleaved

import (
	nrbferr "github.com/driedpampas/nrbf-parser/errors"
	"github.com/driedpampas/nrbf-parser/nrbf"
)

// classShape is the member layout a class node declares, kept so later
// ClassWithId nodes can rebuild typed member values.
type classShape struct {
	names []string
	types nrbf.MemberTypeInfo
}

type builder struct {
	classes map[int64]classShape
}

// ToRecords converts an interleaved tree back to a record sequence. It is
// the inverse of FromRecords: a tree produced by FromRecords rebuilds the
// exact records it came from, so a bytes -> records -> tree -> records ->
// bytes pipeline is lossless.
func ToRecords(tree []any) ([]nrbf.Record, error) {
	b := &builder{classes: make(map[int64]classShape)}
	records := make([]nrbf.Record, 0, len(tree))
	for i, node := range tree {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, errf("node %d is %T, want an object", i, node)
		}
		rec, err := b.record(obj)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func errf(format string, args ...any) error {
	return nrbferr.New(nrbferr.PhaseEncode, nrbferr.KindInvalidValue).
		Detail(format, args...).
		Build()
}

func (b *builder) record(obj map[string]any) (nrbf.Record, error) {
	kind, ok := asString(obj["$record"])
	if !ok {
		return nil, errf("node has no $record key")
	}
	switch kind {
	case "SerializationHeader":
		rec := &nrbf.SerializationHeader{}
		for key, field := range map[string]*int32{
			"root_id":       &rec.RootID,
			"header_id":     &rec.HeaderID,
			"major_version": &rec.MajorVersion,
			"minor_version": &rec.MinorVersion,
		} {
			v, err := fieldInt32(obj, key)
			if err != nil {
				return nil, err
			}
			*field = v
		}
		return rec, nil
	case "BinaryLibrary":
		id, err := fieldInt32(obj, "library_id")
		if err != nil {
			return nil, err
		}
		name, ok := asString(obj["library_name"])
		if !ok {
			return nil, errf("library_name missing on BinaryLibrary")
		}
		return &nrbf.BinaryLibrary{LibraryID: id, LibraryName: name}, nil
	case "ClassWithMembersAndTypes":
		info, err := b.classInfo(obj)
		if err != nil {
			return nil, err
		}
		types, err := b.memberTypeInfo(obj, len(info.MemberNames))
		if err != nil {
			return nil, err
		}
		libID, err := fieldInt32(obj, "library_id")
		if err != nil {
			return nil, err
		}
		b.declare(info, types)
		values, err := b.classMembers(obj, info.MemberNames, types)
		if err != nil {
			return nil, err
		}
		return &nrbf.ClassWithMembersAndTypes{
			ClassInfo: info, MemberTypeInfo: types, LibraryID: libID, MemberValues: values,
		}, nil
	case "SystemClassWithMembersAndTypes":
		info, err := b.classInfo(obj)
		if err != nil {
			return nil, err
		}
		types, err := b.memberTypeInfo(obj, len(info.MemberNames))
		if err != nil {
			return nil, err
		}
		b.declare(info, types)
		values, err := b.classMembers(obj, info.MemberNames, types)
		if err != nil {
			return nil, err
		}
		return &nrbf.SystemClassWithMembersAndTypes{
			ClassInfo: info, MemberTypeInfo: types, MemberValues: values,
		}, nil
	case "SystemClassWithMembers":
		info, err := b.classInfo(obj)
		if err != nil {
			return nil, err
		}
		b.declare(info, nil)
		values, err := b.classMembers(obj, info.MemberNames, nil)
		if err != nil {
			return nil, err
		}
		return &nrbf.SystemClassWithMembers{ClassInfo: info, MemberValues: values}, nil
	case "ClassWithMembers":
		info, err := b.classInfo(obj)
		if err != nil {
			return nil, err
		}
		libID, err := fieldInt32(obj, "library_id")
		if err != nil {
			return nil, err
		}
		b.declare(info, nil)
		values, err := b.classMembers(obj, info.MemberNames, nil)
		if err != nil {
			return nil, err
		}
		return &nrbf.ClassWithMembers{ClassInfo: info, LibraryID: libID, MemberValues: values}, nil
	case "ClassWithId":
		objID, err := fieldInt32(obj, "object_id")
		if err != nil {
			return nil, err
		}
		metaID, err := fieldInt32(obj, "metadata_id")
		if err != nil {
			return nil, err
		}
		shape, ok := b.classes[int64(metaID)]
		if !ok {
			return nil, errf("ClassWithId %d uses undeclared metadata id %d", objID, metaID)
		}
		vals, err := fieldValues(obj)
		if err != nil {
			return nil, err
		}
		values, err := b.slotList(vals, len(shape.names), func(i int) nrbf.TypeDescriptor {
			return descriptorAt(shape.types, i)
		})
		if err != nil {
			return nil, err
		}
		return &nrbf.ClassWithID{ObjectID: objID, MetadataID: metaID, MemberValues: values}, nil
	case "BinaryObjectString":
		id, err := fieldInt32(obj, "object_id")
		if err != nil {
			return nil, err
		}
		value, ok := asString(obj["value"])
		if !ok {
			return nil, errf("value missing on BinaryObjectString %d", id)
		}
		return &nrbf.BinaryObjectString{ObjectID: id, Value: value}, nil
	case "BinaryArray":
		return b.binaryArray(obj)
	case "ArraySingleObject":
		id, length, vals, err := b.arrayCommon(obj)
		if err != nil {
			return nil, err
		}
		values, err := b.slotList(vals, int(length), func(int) nrbf.TypeDescriptor {
			return nrbf.TypeDescriptor{Tag: nrbf.TypeObject}
		})
		if err != nil {
			return nil, err
		}
		return &nrbf.ArraySingleObject{ObjectID: id, Length: length, Elements: values}, nil
	case "ArraySinglePrimitive":
		id, length, vals, err := b.arrayCommon(obj)
		if err != nil {
			return nil, err
		}
		pt, err := fieldInt32(obj, "primitive_type")
		if err != nil {
			return nil, err
		}
		if int64(length) != int64(len(vals)) {
			return nil, errf("primitive array %d has %d values for length %d", id, len(vals), length)
		}
		values := make([]nrbf.PrimitiveValue, len(vals))
		for i, v := range vals {
			pv, err := primitiveFromTree(v, nrbf.PrimitiveType(pt))
			if err != nil {
				return nil, err
			}
			values[i] = pv
		}
		return &nrbf.ArraySinglePrimitive{
			ObjectID: id, Length: length, ElementType: nrbf.PrimitiveType(pt), Values: values,
		}, nil
	case "ArraySingleString":
		id, length, vals, err := b.arrayCommon(obj)
		if err != nil {
			return nil, err
		}
		values, err := b.slotList(vals, int(length), func(int) nrbf.TypeDescriptor {
			return nrbf.TypeDescriptor{Tag: nrbf.TypeString}
		})
		if err != nil {
			return nil, err
		}
		return &nrbf.ArraySingleString{ObjectID: id, Length: length, Elements: values}, nil
	case "MemberPrimitiveTyped":
		pt, err := fieldInt32(obj, "primitive_type")
		if err != nil {
			return nil, err
		}
		pv, err := primitiveFromTree(obj["value"], nrbf.PrimitiveType(pt))
		if err != nil {
			return nil, err
		}
		return &nrbf.MemberPrimitiveTyped{Value: pv}, nil
	case "MemberReference":
		id, err := fieldInt32(obj, "id_ref")
		if err != nil {
			return nil, err
		}
		return &nrbf.MemberReference{IDRef: id}, nil
	case "ObjectNull":
		return &nrbf.ObjectNull{}, nil
	case "ObjectNullMultiple":
		n, err := fieldInt32(obj, "null_count")
		if err != nil {
			return nil, err
		}
		return &nrbf.ObjectNullMultiple{NullCount: n}, nil
	case "ObjectNullMultiple256":
		n, err := fieldInt32(obj, "null_count")
		if err != nil {
			return nil, err
		}
		return &nrbf.ObjectNullMultiple256{NullCount: uint8(n)}, nil
	case "MessageEnd":
		return &nrbf.MessageEnd{}, nil
	default:
		return nil, errf("unknown $record kind %q", kind)
	}
}

func (b *builder) declare(info nrbf.ClassInfo, types nrbf.MemberTypeInfo) {
	b.classes[int64(info.ObjectID)] = classShape{names: info.MemberNames, types: types}
}

// classInfo reads the identity keys of a class node. The member order comes
// from the explicit $member_names list, never from map iteration.
func (b *builder) classInfo(obj map[string]any) (nrbf.ClassInfo, error) {
	var info nrbf.ClassInfo
	name, ok := asString(obj["$type"])
	if !ok {
		return info, errf("class node has no $type")
	}
	id, err := fieldInt32(obj, "$id")
	if err != nil {
		return info, err
	}
	rawNames, ok := obj["$member_names"].([]any)
	if !ok {
		return info, errf("class %q has no $member_names list", name)
	}
	names := make([]string, len(rawNames))
	for i, raw := range rawNames {
		n, ok := asString(raw)
		if !ok {
			return info, errf("class %q member name %d is %T", name, i, raw)
		}
		names[i] = n
	}
	info.ObjectID = id
	info.Name = name
	info.MemberNames = names
	return info, nil
}

func (b *builder) memberTypeInfo(obj map[string]any, count int) (nrbf.MemberTypeInfo, error) {
	raw, ok := obj["$member_type_info"].([]any)
	if !ok {
		return nil, errf("class node has no $member_type_info list")
	}
	if len(raw) != count {
		return nil, errf("%d type descriptors for %d members", len(raw), count)
	}
	info := make(nrbf.MemberTypeInfo, len(raw))
	for i, v := range raw {
		td, err := descriptorFromTree(v)
		if err != nil {
			return nil, err
		}
		info[i] = td
	}
	return info, nil
}

// classMembers rebuilds member values keyed by name. A null run stored
// under one name covers the following names too, which are then absent
// from the node.
func (b *builder) classMembers(obj map[string]any, names []string, types nrbf.MemberTypeInfo) ([]nrbf.MemberValue, error) {
	var out []nrbf.MemberValue
	for i := 0; i < len(names); {
		raw, ok := obj[names[i]]
		if !ok {
			return nil, errf("missing member %q", names[i])
		}
		mv, err := b.slotValue(raw, descriptorAt(types, i))
		if err != nil {
			return nil, err
		}
		n := int(mv.Slots())
		if n <= 0 || i+n > len(names) {
			return nil, errf("null run of %d at member %q exceeds remaining members", n, names[i])
		}
		out = append(out, mv)
		i += n
	}
	return out, nil
}

// slotList rebuilds a $values array against a fixed slot count.
func (b *builder) slotList(vals []any, total int, tdFor func(i int) nrbf.TypeDescriptor) ([]nrbf.MemberValue, error) {
	out := make([]nrbf.MemberValue, 0, len(vals))
	slot := 0
	for _, v := range vals {
		if slot >= total {
			return nil, errf("more values than %d slots", total)
		}
		mv, err := b.slotValue(v, tdFor(slot))
		if err != nil {
			return nil, err
		}
		n := int(mv.Slots())
		if n <= 0 || slot+n > total {
			return nil, errf("null run of %d exceeds %d remaining slots", n, total-slot)
		}
		out = append(out, mv)
		slot += n
	}
	if slot != total {
		return nil, errf("%d value slots for %d declared", slot, total)
	}
	return out, nil
}

// slotValue converts one tree value according to its declared descriptor.
func (b *builder) slotValue(v any, td nrbf.TypeDescriptor) (nrbf.MemberValue, error) {
	if td.Tag == nrbf.TypePrimitive {
		pv, err := primitiveFromTree(v, td.Primitive)
		if err != nil {
			return nrbf.MemberValue{}, err
		}
		return nrbf.MemberValue{Primitive: &pv}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nrbf.MemberValue{}, errf("record slot holds %T, want an object node", v)
	}
	rec, err := b.record(obj)
	if err != nil {
		return nrbf.MemberValue{}, err
	}
	return nrbf.MemberValue{Record: rec}, nil
}

func (b *builder) arrayCommon(obj map[string]any) (id, length int32, vals []any, err error) {
	if id, err = fieldInt32(obj, "object_id"); err != nil {
		return
	}
	if length, err = fieldInt32(obj, "length"); err != nil {
		return
	}
	if length < 0 {
		err = errf("negative array length %d", length)
		return
	}
	vals, err = fieldValues(obj)
	return
}

func (b *builder) binaryArray(obj map[string]any) (nrbf.Record, error) {
	id, err := fieldInt32(obj, "object_id")
	if err != nil {
		return nil, err
	}
	shape, err := fieldInt32(obj, "array_type")
	if err != nil {
		return nil, err
	}
	rank, err := fieldInt32(obj, "rank")
	if err != nil {
		return nil, err
	}
	lengths, err := fieldInt32s(obj, "lengths")
	if err != nil {
		return nil, err
	}
	var bounds []int32
	if _, ok := obj["lower_bounds"]; ok {
		bounds, err = fieldInt32s(obj, "lower_bounds")
		if err != nil {
			return nil, err
		}
	}
	elemType, err := descriptorFromTree(obj["element_type"])
	if err != nil {
		return nil, err
	}
	total := 1
	for _, n := range lengths {
		if n < 0 {
			return nil, errf("negative array length %d", n)
		}
		total *= int(n)
	}
	vals, err := fieldValues(obj)
	if err != nil {
		return nil, err
	}
	values, err := b.slotList(vals, total, func(int) nrbf.TypeDescriptor { return elemType })
	if err != nil {
		return nil, err
	}
	return &nrbf.BinaryArray{
		ObjectID:    id,
		ArrayType:   nrbf.BinaryArrayType(shape),
		Rank:        rank,
		Lengths:     lengths,
		LowerBounds: bounds,
		ElementType: elemType,
		Elements:    values,
	}, nil
}

func descriptorAt(types nrbf.MemberTypeInfo, i int) nrbf.TypeDescriptor {
	if types == nil {
		return nrbf.TypeDescriptor{Tag: nrbf.TypeObject}
	}
	return types[i]
}

func descriptorFromTree(v any) (nrbf.TypeDescriptor, error) {
	var td nrbf.TypeDescriptor
	obj, ok := v.(map[string]any)
	if !ok {
		return td, errf("type descriptor is %T, want an object", v)
	}
	tag, err := fieldInt32(obj, "tag")
	if err != nil {
		return td, err
	}
	td.Tag = nrbf.BinaryType(tag)
	switch td.Tag {
	case nrbf.TypePrimitive, nrbf.TypePrimitiveArray:
		pt, err := fieldInt32(obj, "primitive")
		if err != nil {
			return td, err
		}
		td.Primitive = nrbf.PrimitiveType(pt)
	case nrbf.TypeSystemClass:
		name, ok := asString(obj["class_name"])
		if !ok {
			return td, errf("system class descriptor has no class_name")
		}
		td.ClassName = name
	case nrbf.TypeClass:
		name, ok := asString(obj["class_name"])
		if !ok {
			return td, errf("class descriptor has no class_name")
		}
		libID, err := fieldInt32(obj, "library_id")
		if err != nil {
			return td, err
		}
		td.ClassName = name
		td.LibraryID = libID
	}
	return td, nil
}

// primitiveFromTree coerces a tree scalar into a primitive of the declared
// type. Numbers may arrive as json.Number, int64, uint64, or float64
// depending on the codec that produced the tree.
func primitiveFromTree(v any, pt nrbf.PrimitiveType) (nrbf.PrimitiveValue, error) {
	pv := nrbf.PrimitiveValue{Type: pt}
	switch pt {
	case nrbf.PrimBoolean:
		b, ok := v.(bool)
		if !ok {
			return pv, errf("%T value for Boolean", v)
		}
		pv.Bool = b
	case nrbf.PrimSByte, nrbf.PrimInt16, nrbf.PrimInt32, nrbf.PrimInt64, nrbf.PrimTimeSpan:
		n, ok := asInt64(v)
		if !ok {
			return pv, errf("%T value for %s", v, pt)
		}
		pv.Int = n
	case nrbf.PrimByte, nrbf.PrimChar, nrbf.PrimUInt16, nrbf.PrimUInt32, nrbf.PrimUInt64, nrbf.PrimDateTime:
		n, ok := asUint64(v)
		if !ok {
			return pv, errf("%T value for %s", v, pt)
		}
		pv.Uint = n
	case nrbf.PrimSingle, nrbf.PrimDouble:
		f, ok := asFloat64(v)
		if !ok {
			return pv, errf("%T value for %s", v, pt)
		}
		pv.Float = f
	case nrbf.PrimDecimal, nrbf.PrimString:
		s, ok := asString(v)
		if !ok {
			return pv, errf("%T value for %s", v, pt)
		}
		pv.Str = s
	case nrbf.PrimNull:
		if v != nil {
			return pv, errf("%T value for Null", v)
		}
	default:
		return pv, errf("unknown primitive type 0x%02x", byte(pt))
	}
	return pv, nil
}

func fieldInt32(obj map[string]any, key string) (int32, error) {
	v, ok := obj[key]
	if !ok {
		return 0, errf("missing field %q", key)
	}
	n, ok := asInt64(v)
	if !ok {
		return 0, errf("field %q is %T, want an integer", key, v)
	}
	return int32(n), nil
}

func fieldInt32s(obj map[string]any, key string) ([]int32, error) {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil, errf("field %q is %T, want a list", key, obj[key])
	}
	out := make([]int32, len(raw))
	for i, v := range raw {
		n, ok := asInt64(v)
		if !ok {
			return nil, errf("field %q element %d is %T", key, i, v)
		}
		out[i] = int32(n)
	}
	return out, nil
}

func fieldValues(obj map[string]any) ([]any, error) {
	raw, ok := obj["$values"].([]any)
	if !ok {
		return nil, errf("node has no $values list")
	}
	return raw, nil
}
