package interleaved

import (
	"github.com/driedpampas/nrbf-parser/nrbf"
)

// FromRecords converts a record sequence to its interleaved tree form:
// one node per top-level record, nested values inline. The tree is built
// from plain maps, slices, and scalars so it marshals directly to JSON
// or CBOR.
func FromRecords(records []nrbf.Record) []any {
	out := make([]any, 0, len(records))
	for _, r := range records {
		out = append(out, recordTree(r))
	}
	return out
}

func recordTree(r nrbf.Record) any {
	switch rec := r.(type) {
	case *nrbf.SerializationHeader:
		return map[string]any{
			"$record":       "SerializationHeader",
			"root_id":       int64(rec.RootID),
			"header_id":     int64(rec.HeaderID),
			"major_version": int64(rec.MajorVersion),
			"minor_version": int64(rec.MinorVersion),
		}
	case *nrbf.BinaryLibrary:
		return map[string]any{
			"$record":      "BinaryLibrary",
			"library_id":   int64(rec.LibraryID),
			"library_name": rec.LibraryName,
		}
	case *nrbf.ClassWithMembersAndTypes:
		m := classTree("ClassWithMembersAndTypes", rec.ClassInfo, rec.MemberValues)
		m["$member_type_info"] = typeInfoTree(rec.MemberTypeInfo)
		m["library_id"] = int64(rec.LibraryID)
		return m
	case *nrbf.SystemClassWithMembersAndTypes:
		m := classTree("SystemClassWithMembersAndTypes", rec.ClassInfo, rec.MemberValues)
		m["$member_type_info"] = typeInfoTree(rec.MemberTypeInfo)
		return m
	case *nrbf.SystemClassWithMembers:
		return classTree("SystemClassWithMembers", rec.ClassInfo, rec.MemberValues)
	case *nrbf.ClassWithMembers:
		m := classTree("ClassWithMembers", rec.ClassInfo, rec.MemberValues)
		m["library_id"] = int64(rec.LibraryID)
		return m
	case *nrbf.ClassWithID:
		return map[string]any{
			"$record":     "ClassWithId",
			"object_id":   int64(rec.ObjectID),
			"metadata_id": int64(rec.MetadataID),
			"$values":     valuesTree(rec.MemberValues),
		}
	case *nrbf.BinaryObjectString:
		return map[string]any{
			"$record":   "BinaryObjectString",
			"object_id": int64(rec.ObjectID),
			"value":     rec.Value,
		}
	case *nrbf.BinaryArray:
		m := map[string]any{
			"$record":      "BinaryArray",
			"object_id":    int64(rec.ObjectID),
			"array_type":   int64(rec.ArrayType),
			"rank":         int64(rec.Rank),
			"lengths":      int32sTree(rec.Lengths),
			"element_type": descriptorTree(rec.ElementType),
			"$values":      valuesTree(rec.Elements),
		}
		if rec.LowerBounds != nil {
			m["lower_bounds"] = int32sTree(rec.LowerBounds)
		}
		return m
	case *nrbf.ArraySingleObject:
		return map[string]any{
			"$record":   "ArraySingleObject",
			"object_id": int64(rec.ObjectID),
			"length":    int64(rec.Length),
			"$values":   valuesTree(rec.Elements),
		}
	case *nrbf.ArraySinglePrimitive:
		values := make([]any, len(rec.Values))
		for i, pv := range rec.Values {
			values[i] = primitiveTree(pv)
		}
		return map[string]any{
			"$record":        "ArraySinglePrimitive",
			"object_id":      int64(rec.ObjectID),
			"length":         int64(rec.Length),
			"primitive_type": int64(rec.ElementType),
			"$values":        values,
		}
	case *nrbf.ArraySingleString:
		return map[string]any{
			"$record":   "ArraySingleString",
			"object_id": int64(rec.ObjectID),
			"length":    int64(rec.Length),
			"$values":   valuesTree(rec.Elements),
		}
	case *nrbf.MemberPrimitiveTyped:
		return map[string]any{
			"$record":        "MemberPrimitiveTyped",
			"primitive_type": int64(rec.Value.Type),
			"value":          primitiveTree(rec.Value),
		}
	case *nrbf.MemberReference:
		return map[string]any{
			"$record": "MemberReference",
			"id_ref":  int64(rec.IDRef),
		}
	case *nrbf.ObjectNull:
		return map[string]any{"$record": "ObjectNull"}
	case *nrbf.ObjectNullMultiple:
		return map[string]any{
			"$record":    "ObjectNullMultiple",
			"null_count": int64(rec.NullCount),
		}
	case *nrbf.ObjectNullMultiple256:
		return map[string]any{
			"$record":    "ObjectNullMultiple256",
			"null_count": int64(rec.NullCount),
		}
	case *nrbf.MessageEnd:
		return map[string]any{"$record": "MessageEnd"}
	default:
		return map[string]any{"$record": r.Type().String()}
	}
}

// classTree builds the common class node: identity keys, the explicit
// member name order, and one key per member. A null run is stored under
// the first member name it covers; the other covered names are absent.
// Member names are carried explicitly in $member_names because map key
// order does not survive marshaling.
func classTree(record string, info nrbf.ClassInfo, values []nrbf.MemberValue) map[string]any {
	names := make([]any, len(info.MemberNames))
	for i, n := range info.MemberNames {
		names[i] = n
	}
	m := map[string]any{
		"$record":       record,
		"$type":         info.Name,
		"$id":           int64(info.ObjectID),
		"$member_names": names,
	}
	slot := 0
	for _, v := range values {
		if slot >= len(info.MemberNames) {
			break
		}
		m[info.MemberNames[slot]] = memberTree(v)
		slot += int(v.Slots())
	}
	return m
}

func valuesTree(values []nrbf.MemberValue) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = memberTree(v)
	}
	return out
}

func memberTree(v nrbf.MemberValue) any {
	if v.Primitive != nil {
		return primitiveTree(*v.Primitive)
	}
	return recordTree(v.Record)
}

// primitiveTree maps a primitive to a plain scalar. Char stays the raw
// byte value and Decimal stays the hex string, matching the record model.
func primitiveTree(pv nrbf.PrimitiveValue) any {
	switch pv.Type {
	case nrbf.PrimBoolean:
		return pv.Bool
	case nrbf.PrimSByte, nrbf.PrimInt16, nrbf.PrimInt32, nrbf.PrimInt64, nrbf.PrimTimeSpan:
		return pv.Int
	case nrbf.PrimByte, nrbf.PrimChar, nrbf.PrimUInt16, nrbf.PrimUInt32, nrbf.PrimUInt64, nrbf.PrimDateTime:
		return pv.Uint
	case nrbf.PrimSingle, nrbf.PrimDouble:
		return pv.Float
	case nrbf.PrimDecimal, nrbf.PrimString:
		return pv.Str
	default: // Null
		return nil
	}
}

func descriptorTree(td nrbf.TypeDescriptor) map[string]any {
	m := map[string]any{"tag": int64(td.Tag)}
	switch td.Tag {
	case nrbf.TypePrimitive, nrbf.TypePrimitiveArray:
		m["primitive"] = int64(td.Primitive)
	case nrbf.TypeSystemClass:
		m["class_name"] = td.ClassName
	case nrbf.TypeClass:
		m["class_name"] = td.ClassName
		m["library_id"] = int64(td.LibraryID)
	}
	return m
}

func typeInfoTree(info nrbf.MemberTypeInfo) []any {
	out := make([]any, len(info))
	for i, td := range info {
		out[i] = descriptorTree(td)
	}
	return out
}

func int32sTree(vs []int32) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}
