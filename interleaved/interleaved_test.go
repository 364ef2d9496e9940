package interleaved_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	nrbferr "github.com/driedpampas/nrbf-parser/errors"
	"github.com/driedpampas/nrbf-parser/interleaved"
	"github.com/driedpampas/nrbf-parser/nrbf"
)

// fixtureRecords is a message exercising typed classes, metadata reuse,
// null runs, references, and primitive arrays.
func fixtureRecords() []nrbf.Record {
	return []nrbf.Record{
		&nrbf.SerializationHeader{RootID: 1, HeaderID: -1, MajorVersion: 1, MinorVersion: 0},
		&nrbf.BinaryLibrary{LibraryID: 2, LibraryName: "lib"},
		&nrbf.ClassWithMembersAndTypes{
			ClassInfo: nrbf.ClassInfo{ObjectID: 1, Name: "C", MemberNames: []string{"s", "n"}},
			MemberTypeInfo: nrbf.MemberTypeInfo{
				{Tag: nrbf.TypeString},
				{Tag: nrbf.TypePrimitive, Primitive: nrbf.PrimInt32},
			},
			LibraryID: 2,
			MemberValues: []nrbf.MemberValue{
				{Record: &nrbf.BinaryObjectString{ObjectID: 3, Value: "hi"}},
				{Primitive: &nrbf.PrimitiveValue{Type: nrbf.PrimInt32, Int: 7}},
			},
		},
		&nrbf.ClassWithID{
			ObjectID:   4,
			MetadataID: 1,
			MemberValues: []nrbf.MemberValue{
				{Record: &nrbf.ObjectNull{}},
				{Primitive: &nrbf.PrimitiveValue{Type: nrbf.PrimInt32, Int: 9}},
			},
		},
		&nrbf.ArraySingleObject{
			ObjectID: 5,
			Length:   5,
			Elements: []nrbf.MemberValue{
				{Record: &nrbf.ObjectNull{}},
				{Record: &nrbf.ObjectNullMultiple256{NullCount: 3}},
				{Record: &nrbf.MemberReference{IDRef: 3}},
			},
		},
		&nrbf.ArraySinglePrimitive{
			ObjectID:    6,
			Length:      2,
			ElementType: nrbf.PrimInt32,
			Values: []nrbf.PrimitiveValue{
				{Type: nrbf.PrimInt32, Int: 1},
				{Type: nrbf.PrimInt32, Int: 2},
			},
		},
		&nrbf.MessageEnd{},
	}
}

func TestFromRecordsClassShape(t *testing.T) {
	tree := interleaved.FromRecords(fixtureRecords())
	if len(tree) != 7 {
		t.Fatalf("node count = %d, want 7", len(tree))
	}
	cls, ok := tree[2].(map[string]any)
	if !ok {
		t.Fatalf("node 2 = %T", tree[2])
	}
	if cls["$record"] != "ClassWithMembersAndTypes" || cls["$type"] != "C" {
		t.Fatalf("class node = %v", cls)
	}
	if cls["$id"] != int64(1) || cls["library_id"] != int64(2) {
		t.Fatalf("class ids = %v / %v", cls["$id"], cls["library_id"])
	}
	names, ok := cls["$member_names"].([]any)
	if !ok || len(names) != 2 || names[0] != "s" || names[1] != "n" {
		t.Fatalf("$member_names = %v", cls["$member_names"])
	}
	if cls["n"] != int64(7) {
		t.Fatalf("member n = %v", cls["n"])
	}
	s, ok := cls["s"].(map[string]any)
	if !ok || s["$record"] != "BinaryObjectString" || s["value"] != "hi" {
		t.Fatalf("member s = %v", cls["s"])
	}
}

func TestNullRunStoredUnderFirstMember(t *testing.T) {
	recs := []nrbf.Record{
		&nrbf.SystemClassWithMembers{
			ClassInfo: nrbf.ClassInfo{ObjectID: 1, Name: "T", MemberNames: []string{"a", "b", "c"}},
			MemberValues: []nrbf.MemberValue{
				{Record: &nrbf.ObjectNullMultiple256{NullCount: 2}},
				{Record: &nrbf.ObjectNull{}},
			},
		},
	}
	tree := interleaved.FromRecords(recs)
	cls := tree[0].(map[string]any)
	run, ok := cls["a"].(map[string]any)
	if !ok || run["$record"] != "ObjectNullMultiple256" {
		t.Fatalf("member a = %v", cls["a"])
	}
	if _, ok := cls["b"]; ok {
		t.Fatal("member b should be covered by the run and absent")
	}
	if _, ok := cls["c"]; !ok {
		t.Fatal("member c missing")
	}

	rebuilt, err := interleaved.ToRecords(tree)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !reflect.DeepEqual(recs, rebuilt) {
		t.Fatalf("rebuilt records differ\n got %+v\nwant %+v", rebuilt, recs)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	recs := fixtureRecords()
	rebuilt, err := interleaved.ToRecords(interleaved.FromRecords(recs))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !reflect.DeepEqual(recs, rebuilt) {
		t.Fatalf("rebuilt records differ\n got %+v\nwant %+v", rebuilt, recs)
	}
}

// Bytes -> records -> JSON -> records -> bytes must be lossless.
func TestJSONRoundTripBytes(t *testing.T) {
	recs := fixtureRecords()
	var original bytes.Buffer
	if err := nrbf.EncodeMessage(&original, &nrbf.Message{Records: recs}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	data, err := interleaved.Marshal(recs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rebuilt, err := interleaved.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(recs, rebuilt) {
		t.Fatalf("records differ after JSON round trip")
	}

	var reencoded bytes.Buffer
	if err := nrbf.EncodeMessage(&reencoded, &nrbf.Message{Records: rebuilt}); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(original.Bytes(), reencoded.Bytes()) {
		t.Fatalf("bytes differ after JSON round trip\n got %x\nwant %x", reencoded.Bytes(), original.Bytes())
	}
}

func TestCBORRoundTrip(t *testing.T) {
	recs := fixtureRecords()
	data, err := interleaved.MarshalCBOR(recs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Deterministic encoding: marshaling again yields identical bytes.
	again, err := interleaved.MarshalCBOR(recs)
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("CBOR encoding is not deterministic")
	}
	rebuilt, err := interleaved.UnmarshalCBOR(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(recs, rebuilt) {
		t.Fatalf("records differ after CBOR round trip\n got %+v\nwant %+v", rebuilt, recs)
	}
}

func TestPrimitiveScalarFidelity(t *testing.T) {
	recs := []nrbf.Record{
		&nrbf.MemberPrimitiveTyped{Value: nrbf.PrimitiveValue{Type: nrbf.PrimUInt64, Uint: 1 << 63}},
		&nrbf.MemberPrimitiveTyped{Value: nrbf.PrimitiveValue{Type: nrbf.PrimInt64, Int: -1 << 62}},
		&nrbf.MemberPrimitiveTyped{Value: nrbf.PrimitiveValue{Type: nrbf.PrimDouble, Float: 0.5}},
		&nrbf.MemberPrimitiveTyped{Value: nrbf.PrimitiveValue{Type: nrbf.PrimNull}},
	}
	for _, codec := range []struct {
		name      string
		marshal   func([]nrbf.Record) ([]byte, error)
		unmarshal func([]byte) ([]nrbf.Record, error)
	}{
		{"json", interleaved.Marshal, interleaved.Unmarshal},
		{"cbor", interleaved.MarshalCBOR, interleaved.UnmarshalCBOR},
	} {
		t.Run(codec.name, func(t *testing.T) {
			data, err := codec.marshal(recs)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			rebuilt, err := codec.unmarshal(data)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(recs, rebuilt) {
				t.Fatalf("records differ\n got %+v\nwant %+v", rebuilt, recs)
			}
		})
	}
}

func TestToRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		tree []any
	}{
		{"non-object node", []any{"nope"}},
		{"missing record kind", []any{map[string]any{"x": int64(1)}}},
		{"unknown record kind", []any{map[string]any{"$record": "Bogus"}}},
		{
			"class without member names",
			[]any{map[string]any{
				"$record": "SystemClassWithMembers",
				"$type":   "T",
				"$id":     int64(1),
			}},
		},
		{
			"class with id before declaration",
			[]any{map[string]any{
				"$record":     "ClassWithId",
				"object_id":   int64(2),
				"metadata_id": int64(9),
				"$values":     []any{},
			}},
		},
		{
			"missing member value",
			[]any{map[string]any{
				"$record":       "SystemClassWithMembers",
				"$type":         "T",
				"$id":           int64(1),
				"$member_names": []any{"a"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interleaved.ToRecords(tt.tree)
			var serr *nrbferr.Error
			if !errors.As(err, &serr) || serr.Kind != nrbferr.KindInvalidValue {
				t.Fatalf("err = %v, want invalid_value", err)
			}
		})
	}
}
