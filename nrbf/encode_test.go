package nrbf_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	nrbferr "github.com/driedpampas/nrbf-parser/errors"
	"github.com/driedpampas/nrbf-parser/nrbf"
)

func encodeKind(t *testing.T, m *nrbf.Message) *nrbferr.Error {
	t.Helper()
	err := nrbf.EncodeMessage(io.Discard, m)
	if err == nil {
		t.Fatal("expected encode error")
	}
	var serr *nrbferr.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T: %v", err, err)
	}
	if serr.Phase != nrbferr.PhaseEncode {
		t.Fatalf("phase = %q, want encode", serr.Phase)
	}
	return serr
}

func header() *nrbf.SerializationHeader {
	return &nrbf.SerializationHeader{RootID: 1, HeaderID: -1, MajorVersion: 1, MinorVersion: 0}
}

func TestEncodeHandBuiltMessage(t *testing.T) {
	m := &nrbf.Message{Records: []nrbf.Record{
		header(),
		&nrbf.BinaryLibrary{LibraryID: 2, LibraryName: "lib"},
		&nrbf.ClassWithMembersAndTypes{
			ClassInfo:      nrbf.ClassInfo{ObjectID: 1, Name: "C", MemberNames: []string{"s"}},
			MemberTypeInfo: nrbf.MemberTypeInfo{{Tag: nrbf.TypeString}},
			LibraryID:      2,
			MemberValues: []nrbf.MemberValue{
				{Record: &nrbf.BinaryObjectString{ObjectID: 3, Value: "hello"}},
			},
		},
		&nrbf.MessageEnd{},
	}}
	var buf bytes.Buffer
	if err := nrbf.EncodeMessage(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), classWithStringMessage()) {
		t.Fatalf("encoded bytes\n got %x\nwant %x", buf.Bytes(), classWithStringMessage())
	}
}

func TestEncodeRequiresHeaderFirst(t *testing.T) {
	e := nrbf.NewEncoder(io.Discard)
	err := e.Encode(&nrbf.MessageEnd{})
	var serr *nrbferr.Error
	if !errors.As(err, &serr) || serr.Kind != nrbferr.KindMissingHeader {
		t.Fatalf("err = %v, want missing_header", err)
	}
}

func TestEncodeRejectsRecordsAfterEnd(t *testing.T) {
	e := nrbf.NewEncoder(io.Discard)
	if err := e.Encode(header()); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := e.Encode(&nrbf.MessageEnd{}); err != nil {
		t.Fatalf("end: %v", err)
	}
	err := e.Encode(&nrbf.ObjectNull{})
	var serr *nrbferr.Error
	if !errors.As(err, &serr) || serr.Kind != nrbferr.KindInvalidValue {
		t.Fatalf("err = %v, want invalid_value", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []nrbf.Record
		kind    nrbferr.Kind
	}{
		{
			"duplicate object id",
			[]nrbf.Record{
				header(),
				&nrbf.BinaryObjectString{ObjectID: 1, Value: "a"},
				&nrbf.BinaryObjectString{ObjectID: 1, Value: "b"},
			},
			nrbferr.KindDuplicateObjectID,
		},
		{
			"dangling reference at terminator",
			[]nrbf.Record{
				header(),
				&nrbf.MemberReference{IDRef: 42},
				&nrbf.MessageEnd{},
			},
			nrbferr.KindDanglingReference,
		},
		{
			"dangling library reference",
			[]nrbf.Record{
				header(),
				&nrbf.ClassWithMembers{
					ClassInfo: nrbf.ClassInfo{ObjectID: 1, Name: "C"},
					LibraryID: 9,
				},
				&nrbf.MessageEnd{},
			},
			nrbferr.KindDanglingReference,
		},
		{
			"unknown class metadata",
			[]nrbf.Record{
				header(),
				&nrbf.ClassWithID{ObjectID: 2, MetadataID: 5},
			},
			nrbferr.KindUnknownClassReference,
		},
		{
			"member count mismatch",
			[]nrbf.Record{
				header(),
				&nrbf.SystemClassWithMembersAndTypes{
					ClassInfo:      nrbf.ClassInfo{ObjectID: 1, Name: "C", MemberNames: []string{"a", "b"}},
					MemberTypeInfo: nrbf.MemberTypeInfo{{Tag: nrbf.TypeObject}, {Tag: nrbf.TypeObject}},
					MemberValues: []nrbf.MemberValue{
						{Record: &nrbf.ObjectNull{}},
					},
				},
			},
			nrbferr.KindInvalidValue,
		},
		{
			"primitive type mismatch",
			[]nrbf.Record{
				header(),
				&nrbf.SystemClassWithMembersAndTypes{
					ClassInfo:      nrbf.ClassInfo{ObjectID: 1, Name: "C", MemberNames: []string{"x"}},
					MemberTypeInfo: nrbf.MemberTypeInfo{{Tag: nrbf.TypePrimitive, Primitive: nrbf.PrimInt32}},
					MemberValues: []nrbf.MemberValue{
						{Primitive: &nrbf.PrimitiveValue{Type: nrbf.PrimBoolean, Bool: true}},
					},
				},
			},
			nrbferr.KindInvalidValue,
		},
		{
			"malformed decimal payload",
			[]nrbf.Record{
				header(),
				&nrbf.MemberPrimitiveTyped{Value: nrbf.PrimitiveValue{Type: nrbf.PrimDecimal, Str: "zz"}},
			},
			nrbferr.KindInvalidValue,
		},
		{
			"array length mismatch",
			[]nrbf.Record{
				header(),
				&nrbf.ArraySinglePrimitive{ObjectID: 1, Length: 2, ElementType: nrbf.PrimInt32,
					Values: []nrbf.PrimitiveValue{{Type: nrbf.PrimInt32, Int: 1}}},
			},
			nrbferr.KindInvalidValue,
		},
		{
			"lower bounds without offset shape",
			[]nrbf.Record{
				header(),
				&nrbf.BinaryArray{ObjectID: 1, ArrayType: nrbf.ArraySingle, Rank: 1,
					Lengths: []int32{0}, LowerBounds: []int32{0}},
			},
			nrbferr.KindInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serr := encodeKind(t, &nrbf.Message{Records: tt.records})
			if serr.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q (%v)", serr.Kind, tt.kind, serr)
			}
		})
	}
}

type failWriter struct{ err error }

func (w *failWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestEncodeIOFailure(t *testing.T) {
	cause := errors.New("disk full")
	e := nrbf.NewEncoder(&failWriter{err: cause})
	err := e.Encode(header())
	var serr *nrbferr.Error
	if !errors.As(err, &serr) || serr.Kind != nrbferr.KindIOFailure {
		t.Fatalf("err = %v, want io_failure", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not preserved in chain")
	}
}

func TestMessageValidate(t *testing.T) {
	good, err := nrbf.DecodeMessage(bytes.NewReader(classWithStringMessage()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name    string
		records []nrbf.Record
		kind    nrbferr.Kind
	}{
		{"empty", nil, nrbferr.KindMissingHeader},
		{"no header", []nrbf.Record{&nrbf.MessageEnd{}}, nrbferr.KindMissingHeader},
		{"no terminator", []nrbf.Record{header()}, nrbferr.KindMissingTerminator},
		{
			"dangling reference",
			[]nrbf.Record{header(), &nrbf.MemberReference{IDRef: 7}, &nrbf.MessageEnd{}},
			nrbferr.KindDanglingReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&nrbf.Message{Records: tt.records}).Validate()
			var serr *nrbferr.Error
			if !errors.As(err, &serr) || serr.Kind != tt.kind {
				t.Fatalf("err = %v, want %q", err, tt.kind)
			}
		})
	}
}
