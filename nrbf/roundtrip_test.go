package nrbf_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/driedpampas/nrbf-parser/nrbf"
)

// Decoding a stream and re-encoding the result must reproduce the input
// byte for byte, including compact null runs and id assignments.
func TestRoundTripByteExact(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"minimal", minimalMessage()},
		{"class with string", classWithStringMessage()},
		{"self reference", selfRefMessage()},
		{"class with id", classWithIDMessage()},
		{"null runs", nullRunArrayMessage()},
		{"primitive array", primitiveArrayMessage()},
		{"rectangular array", rectangularArrayMessage()},
		{"string array", stringArrayMessage()},
		{
			// The wide int32 run form must not be normalized to the
			// one-byte form on re-encode.
			"wide null run",
			stream(headerBytes(),
				[]byte{0x10}, i32(1), i32(300),
				[]byte{0x0e}, i32(300),
				endBytes),
		},
		{
			"offset array with lower bounds",
			stream(headerBytes(),
				[]byte{0x07}, i32(1),
				[]byte{0x03}, // shape: SingleOffset
				i32(1), i32(2), i32(5),
				[]byte{0x02}, // element type: Object
				[]byte{0x0a}, []byte{0x0a},
				endBytes),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := nrbf.DecodeMessage(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			var buf bytes.Buffer
			if err := nrbf.EncodeMessage(&buf, msg); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.data) {
				t.Fatalf("round trip differs\n got %x\nwant %x", buf.Bytes(), tt.data)
			}
		})
	}
}

// A second decode of the re-encoded bytes must produce the same record
// model as the first decode.
func TestRoundTripIdempotent(t *testing.T) {
	data := classWithStringMessage()
	first, err := nrbf.DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	var buf bytes.Buffer
	if err := nrbf.EncodeMessage(&buf, first); err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := nrbf.DecodeMessage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Fatalf("records differ after round trip\nfirst  %+v\nsecond %+v", first.Records, second.Records)
	}
}

// Primitive payload coverage for the full type table, one member per type.
func TestRoundTripPrimitives(t *testing.T) {
	payloads := []struct {
		name  string
		ptype byte
		bytes []byte
	}{
		{"boolean", 0x01, []byte{0x01}},
		{"byte", 0x02, []byte{0xfe}},
		{"char", 0x03, []byte{0x41}},
		{"decimal", 0x05, bytes.Repeat([]byte{0xab}, 16)},
		{"double", 0x06, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0x3f}},
		{"int16", 0x07, []byte{0xff, 0x7f}},
		{"int32", 0x08, i32(-12345)},
		{"int64", 0x09, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"sbyte", 0x0a, []byte{0x80}},
		{"single", 0x0b, []byte{0x00, 0x00, 0x80, 0x3f}},
		{"timespan", 0x0c, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{"datetime", 0x0d, []byte{1, 1, 2, 2, 3, 3, 4, 4}},
		{"uint16", 0x0e, []byte{0xff, 0xff}},
		{"uint32", 0x0f, []byte{0xef, 0xbe, 0xad, 0xde}},
		{"uint64", 0x10, bytes.Repeat([]byte{0xff}, 8)},
		{"null", 0x11, nil},
		{"string", 0x12, lpstr("prim")},
	}
	for _, p := range payloads {
		t.Run(p.name, func(t *testing.T) {
			data := stream(
				headerBytes(),
				[]byte{0x08, p.ptype}, p.bytes,
				endBytes,
			)
			msg, err := nrbf.DecodeMessage(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			var buf bytes.Buffer
			if err := nrbf.EncodeMessage(&buf, msg); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), data) {
				t.Fatalf("round trip differs\n got %x\nwant %x", buf.Bytes(), data)
			}
		})
	}
}

// Long strings exercise the multi-byte length prefix.
func TestRoundTripLongString(t *testing.T) {
	long := bytes.Repeat([]byte("x"), 300)
	data := stream(
		headerBytes(),
		[]byte{0x06}, i32(1),
		[]byte{0xac, 0x02}, // 300 as a two-byte varint
		long,
		endBytes,
	)
	msg, err := nrbf.DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s, ok := msg.Records[1].(*nrbf.BinaryObjectString)
	if !ok || len(s.Value) != 300 {
		t.Fatalf("record 1 = %+v", msg.Records[1])
	}
	var buf bytes.Buffer
	if err := nrbf.EncodeMessage(&buf, msg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatal("round trip differs")
	}
}
