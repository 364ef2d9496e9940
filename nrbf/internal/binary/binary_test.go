package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestVarLenRoundTrip(t *testing.T) {
	tests := []struct {
		value   int32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{2097151, []byte{0xff, 0xff, 0x7f}},
		{2097152, []byte{0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteVarLen(tt.value)
		if w.Err() != nil {
			t.Fatalf("write %d: %v", tt.value, w.Err())
		}
		if !bytes.Equal(buf.Bytes(), tt.encoded) {
			t.Errorf("encode %d: got %x, want %x", tt.value, buf.Bytes(), tt.encoded)
		}

		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadVarLen()
		if err != nil {
			t.Fatalf("decode %x: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode %x: got %d, want %d", tt.encoded, got, tt.value)
		}
		if r.Position() != int64(len(tt.encoded)) {
			t.Errorf("decode %x: position %d, want %d", tt.encoded, r.Position(), len(tt.encoded))
		}
	}
}

func TestVarLenFifthByteContinuation(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff}))
	_, err := r.ReadVarLen()
	if !errors.Is(err, ErrVarIntTooLong) {
		t.Fatalf("got %v, want ErrVarIntTooLong", err)
	}
}

func TestVarLenFiveBytesAccepted(t *testing.T) {
	// Fifth byte without continuation bit is legal.
	r := NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x07}))
	if _, err := r.ReadVarLen(); err != nil {
		t.Fatalf("five-byte varint: %v", err)
	}
}

func TestVarLenTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x80}))
	_, err := r.ReadVarLen()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got %v, want EOF", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{"", "a", "hello", "héllo wörld", "日本語"}

	for _, s := range tests {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteString(s)

		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("read %q: %v", s, err)
		}
		if got != s {
			t.Errorf("got %q, want %q", got, s)
		}
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02, 0xff, 0xfe}))
	_, err := r.ReadString()
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("got %v, want ErrInvalidUTF8", err)
	}
}

func TestStringTruncatedPayload(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x05, 'h', 'i'}))
	_, err := r.ReadString()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got %v, want EOF", err)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteBool(true)
	w.WriteInt16(-12345)
	w.WriteInt32(-123456789)
	w.WriteInt64(-1234567890123456789)
	w.WriteUint16(54321)
	w.WriteUint32(3123456789)
	w.WriteUint64(12345678901234567890)
	w.WriteFloat32(3.5)
	w.WriteFloat64(-2.25)
	if w.Err() != nil {
		t.Fatal(w.Err())
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if v, _ := r.ReadBool(); v != true {
		t.Error("bool mismatch")
	}
	if v, _ := r.ReadInt16(); v != -12345 {
		t.Error("int16 mismatch")
	}
	if v, _ := r.ReadInt32(); v != -123456789 {
		t.Error("int32 mismatch")
	}
	if v, _ := r.ReadInt64(); v != -1234567890123456789 {
		t.Error("int64 mismatch")
	}
	if v, _ := r.ReadUint16(); v != 54321 {
		t.Error("uint16 mismatch")
	}
	if v, _ := r.ReadUint32(); v != 3123456789 {
		t.Error("uint32 mismatch")
	}
	if v, _ := r.ReadUint64(); v != 12345678901234567890 {
		t.Error("uint64 mismatch")
	}
	if v, _ := r.ReadFloat32(); v != 3.5 {
		t.Error("float32 mismatch")
	}
	if v, _ := r.ReadFloat64(); v != -2.25 {
		t.Error("float64 mismatch")
	}
	if r.Position() != int64(buf.Len()) {
		t.Errorf("position %d, want %d", r.Position(), buf.Len())
	}
}

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, io.ErrClosedPipe
	}
	n := len(p)
	if n > f.after {
		n = f.after
	}
	f.after -= n
	if n < len(p) {
		return n, io.ErrClosedPipe
	}
	return n, nil
}

func TestWriterStickyError(t *testing.T) {
	w := NewWriter(&failWriter{after: 2})
	w.WriteInt32(1)
	first := w.Err()
	if first == nil {
		t.Fatal("expected write error")
	}
	w.WriteString("more")
	if w.Err() != first {
		t.Error("error not sticky")
	}
	if w.Count() != 2 {
		t.Errorf("count %d, want 2", w.Count())
	}
}
