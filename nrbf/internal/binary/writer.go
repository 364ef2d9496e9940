package binary

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer provides NRBF-specific write methods over an io.Writer. The first
// write failure is sticky: subsequent writes become no-ops and Err returns
// the original error, so record encoders can emit fields without threading
// an error through every call.
type Writer struct {
	w   io.Writer
	n   int64
	err error
}

// NewWriter creates a new Writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Count returns the number of bytes successfully written.
func (w *Writer) Count() int64 {
	return w.n
}

// Err returns the first write error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = err
	}
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.write([]byte{b})
}

// WriteBytes writes a byte slice verbatim.
func (w *Writer) WriteBytes(data []byte) {
	w.write(data)
}

// WriteBool writes a boolean as a single byte, 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

// WriteUint16 writes a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.write(buf[:])
}

// WriteUint64 writes a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.write(buf[:])
}

// WriteInt16 writes a little-endian int16.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteInt64 writes a little-endian int64.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat32 writes a little-endian float32.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a little-endian float64.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteVarLen writes a non-negative integer in the 7-bit group encoding,
// least-significant group first, high bit as continuation flag.
func (w *Writer) WriteVarLen(v int32) {
	u := uint32(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		w.Byte(b)
		if u == 0 {
			break
		}
	}
}

// WriteString writes a counted UTF-8 string: a variable-length byte count
// followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	w.WriteVarLen(int32(len(s)))
	w.write([]byte(s))
}
