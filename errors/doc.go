// Package errors provides structured error types for the nrbf-parser library.
//
// Errors are categorized by Phase (decode or encode) and Kind (the specific
// failure). Every Kind belongs to one of three categories: structural errors
// (the byte stream does not conform to the NRBF format), graph consistency
// errors (the stream parses but its object/library reference graph is
// inconsistent), and I/O failures (the underlying stream failed and the
// error is passed through untouched).
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownRecordTag).
//		Offset(pos).
//		RecordIndex(7).
//		Detail("record tag 0x%02x", b).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseDecode, offset, cause)
//	err := errors.DanglingReference(errors.PhaseDecode, id)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
