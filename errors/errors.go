package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode Phase = "decode" // bytes to record model
	PhaseEncode Phase = "encode" // record model to bytes
)

// Kind categorizes the error
type Kind string

const (
	// Structural: the byte stream does not conform to the format.
	KindTruncatedStream       Kind = "truncated_stream"
	KindInvalidStringEncoding Kind = "invalid_string_encoding"
	KindMalformedLength       Kind = "malformed_length"
	KindUnknownRecordTag      Kind = "unknown_record_tag"
	KindUnknownTypeTag        Kind = "unknown_type_tag"
	KindUnknownPrimitiveType  Kind = "unknown_primitive_type"
	KindMissingHeader         Kind = "missing_header"
	KindMissingTerminator     Kind = "missing_terminator"
	KindInvalidValue          Kind = "invalid_value"

	// Graph consistency: parseable, but the reference graph is inconsistent.
	KindDanglingReference     Kind = "dangling_reference"
	KindDuplicateObjectID     Kind = "duplicate_object_id"
	KindDuplicateLibraryID    Kind = "duplicate_library_id"
	KindDuplicateClassID      Kind = "duplicate_class_id"
	KindUnknownClassReference Kind = "unknown_class_reference"

	// I/O: the underlying stream failed; the cause is passed through.
	KindIOFailure Kind = "io_failure"
)

// Category groups kinds into the three top-level failure classes.
type Category string

const (
	CategoryStructural       Category = "structural"
	CategoryGraphConsistency Category = "graph_consistency"
	CategoryIO               Category = "io"
)

// Category returns the failure class a kind belongs to.
func (k Kind) Category() Category {
	switch k {
	case KindDanglingReference, KindDuplicateObjectID, KindDuplicateLibraryID,
		KindDuplicateClassID, KindUnknownClassReference:
		return CategoryGraphConsistency
	case KindIOFailure:
		return CategoryIO
	default:
		return CategoryStructural
	}
}

// Error is the structured error type used throughout the library
type Error struct {
	Cause       error
	Phase       Phase
	Kind        Kind
	Detail      string
	Offset      int64 // byte offset in the stream, -1 if unknown
	RecordIndex int   // index of the record being processed, -1 if unknown
	ID          int32 // offending object/library/class id, 0 if not applicable
	HasID       bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.RecordIndex >= 0 {
		fmt.Fprintf(&b, " (record %d)", e.RecordIndex)
	}
	if e.HasID {
		fmt.Fprintf(&b, " id=%d", e.ID)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Category returns the failure class of this error.
func (e *Error) Category() Category {
	return e.Kind.Category()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:       phase,
			Kind:        kind,
			Offset:      -1,
			RecordIndex: -1,
		},
	}
}

// Offset sets the byte offset at which the error occurred
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// RecordIndex sets the index of the record being processed
func (b *Builder) RecordIndex(i int) *Builder {
	b.err.RecordIndex = i
	return b
}

// ID sets the offending object/library/class id
func (b *Builder) ID(id int32) *Builder {
	b.err.ID = id
	b.err.HasID = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates a truncated-stream error at the given offset
func Truncated(phase Phase, offset int64, cause error) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindTruncatedStream,
		Offset:      offset,
		RecordIndex: -1,
		Cause:       cause,
	}
}

// UnknownRecordTag creates an unknown-record-tag error
func UnknownRecordTag(phase Phase, offset int64, tag byte) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindUnknownRecordTag,
		Offset:      offset,
		RecordIndex: -1,
		Detail:      fmt.Sprintf("record tag 0x%02x", tag),
	}
}

// UnknownTypeTag creates an unknown-type-tag error
func UnknownTypeTag(phase Phase, offset int64, tag byte) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindUnknownTypeTag,
		Offset:      offset,
		RecordIndex: -1,
		Detail:      fmt.Sprintf("member type tag 0x%02x", tag),
	}
}

// DanglingReference creates a dangling-reference error for an unresolved id
func DanglingReference(phase Phase, id int32) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindDanglingReference,
		Offset:      -1,
		RecordIndex: -1,
		ID:          id,
		HasID:       true,
	}
}

// DuplicateObjectID creates a duplicate-object-id error
func DuplicateObjectID(phase Phase, offset int64, id int32) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindDuplicateObjectID,
		Offset:      offset,
		RecordIndex: -1,
		ID:          id,
		HasID:       true,
	}
}

// UnknownClassReference creates an unknown-class-reference error
func UnknownClassReference(phase Phase, offset int64, metadataID int32) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindUnknownClassReference,
		Offset:      offset,
		RecordIndex: -1,
		ID:          metadataID,
		HasID:       true,
		Detail:      fmt.Sprintf("metadata id %d not declared", metadataID),
	}
}

// IO wraps an underlying stream failure without reinterpreting it
func IO(phase Phase, offset int64, cause error) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindIOFailure,
		Offset:      offset,
		RecordIndex: -1,
		Cause:       cause,
	}
}
