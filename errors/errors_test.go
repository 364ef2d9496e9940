package errors

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "phase and kind",
			err:      New(PhaseDecode, KindMissingHeader).Build(),
			contains: []string{"[decode]", "missing_header"},
		},
		{
			name:     "offset and record index",
			err:      New(PhaseDecode, KindUnknownRecordTag).Offset(42).RecordIndex(3).Build(),
			contains: []string{"offset 42", "record 3"},
		},
		{
			name:     "id",
			err:      DanglingReference(PhaseDecode, 7),
			contains: []string{"dangling_reference", "id=7"},
		},
		{
			name:     "detail",
			err:      New(PhaseEncode, KindInvalidValue).Detail("got %d slots, want %d", 2, 3).Build(),
			contains: []string{"got 2 slots, want 3"},
		},
		{
			name:     "cause",
			err:      Truncated(PhaseDecode, 10, io.ErrUnexpectedEOF),
			contains: []string{"truncated_stream", "caused by", "unexpected EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("error message %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := New(PhaseDecode, KindMalformedLength).Offset(5).Build()
	if !errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindMalformedLength}) {
		t.Error("expected Is to match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindMalformedLength}) {
		t.Error("expected Is to reject different phase")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := io.EOF
	err := Truncated(PhaseDecode, 0, cause)
	if !errors.Is(err, io.EOF) {
		t.Error("expected unwrap chain to reach cause")
	}
}

func TestKind_Category(t *testing.T) {
	tests := []struct {
		kind Kind
		want Category
	}{
		{KindTruncatedStream, CategoryStructural},
		{KindInvalidStringEncoding, CategoryStructural},
		{KindMalformedLength, CategoryStructural},
		{KindUnknownRecordTag, CategoryStructural},
		{KindUnknownTypeTag, CategoryStructural},
		{KindUnknownPrimitiveType, CategoryStructural},
		{KindMissingHeader, CategoryStructural},
		{KindMissingTerminator, CategoryStructural},
		{KindInvalidValue, CategoryStructural},
		{KindDanglingReference, CategoryGraphConsistency},
		{KindDuplicateObjectID, CategoryGraphConsistency},
		{KindDuplicateLibraryID, CategoryGraphConsistency},
		{KindDuplicateClassID, CategoryGraphConsistency},
		{KindUnknownClassReference, CategoryGraphConsistency},
		{KindIOFailure, CategoryIO},
	}

	for _, tt := range tests {
		if got := tt.kind.Category(); got != tt.want {
			t.Errorf("%s: category = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
