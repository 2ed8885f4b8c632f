package swiftselect

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldOverflow is returned when a record has more fields than the field table can hold.
	ErrFieldOverflow = errors.New("swiftselect: too many fields in record")
	// ErrRecordTooLong is returned when a record exceeds Reader.MaxRecordSize.
	ErrRecordTooLong = errors.New("swiftselect: record too long")
	// ErrMissingField is returned when a selected field is absent from a record.
	ErrMissingField = errors.New("swiftselect: selected field missing from record")

	// ErrNoFields is returned by Config.Validate when no fields are selected.
	ErrNoFields = errors.New("swiftselect: no fields selected")
	// ErrInvalidField is returned by Config.Validate for an out-of-range field index.
	ErrInvalidField = errors.New("swiftselect: invalid field index")
	// ErrInvalidDelimiter is returned by Config.Validate when a delimiter or separator is the record terminator.
	ErrInvalidDelimiter = errors.New("swiftselect: delimiter cannot be newline")
	// ErrInvalidSize is returned by Config.Validate for a negative capacity or buffer size.
	ErrInvalidSize = errors.New("swiftselect: invalid size")

	errNilProjector = errors.New("swiftselect: projector is nil")
	errNoTarget     = errors.New("swiftselect: projector destination cannot be nil")
)

// ParseError contains location information for record-level errors.
// Line is 1-based. Column is the 1-based byte offset within the record,
// or zero when the error does not refer to a position.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column == 0 {
		return fmt.Sprintf("swiftselect: record %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("swiftselect: record %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReadError reports a failure of the input source.
type ReadError struct {
	// Line is the record being read when the source failed.
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftselect: read failed at record %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WriteError reports a failure of the output sink.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftselect: write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
