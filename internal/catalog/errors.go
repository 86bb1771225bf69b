package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("invalid record")
	// ErrOutOfRange reports an index that is not a current position.
	ErrOutOfRange = errors.New("index out of range")
	// ErrNotFound reports an unknown record ID.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidFormat reports a snapshot that is not a sequence of records.
	ErrInvalidFormat = errors.New("invalid snapshot format")
	// ErrParse matches every ParseError.
	ErrParse = errors.New("snapshot is not valid JSON")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ParseError wraps the decoder failure for unreadable snapshot text. A parse
// failure is also an invalid format, so errors.Is(err, ErrInvalidFormat)
// holds as well.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target == ErrParse || target == ErrInvalidFormat
}

func outOfRange(index, length int) error {
	return fmt.Errorf("%w: %d (catalog has %d records)", ErrOutOfRange, index, length)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
