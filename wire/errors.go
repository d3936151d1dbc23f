package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decode and encode failures. All of them are terminal: retrying the same
// input yields the same error.
var (
	// ErrTruncated reports a varint, length prefix or fixed value that runs
	// past the end of the available input.
	ErrTruncated = errors.New("truncated input")

	// ErrNumericRange reports a 64-bit value outside the safe integer range.
	ErrNumericRange = errors.New("value outside safe integer range")

	// ErrInvalidWireType reports wire types 6 and 7, which cannot be skipped.
	ErrInvalidWireType = errors.New("invalid wire type")

	// ErrDepthExceeded reports messages nested deeper than Options.MaxDepth.
	ErrDepthExceeded = errors.New("message nesting too deep")

	// ErrVarintOverflow reports a varint that does not fit in 64 bits.
	ErrVarintOverflow = errors.New("varint overflow")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["states", "[2]", "height"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at path %s: %v", e.Path(), e.Err)
}

// Path renders the field path, attaching index segments to their field:
// states[2].height
func (e *FieldError) Path() string {
	var sb strings.Builder
	for i, seg := range e.FieldPath {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(seg)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// WrapField prefixes the path of err with a field name, creating a FieldError
// when err does not carry one yet.
func WrapField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}

// WrapIndex prefixes the path of err with an element index.
func WrapIndex(err error, index int) error {
	return WrapField(err, fmt.Sprintf("[%d]", index))
}
