package wire

import (
	"errors"
	"strings"
	"testing"
)

func TestFieldError(t *testing.T) {
	tests := []struct {
		name         string
		buildError   func() error
		expectedPath string
		expectedMsg  string
	}{
		{
			name: "single field error",
			buildError: func() error {
				return WrapField(ErrTruncated, "label")
			},
			expectedPath: "label",
			expectedMsg:  "truncated input",
		},
		{
			name: "nested field error",
			buildError: func() error {
				err := WrapField(ErrNumericRange, "height")
				err = WrapField(err, "inner")
				return WrapField(err, "outer")
			},
			expectedPath: "outer.inner.height",
			expectedMsg:  "value outside safe integer range",
		},
		{
			name: "indexed element",
			buildError: func() error {
				err := WrapField(ErrNumericRange, "height")
				err = WrapIndex(err, 2)
				return WrapField(err, "states")
			},
			expectedPath: "states[2].height",
			expectedMsg:  "value outside safe integer range",
		},
		{
			name: "index into a top level list",
			buildError: func() error {
				return WrapField(WrapIndex(ErrTruncated, 0), "items")
			},
			expectedPath: "items[0]",
			expectedMsg:  "truncated input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buildError()

			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %T", err)
			}
			if fieldErr.Path() != tt.expectedPath {
				t.Errorf("expected path %q, got %q", tt.expectedPath, fieldErr.Path())
			}

			errMsg := err.Error()
			if !strings.Contains(errMsg, tt.expectedPath) {
				t.Errorf("error message should contain path %q, got: %s", tt.expectedPath, errMsg)
			}
			if !strings.Contains(errMsg, tt.expectedMsg) {
				t.Errorf("error message should contain %q, got: %s", tt.expectedMsg, errMsg)
			}
			// wrapping extends the path instead of stacking messages
			if strings.Count(errMsg, "error at path") != 1 {
				t.Errorf("error message repeats its prefix: %s", errMsg)
			}
			if errors.Unwrap(err) == nil {
				t.Error("Unwrap should return the underlying error")
			}
		})
	}
}

func TestFieldErrorIs(t *testing.T) {
	err := WrapField(WrapIndex(WrapField(ErrDepthExceeded, "child"), 3), "nodes")
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("errors.Is should see the sentinel through the path: %v", err)
	}
	if errors.Is(err, ErrTruncated) {
		t.Error("errors.Is matched an unrelated sentinel")
	}
}

func TestWrapFieldNil(t *testing.T) {
	if WrapField(nil, "x") != nil {
		t.Error("WrapField(nil) should stay nil")
	}
}

func TestFieldErrorWithoutPath(t *testing.T) {
	err := &FieldError{Err: ErrTruncated}
	if err.Error() != ErrTruncated.Error() {
		t.Errorf("Error() = %q, want the bare message", err.Error())
	}
}
