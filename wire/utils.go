package wire

import (
	"fmt"

	"github.com/lumera-tools/protolite/schema"
)

// MaxSafeInteger is the largest magnitude int64 and uint64 fields may hold.
const MaxSafeInteger = schema.MaxSafeInteger

// CheckSafeInt64 reports ErrNumericRange for values a float64 cannot hold exactly.
func CheckSafeInt64(v int64) error {
	if v > MaxSafeInteger || v < -MaxSafeInteger {
		return fmt.Errorf("%w: %d", ErrNumericRange, v)
	}
	return nil
}

// CheckSafeUint64 is CheckSafeInt64 for unsigned values.
func CheckSafeUint64(v uint64) error {
	if v > MaxSafeInteger {
		return fmt.Errorf("%w: %d", ErrNumericRange, v)
	}
	return nil
}

// checkSafe range checks the value of an int64 or uint64 field.
func checkSafe(v any) error {
	switch n := v.(type) {
	case int64:
		return CheckSafeInt64(n)
	case uint64:
		return CheckSafeUint64(n)
	default:
		return nil
	}
}
