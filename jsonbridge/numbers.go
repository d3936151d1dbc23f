package jsonbridge

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/lumera-tools/protolite/wire"
)

// decimalLiteral is the JSON number grammar. strconv alone would also take
// "inf", "nan", hex floats and underscores.
var decimalLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func isDecimal(s string) bool { return decimalLiteral.MatchString(s) }

// numericText returns the literal of a JSON number, or of a string holding
// one, as accepted for integer and double fields.
func numericText(v Value) (string, bool) {
	switch v.Kind() {
	case NumberKind:
		n, _ := v.AsNumber()
		return n.String(), true
	case StringKind:
		s, _ := v.AsString()
		return s, true
	default:
		return "", false
	}
}

// coerceToInt64 parses an integer literal, accepting exponent and fraction
// forms when the value is integral. Values outside [min, max] are range errors.
func coerceToInt64(s string, min, max int64) (int64, error) {
	// Try integer first
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < min || n > max {
			return 0, fmt.Errorf("%w: %d", wire.ErrNumericRange, n)
		}
		return n, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %s", wire.ErrNumericRange, s)
	}

	// Fallback: parse as float and check integral
	if !isDecimal(s) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrShapeMismatch, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", wire.ErrNumericRange, s)
		}
		return 0, fmt.Errorf("%w: %q is not a number", ErrShapeMismatch, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s is not an integer", wire.ErrNumericRange, s)
	}
	if f < float64(min) || f > float64(max) {
		return 0, fmt.Errorf("%w: %s", wire.ErrNumericRange, s)
	}
	return int64(f), nil
}

// coerceToUint64 is coerceToInt64 for unsigned fields.
func coerceToUint64(s string, max uint64) (uint64, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n > max {
			return 0, fmt.Errorf("%w: %d", wire.ErrNumericRange, n)
		}
		return n, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %s", wire.ErrNumericRange, s)
	}

	// negative integers and exponent forms end up here
	n, err := coerceToInt64(s, 0, int64(max))
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// coerceToFloat64 parses a double, accepting the names of the non-finite values.
func coerceToFloat64(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	if !isDecimal(s) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrShapeMismatch, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", wire.ErrNumericRange, s)
		}
		return 0, fmt.Errorf("%w: %q is not a number", ErrShapeMismatch, s)
	}
	return f, nil
}
