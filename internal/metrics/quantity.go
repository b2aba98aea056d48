package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// unit is a quantity suffix and the factor it scales the magnitude by.
type unit struct {
	suffix string
	factor float64
}

// memoryUnits is checked in order, first match wins. Binary suffixes come
// before their decimal counterparts so "5Ki" is never read as "5K" + "i".
var memoryUnits = []unit{
	{"Ki", 1 << 10},
	{"Mi", 1 << 20},
	{"Gi", 1 << 30},
	{"Ti", 1 << 40},
	{"K", 1e3},
	{"M", 1e6},
	{"G", 1e9},
	{"T", 1e12},
}

// QuantityError reports a quantity string whose magnitude is not a float literal.
type QuantityError struct {
	Quantity string
	Err      error
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %q: %v", e.Quantity, e.Err)
}

func (e *QuantityError) Unwrap() error { return e.Err }

// ParseQuantity returns the value of a quantity string in base units:
// cores for CPU quantities and bytes for memory quantities.
func ParseQuantity(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	switch {
	case strings.HasSuffix(s, "m"):
		v, err := parseMagnitude(s, len(s)-1)
		return v / 1e3, err
	case strings.HasSuffix(s, "n"):
		v, err := parseMagnitude(s, len(s)-1)
		return v / 1e9, err
	}

	for _, u := range memoryUnits {
		if strings.HasSuffix(s, u.suffix) {
			v, err := parseMagnitude(s, len(s)-len(u.suffix))
			return v * u.factor, err
		}
	}

	return parseMagnitude(s, len(s))
}

// MustParseQuantity is ParseQuantity for literals known to be valid. It panics otherwise.
func MustParseQuantity(s string) float64 {
	v, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseMagnitude(s string, end int) (float64, error) {
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, &QuantityError{Quantity: s, Err: err}
	}
	return v, nil
}
