package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Float is a nullable float64. Valid is false when the source value was
// absent or failed to parse; invalid values are excluded from sums and
// averages rather than treated as zero.
type Float struct {
	Value float64
	Valid bool
}

// FloatFrom returns a valid Float holding v.
func FloatFrom(v float64) Float {
	return Float{Value: v, Valid: true}
}

// ParseFloat parses s into a Float. Thousands separators are tolerated.
// An empty or unparsable string yields an invalid Float, never an error.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float{}
	}
	return FloatFrom(v)
}

// Mul multiplies two Floats with missing-propagation: the result is
// invalid when either operand is.
func (f Float) Mul(other Float) Float {
	if !f.Valid || !other.Valid {
		return Float{}
	}
	return FloatFrom(f.Value * other.Value)
}

// Or returns the value, or fallback when invalid.
func (f Float) Or(fallback float64) float64 {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

// MarshalJSON encodes invalid values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes null as an invalid Float.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FloatFrom(v)
	return nil
}

// Int is a nullable int64 with the same missing-value semantics as Float.
type Int struct {
	Value int64
	Valid bool
}

// IntFrom returns a valid Int holding v.
func IntFrom(v int64) Int {
	return Int{Value: v, Valid: true}
}

// ParseInt parses s into an Int. Values written as floats ("3.0") are
// accepted when they are whole numbers, matching spreadsheet exports.
func ParseInt(s string) Int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return Int{}
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntFrom(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return Int{}
	}
	return IntFrom(int64(f))
}

// Float converts to a Float, preserving validity.
func (i Int) Float() Float {
	if !i.Valid {
		return Float{}
	}
	return FloatFrom(float64(i.Value))
}

// Or returns the value, or fallback when invalid.
func (i Int) Or(fallback int64) int64 {
	if !i.Valid {
		return fallback
	}
	return i.Value
}

// MarshalJSON encodes invalid values as null.
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

// UnmarshalJSON decodes null as an invalid Int.
func (i *Int) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Int{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = IntFrom(v)
	return nil
}
