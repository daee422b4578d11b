package contracts

import (
	"encoding/json"
	"math"
)

// Float is an optional float64. The zero value is missing.
// Missing is distinct from zero everywhere in the pipeline: a factor that
// cannot be computed stays missing and is never silently treated as 0.
type Float struct {
	Float64 float64
	Valid   bool
}

// FloatFrom returns a present Float. Non-finite inputs collapse to missing
// so NaN/Inf can never leak into persisted rows or serialized payloads.
func FloatFrom(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Float64: v, Valid: true}
}

// Missing returns an absent Float.
func Missing() Float {
	return Float{}
}

// Neg negates a present value and passes missing through.
func (f Float) Neg() Float {
	if !f.Valid {
		return f
	}
	return FloatFrom(-f.Float64)
}

// Or returns the value when present, otherwise def.
func (f Float) Or(def float64) float64 {
	if f.Valid {
		return f.Float64
	}
	return def
}

// Equal compares two Floats for exact equality, treating missing == missing.
func (f Float) Equal(other Float) bool {
	if f.Valid != other.Valid {
		return false
	}
	return !f.Valid || f.Float64 == other.Float64
}

// MarshalJSON encodes missing as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON decodes null as missing.
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

// MeanPresent averages the present values, returning missing when none are.
func MeanPresent(values ...Float) Float {
	sum := 0.0
	n := 0
	for _, v := range values {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return Missing()
	}
	return FloatFrom(sum / float64(n))
}
