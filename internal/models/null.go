package models

import (
	"encoding/json"
	"math"
)

// NullFloat64 is a float64 that may be undefined. Undefined values encode as
// JSON null.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

func Float(v float64) NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat64{}
	}
	return NullFloat64{Float64: v, Valid: true}
}

// Value returns the float and nil, or nil when undefined. Used for tabular
// exports where an empty cell stands for "no value".
func (n NullFloat64) Value() any {
	if !n.Valid {
		return nil
	}
	return n.Float64
}

func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat64{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
