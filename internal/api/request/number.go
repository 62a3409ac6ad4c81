package request

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/edvin/drtrack/internal/model"
)

// Int accepts a JSON number or a numeric string. Values that cannot be
// coerced leave it unset instead of failing the request.
type Int struct {
	Value int64
	Set   bool
}

func (n *Int) UnmarshalJSON(b []byte) error {
	var raw any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err := d.Decode(&raw); err != nil {
		return err
	}
	n.Value, n.Set = model.CoerceInt(raw)
	return nil
}

// IntPtr returns the value as *int, nil when unset or out of range.
func (n Int) IntPtr() *int {
	if !n.Set || n.Value > math.MaxInt32 || n.Value < math.MinInt32 {
		return nil
	}
	v := int(n.Value)
	return &v
}

// Int64Ptr returns the value as *int64, nil when unset.
func (n Int) Int64Ptr() *int64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// Float accepts a JSON number or a numeric string, like Int.
type Float struct {
	Value float64
	Set   bool
}

func (n *Float) UnmarshalJSON(b []byte) error {
	var raw any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err := d.Decode(&raw); err != nil {
		return err
	}
	n.Value, n.Set = model.CoerceFloat(raw)
	return nil
}

// Ptr returns the value as *float64, nil when unset.
func (n Float) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}
