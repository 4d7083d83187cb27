package dto

import (
	"bytes"
	"encoding/json"
)

// NullableInt64 tells an absent JSON field apart from an explicit null.
type NullableInt64 struct {
	Set   bool
	Valid bool
	Value int64
}

// UnmarshalJSON marks the field as present; null leaves Valid false.
func (n *NullableInt64) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		n.Value = 0
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value, or nil for null and absent fields.
func (n NullableInt64) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
