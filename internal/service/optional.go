package service

import (
	"bytes"
	"encoding/json"
)

// OptionalString records whether a JSON key was present. An absent key leaves
// Set false; an explicit null sets it with a nil Value.
type OptionalString struct {
	Set   bool
	Value *string
}

// SetString returns a present OptionalString holding s.
func SetString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// ClearString returns a present OptionalString holding null.
func ClearString() OptionalString {
	return OptionalString{Set: true}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
