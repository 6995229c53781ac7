package types

import (
	"bytes"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field is one named value of a Mapping. A nil Value means the service sent
// null for the key.
type Field struct {
	Name  string
	Value *string
}

// Mapping is a JSON object of string|null values that remembers the order
// its keys were received in.
type Mapping []Field

// Get returns the value for name. The second result is false when the key
// is absent.
func (m Mapping) Get(name string) (*string, bool) {
	for _, f := range m {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the keys in order.
func (m Mapping) Names() []string {
	names := make([]string, len(m))
	for i, f := range m {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON writes the keys in slice order. A nil Mapping encodes as null.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	om := orderedmap.New[string, *string]()
	for _, f := range m {
		om.Set(f.Name, f.Value)
	}
	return om.MarshalJSON()
}

// UnmarshalJSON keeps the key order of the object as received. An empty
// object yields an empty, non-nil Mapping; null yields nil.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	om := orderedmap.New[string, *string]()
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}

	out := make(Mapping, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Field{Name: pair.Key, Value: pair.Value})
	}
	*m = out
	return nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
