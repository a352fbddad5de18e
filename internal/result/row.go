package result

import (
	"bytes"
	"encoding/json"
)

// Field is a single named value within a Row.
type Field struct {
	Key   string
	Value any
}

// Row is an ordered set of fields. Field order is the order in which the
// extractor encountered them and is preserved through merge, filter and
// export so that repeated runs produce byte-identical output.
//
// Values are scalars (string, int, int64, float64, bool, nil) or nested
// lists ([]string, []Row).
type Row []Field

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value under key when it is a string.
func (r Row) String(key string) string {
	v, _ := r.Get(key)
	s, _ := v.(string)
	return s
}

// Set replaces the value under key or appends a new field.
func (r *Row) Set(key string, value any) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// Keys lists field names in order.
func (r Row) Keys() []string {
	out := make([]string, 0, len(r))
	for _, f := range r {
		out = append(out, f.Key)
	}
	return out
}

// Clone returns a shallow copy safe to mutate with Set.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Prepend returns a copy of r with key/value as the first field.
func (r Row) Prepend(key string, value any) Row {
	out := make(Row, 0, len(r)+1)
	out = append(out, Field{Key: key, Value: value})
	for _, f := range r {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON encodes the row as a JSON object with keys in field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
