package types

import (
	"encoding/json"
	"fmt"
)

// IDField is the record field that carries a record's decoded key when
// records are listed. It is never stored.
const IDField = "id"

// Record is one stored record: a flat mapping of field name to value.
// Nested values are allowed and treated as opaque.
type Record map[string]any

// Recorder is implemented by entity structs that convert themselves to a
// Record at the storage edge.
type Recorder interface {
	ToRecord() (Record, error)
}

// ID returns the record's id field, or "" when it has none.
func (r Record) ID() string {
	s, _ := r[IDField].(string)
	return s
}

// String returns the named field as a string, or "" when the field is
// missing or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Float returns the named field as a float64. Missing or non-numeric
// fields yield 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToRecord converts v to its storage form. Entity structs, Records, and
// plain maps are all accepted. The result is normalized through JSON so
// that numbers are float64 and nested values are plain maps and slices,
// matching what every backend returns on read. The id field is dropped:
// a record's identity is its key.
func ToRecord(v any) (Record, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidValue)
	}
	if rec, ok := v.(Recorder); ok {
		r, err := rec.ToRecord()
		if err != nil {
			return nil, err
		}
		v = r
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: record must be an object: %v", ErrInvalidValue, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidValue)
	}
	delete(out, IDField)
	return out, nil
}

// Normalize converts an arbitrary value into a JSON-compatible tree.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if rec, ok := v.(Recorder); ok {
		r, err := rec.ToRecord()
		if err != nil {
			return nil, err
		}
		v = r
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return out, nil
}

// Decode fills dst, a pointer to an entity struct, from r.
func Decode(r Record, dst any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

// toRecord is the shared ToRecord body for entity structs.
func toRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	delete(out, IDField)
	return out, nil
}
