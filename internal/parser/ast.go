package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a parsed workout file.
type Document struct {
	Metadata  Metadata   `json:"metadata"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is one "# Name" or "& Name" block with its set lines.
//
// Sequence advances for every primary exercise; Subsequence counts superset
// continuations within the same sequence number. LineStart and LineEnd are
// the 1-based source lines of the header and the last set line.
type Exercise struct {
	Name        string `json:"name"`
	Sequence    int    `json:"sequence"`
	Subsequence int    `json:"subsequence"`
	Superset    bool   `json:"superset"`
	Sets        []Set  `json:"sets"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
}

// Set is one set line. Every field is optional.
type Set struct {
	Weight      *Weight   `json:"weight,omitempty"`
	Reps        []int     `json:"reps,omitempty"`
	RPE         *float64  `json:"rpe,omitempty"`
	Distance    *Distance `json:"distance,omitempty"`
	Time        *Duration `json:"time,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
	RepeatCount int       `json:"sets,omitempty"`
}

// Weight is a bare number, bodyweight, or a number with a weight unit.
type Weight struct {
	Value      float64
	Unit       string
	Bodyweight bool
}

// Bodyweight is the weight value for "bw".
var Bodyweight = Weight{Bodyweight: true}

func (w Weight) String() string {
	switch {
	case w.Bodyweight:
		return "bw"
	case w.Unit == "":
		return formatNumber(w.Value)
	}
	return formatNumber(w.Value) + w.Unit
}

// MarshalJSON renders bodyweight as "bw", a bare weight as a number, and a
// weight with a unit as {"value": n, "unit": u}.
func (w Weight) MarshalJSON() ([]byte, error) {
	switch {
	case w.Bodyweight:
		return []byte(`"bw"`), nil
	case w.Unit == "":
		return json.Marshal(w.Value)
	}
	return json.Marshal(struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	}{w.Value, w.Unit})
}

// UnmarshalJSON accepts the three shapes produced by MarshalJSON.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "bw" {
			return fmt.Errorf("unknown weight %q", s)
		}
		*w = Bodyweight
		return nil
	case len(data) > 0 && data[0] == '{':
		var v struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*w = Weight{Value: v.Value, Unit: v.Unit}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*w = Weight{Value: f}
	return nil
}

// Distance is a number with a distance unit.
type Distance struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Duration is a time literal such as 1:30 or 1:30:00.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TotalSeconds returns the duration in seconds.
func (d Duration) TotalSeconds() int {
	return d.Hours*3600 + d.Minutes*60 + d.Seconds
}

// Tag is a {key} or {key: value} annotation. Value is nil, a float64 or a
// string.
type Tag struct {
	Key   string `json:"key"`
	Value any    `json:"value,omitempty"`
}

// MetadataField is a single front-matter entry. Value is a string, float64
// or bool.
type MetadataField struct {
	Key   string
	Value any
}

// Metadata is the ordered front-matter of a document.
type Metadata []MetadataField

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the value under key if it is a string.
func (m Metadata) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Len returns the number of fields.
func (m Metadata) Len() int { return len(m) }

// Keys returns the keys in document order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// MarshalJSON encodes the metadata as an object, preserving key order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, preserving key order.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected object")
	}
	out := Metadata{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		out = append(out, MetadataField{Key: key, Value: v})
	}
	*m = out
	return nil
}
