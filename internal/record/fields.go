// Package record defines the data model for module sequences: an ordered
// list of loosely-typed module records, each naming a "Class.Function" and
// carrying arbitrary parameters.
//
// Field order inside a record is semantically meaningful to the backing
// document (it is what the user wrote), so records are modeled as an
// insertion-ordered map rather than a plain Go map. Order survives YAML and
// JSON round trips.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Fields is a string-keyed map that preserves insertion order. Setting an
// existing key keeps its position; setting a new key appends it.
type Fields struct {
	keys []string
	vals map[string]any
}

// NewFields returns an empty ordered field map.
func NewFields() *Fields {
	return &Fields{vals: make(map[string]any)}
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the field names in insertion order. The slice is a copy.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Get returns the value stored under key and whether the key exists.
func (f *Fields) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.vals[key]
	return v, ok
}

// Set stores a value under key, preserving the key's position if it already
// exists and appending it otherwise.
func (f *Fields) Set(key string, value any) {
	if f.vals == nil {
		f.vals = make(map[string]any)
	}
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = value
}

// Delete removes a key. Deleting a missing key is a no-op.
func (f *Fields) Delete(key string) {
	if f == nil {
		return
	}
	if _, ok := f.vals[key]; !ok {
		return
	}
	delete(f.vals, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the field map. Nested maps and slices are
// copied; scalar values are shared (they are immutable).
func (f *Fields) Clone() *Fields {
	if f == nil {
		return NewFields()
	}
	out := NewFields()
	for _, k := range f.keys {
		out.Set(k, cloneValue(f.vals[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case *Fields:
		return t.Clone()
	default:
		return v
	}
}

// UnmarshalYAML decodes a YAML mapping node, keeping its key order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %s", yamlKindName(node.Kind))
	}
	f.keys = nil
	f.vals = make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("decoding mapping key: %w", err)
		}
		var val any
		if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("decoding value for %q: %w", key, err)
		}
		f.Set(key, val)
	}
	return nil
}

// MarshalYAML encodes the field map as a mapping node in insertion order.
func (f *Fields) MarshalYAML() (any, error) {
	return f.YAMLNode()
}

// YAMLNode builds the ordered mapping node used both for marshalling and for
// splicing records back into a retained document tree.
func (f *Fields) YAMLNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if f == nil {
		return node, nil
	}
	for _, k := range f.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(f.vals[k]); err != nil {
			return nil, fmt.Errorf("encoding value for %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// MarshalJSON encodes the field map as a JSON object in insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if f != nil {
		for i, k := range f.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			valJSON, err := json.Marshal(f.vals[k])
			if err != nil {
				return nil, fmt.Errorf("encoding value for %q: %w", k, err)
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			buf.Write(valJSON)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object. Go's JSON decoder does not expose key
// order, so keys are stored in the decoder's map order; callers that care
// about order should normalize afterwards.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.keys = nil
	f.vals = make(map[string]any, len(raw))
	for k, v := range raw {
		f.Set(k, v)
	}
	return nil
}

func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
