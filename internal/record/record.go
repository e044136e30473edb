package record

import (
	"fmt"
	"strings"
)

// Reserved field names inside a module record.
const (
	// KeyModule names the record's "Class.Function" identifier.
	KeyModule = "module"
	// KeyOutputs declares output names the record explicitly produces.
	KeyOutputs = "outputs"
	// RefPrefix marks a parameter as an input reference to an earlier record.
	RefPrefix = "ref_"
)

// Record is one entry in a module sequence: a module identifier plus an
// ordered set of parameters.
type Record struct {
	Fields
}

// New returns an empty record.
func New() *Record {
	return &Record{Fields: *NewFields()}
}

// FromFields builds a record that takes ownership of a deep copy of fields.
// A nil fields argument yields an empty record.
func FromFields(fields *Fields) *Record {
	return &Record{Fields: *fields.Clone()}
}

// Module returns the record's full module identifier. A non-string value is
// stringified; a missing field yields "".
func (r *Record) Module() string {
	v, ok := r.Get(KeyModule)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Params returns a deep copy of every field except the module identifier,
// preserving order. This is the parameter map shown to editing surfaces.
func (r *Record) Params() *Fields {
	out := NewFields()
	for _, k := range r.Fields.Keys() {
		if k == KeyModule {
			continue
		}
		v, _ := r.Get(k)
		out.Set(k, cloneValue(v))
	}
	return out
}

// ExplicitOutputs returns the keys of a map-valued "outputs" field, in no
// particular order. A missing or non-map field yields nil.
func (r *Record) ExplicitOutputs() []string {
	v, ok := r.Get(KeyOutputs)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Ref is an input reference extracted from a ref_* parameter.
type Ref struct {
	Field  string // the originating parameter name, e.g. "ref_image"
	Module string // the referenced function name, possibly dotted
	Name   string // the output name to pull from the producer
}

// Refs returns the record's well-formed input references in field order.
// Only ref_* fields whose value is a map carry reference semantics; anything
// else is silently skipped.
func (r *Record) Refs() []Ref {
	var refs []Ref
	for _, k := range r.Fields.Keys() {
		if !strings.HasPrefix(k, RefPrefix) {
			continue
		}
		v, _ := r.Get(k)
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		refs = append(refs, Ref{
			Field:  k,
			Module: stringify(m["module"]),
			Name:   stringify(m["name"]),
		})
	}
	return refs
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	return &Record{Fields: *r.Fields.Clone()}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Sequence is an ordered list of records owned by a backing document.
// Order is the only notion of earlier/later used by reference resolution,
// and a record's position doubles as its identity within the sequence.
type Sequence struct {
	ID      int
	Name    string
	Records []*Record
}

// Info is the listing view of a sequence, without its records.
type Info struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}
