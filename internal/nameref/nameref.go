// Package nameref resolves dotted module identifiers and loose references
// between records in a sequence.
//
// Consumers reference producers by bare function name, which may collide
// across classes. Resolution picks the most recent producer strictly before
// the consumer, because sequences are pipelines and the nearest prior
// producer is the intended one.
package nameref

import (
	"fmt"
	"strings"

	"github.com/vk/rockiq/internal/record"
)

// Split breaks a full module identifier into class and function. For a
// dotted name the class is the text before the first dot and the function is
// the text after the last dot; a bare name has no class.
func Split(full string) (cls, fn string) {
	if !strings.Contains(full, ".") {
		return "", full
	}
	cls = full[:strings.Index(full, ".")]
	fn = full[strings.LastIndex(full, ".")+1:]
	return cls, fn
}

// SplitValue splits a module identifier that may not be a string. Non-string
// values are stringified and returned whole as the function with an empty
// class, even when the stringified form happens to contain a dot.
func SplitValue(v any) (cls, fn string) {
	switch t := v.(type) {
	case nil:
		return "", ""
	case string:
		return Split(t)
	default:
		return "", fmt.Sprint(t)
	}
}

// Index maps function names to the ascending record indices where they
// appear. It is built once per compile and is read-only afterwards.
type Index struct {
	byFunc map[string][]int
}

// BuildIndex scans the records once and indexes them by function name.
func BuildIndex(records []*record.Record) *Index {
	ix := &Index{byFunc: make(map[string][]int)}
	for i, rec := range records {
		v, _ := rec.Get(record.KeyModule)
		_, fn := SplitValue(v)
		ix.byFunc[fn] = append(ix.byFunc[fn], i)
	}
	return ix
}

// Resolution is the outcome of resolving a reference. A dangling reference
// is not an error: editing workflows routinely hold references to records
// that do not exist yet, so callers need to tell unresolved apart from a
// failure.
type Resolution struct {
	Index    int
	Resolved bool
}

// Unresolved is the zero resolution with an invalid index.
var Unresolved = Resolution{Index: -1}

// Resolve finds the producer a reference points at: the latest index before
// current whose function matches target exactly, falling back to the text
// after target's last dot when the exact name is absent.
func (ix *Index) Resolve(current int, target string) Resolution {
	if r := ix.latestBefore(current, target); r.Resolved {
		return r
	}
	if i := strings.LastIndex(target, "."); i >= 0 {
		return ix.latestBefore(current, target[i+1:])
	}
	return Unresolved
}

func (ix *Index) latestBefore(current int, fn string) Resolution {
	best := Unresolved
	for _, idx := range ix.byFunc[fn] {
		if idx >= current {
			break // indices are ascending
		}
		best = Resolution{Index: idx, Resolved: true}
	}
	return best
}
