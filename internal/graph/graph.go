// Package graph compiles a module sequence into a directed dependency graph
// of nodes and typed edges for visualization and editing.
//
// Compilation is read-only and deterministic: the same sequence always
// yields the same node and edge sets, and edge identifiers are derived from
// their endpoints so recompilation is idempotent.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/rockiq/internal/nameref"
	"github.com/vk/rockiq/internal/record"
)

// ErrInvalidSequence reports a sequence whose record list is not list-shaped.
var ErrInvalidSequence = errors.New("invalid sequence: record list is not a list")

// EdgeType distinguishes the two edge families the compiler emits.
type EdgeType string

const (
	// EdgeSameClass links consecutive occurrences of the same class into a
	// forward chain (a pipeline per class, not a complete graph).
	EdgeSameClass EdgeType = "same_class"
	// EdgeInput links a producer record to a consumer that references one of
	// its outputs through a ref_* parameter.
	EdgeInput EdgeType = "input"
)

// Node is the compiled view of one record. Index equals the record's
// position at compile time and is invalidated by any structural edit.
type Node struct {
	Index   int
	Class   string
	Func    string
	Full    string
	Label   string
	Params  *record.Fields
	Outputs []string
}

// Edge connects two nodes by index. Source is always strictly less than
// Target for input edges; same-class edges follow sequence order as well.
type Edge struct {
	ID     string
	Source int
	Target int
	Label  string
	Type   EdgeType
}

// Graph is the derived, non-persisted result of compiling one sequence.
type Graph struct {
	Nodes []*Node
	Edges []*Edge
}

// Compile turns an ordered record list into nodes and edges. Dangling
// references produce no edge and no error; malformed ref_* values are
// ignored per field.
func Compile(seq *record.Sequence) (*Graph, error) {
	if seq == nil || seq.Records == nil {
		return nil, ErrInvalidSequence
	}

	g := &Graph{Nodes: make([]*Node, 0, len(seq.Records))}
	outputs := make([]map[string]struct{}, len(seq.Records))
	lastOfClass := make(map[string]int)

	// First pass: one node per record, plus the same-class chain.
	for i, rec := range seq.Records {
		full := rec.Module()
		rawModule, _ := rec.Get(record.KeyModule)
		cls, fn := nameref.SplitValue(rawModule)
		label := fn
		if cls != "" {
			label = fmt.Sprintf("%s\n[%s]", fn, cls)
		}
		g.Nodes = append(g.Nodes, &Node{
			Index:  i,
			Class:  cls,
			Func:   fn,
			Full:   full,
			Label:  label,
			Params: rec.Params(),
		})

		outputs[i] = make(map[string]struct{})
		for _, name := range rec.ExplicitOutputs() {
			outputs[i][name] = struct{}{}
		}

		if cls != "" {
			if prev, ok := lastOfClass[cls]; ok {
				g.Edges = append(g.Edges, &Edge{
					ID:     fmt.Sprintf("sc%d_%d", prev, i),
					Source: prev,
					Target: i,
					Type:   EdgeSameClass,
				})
			}
			lastOfClass[cls] = i
		}
	}

	// Second pass: input edges from ref_* parameters, and output discovery
	// on the producers they resolve to.
	ix := nameref.BuildIndex(seq.Records)
	for i, rec := range seq.Records {
		for _, ref := range rec.Refs() {
			res := ix.Resolve(i, ref.Module)
			if !res.Resolved {
				continue
			}
			g.Edges = append(g.Edges, &Edge{
				ID:     fmt.Sprintf("e%d_%d_%s", res.Index, i, ref.Field),
				Source: res.Index,
				Target: i,
				Label:  ref.Name,
				Type:   EdgeInput,
			})
			outputs[res.Index][ref.Name] = struct{}{}
		}
	}

	// Attach sorted, de-duplicated output names.
	for i, node := range g.Nodes {
		if len(outputs[i]) == 0 {
			continue
		}
		names := make([]string, 0, len(outputs[i]))
		for name := range outputs[i] {
			names = append(names, name)
		}
		slices.Sort(names)
		node.Outputs = names
	}

	return g, nil
}
