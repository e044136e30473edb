package httpapi

import (
	"fmt"

	"github.com/vk/rockiq/internal/graph"
	"github.com/vk/rockiq/internal/record"
)

// The wire shapes match the element format the original editing surface
// consumes: nodes and edges wrapped in a "data" envelope, node ids of the
// form "n<index>".

type wireElement struct {
	Data any `json:"data"`
}

type wireNode struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Index   int            `json:"index"`
	Class   string         `json:"cls"`
	Func    string         `json:"func"`
	Full    string         `json:"full"`
	Params  *record.Fields `json:"params"`
	Outputs []string       `json:"outputs"`
}

type wireEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Type   string `json:"edge_type"`
}

type wireGraphBody struct {
	Nodes []wireElement `json:"nodes"`
	Edges []wireElement `json:"edges"`
}

func wireGraph(g *graph.Graph) wireGraphBody {
	body := wireGraphBody{Nodes: []wireElement{}, Edges: []wireElement{}}
	for _, n := range g.Nodes {
		body.Nodes = append(body.Nodes, wireElement{Data: wireNode{
			ID:      fmt.Sprintf("n%d", n.Index),
			Label:   n.Label,
			Index:   n.Index,
			Class:   n.Class,
			Func:    n.Func,
			Full:    n.Full,
			Params:  n.Params,
			Outputs: n.Outputs,
		}})
	}
	for _, e := range g.Edges {
		body.Edges = append(body.Edges, wireElement{Data: wireEdge{
			ID:     e.ID,
			Source: fmt.Sprintf("n%d", e.Source),
			Target: fmt.Sprintf("n%d", e.Target),
			Label:  e.Label,
			Type:   string(e.Type),
		}})
	}
	return body
}
