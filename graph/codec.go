package graph

import (
	"encoding/json"
)

// Encode serializes the graph to the JSON document stored alongside a saved
// model. Nil slices encode as empty arrays so a decoded document always has
// both keys.
func Encode(g Graph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return json.Marshal(g)
}

// Decode parses a stored graph document. A malformed document, whatever the
// reason, yields the empty graph: the caller treats a broken layout as "no
// saved layout", never as a fatal error.
func Decode(data []byte) Graph {
	if len(data) == 0 {
		return Empty()
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Empty()
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g
}
