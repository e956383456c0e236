package graph

// Node kinds understood by the editor front end.
const (
	NodeTypeInput  = "inputNode"
	NodeTypeLayer  = "layerNode"
	NodeTypeOutput = "outputNode"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one editable block on the canvas. Data holds the layer
// configuration; keys the service does not recognize are carried through
// untouched so newer front ends can round-trip their own fields.
type Node struct {
	Id       string                 `json:"id"`
	Type     string                 `json:"type"`
	Position Position               `json:"position"`
	Data     map[string]interface{} `json:"data"`
}

type Edge struct {
	Id       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func Empty() Graph {
	return Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}
}

func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}
