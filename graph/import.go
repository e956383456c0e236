package graph

import (
	"fmt"
	"strings"

	"github.com/amapara27/silicon-edge-ai-compiler/external/compiler"
)

type opMapping struct {
	nodeType  string
	label     string
	layerKind string
}

// opTypeMap maps ONNX operator types to editor node kinds and labels.
var opTypeMap = map[string]opMapping{
	"Gemm":   {NodeTypeLayer, "Dense", "dense"},
	"MatMul": {NodeTypeLayer, "Dense", "dense"},

	"Conv": {NodeTypeLayer, "Conv2D", "conv2d"},

	"Relu":    {NodeTypeLayer, "ReLU", "relu"},
	"Sigmoid": {NodeTypeLayer, "Sigmoid", "relu"},
	"Tanh":    {NodeTypeLayer, "Tanh", "relu"},
	"Softmax": {NodeTypeLayer, "Softmax", "softmax"},

	"BatchNormalization": {NodeTypeLayer, "BatchNorm", "dense"},
	"MaxPool":            {NodeTypeLayer, "MaxPool", "dense"},
	"AveragePool":        {NodeTypeLayer, "AvgPool", "dense"},
	"GlobalAveragePool":  {NodeTypeLayer, "GlobalAvgPool", "dense"},

	"Flatten": {NodeTypeLayer, "Flatten", "dense"},
	"Dropout": {NodeTypeLayer, "Dropout", "dense"},
	"Add":     {NodeTypeLayer, "Add", "dense"},
	"Concat":  {NodeTypeLayer, "Concat", "dense"},
	"Reshape": {NodeTypeLayer, "Reshape", "dense"},
}

var defaultOp = opMapping{NodeTypeLayer, "Layer", "dense"}

const (
	horizontalSpacing = 250.0
	verticalCenter    = 200.0
	leftMargin        = 100.0
)

// FromModelInfo synthesizes an editable graph for a model that was imported
// without a saved layout: one input node, one node per layer laid out left to
// right, one output node, sequentially connected.
func FromModelInfo(info *compiler.ModelInfo) Graph {
	if info == nil {
		return Empty()
	}
	nodes := make([]Node, 0, len(info.Layers)+2)

	if len(info.Inputs) > 0 {
		nodes = append(nodes, Node{
			Id:       "input-0",
			Type:     NodeTypeInput,
			Position: Position{X: leftMargin, Y: verticalCenter},
			Data: map[string]interface{}{
				"label": "Input",
				"type":  "input",
				"shape": shapeString(info.Inputs[0].Shape),
			},
		})
	}

	for idx, layer := range info.Layers {
		op, ok := opTypeMap[layer.OpType]
		if !ok {
			op = defaultOp
		}
		y := verticalCenter
		if idx%2 != 0 {
			y += 50 // slight vertical offset, purely cosmetic
		}
		nodes = append(nodes, Node{
			Id:       fmt.Sprintf("layer-%d", idx),
			Type:     op.nodeType,
			Position: Position{X: leftMargin + horizontalSpacing*float64(idx+1), Y: y},
			Data: map[string]interface{}{
				"label": op.label,
				"type":  op.layerKind,
			},
		})
	}

	if len(info.Outputs) > 0 {
		nodes = append(nodes, Node{
			Id:       "output-0",
			Type:     NodeTypeOutput,
			Position: Position{X: leftMargin + horizontalSpacing*float64(len(info.Layers)+1), Y: verticalCenter},
			Data: map[string]interface{}{
				"label": "Output",
				"type":  "output",
				"shape": shapeString(info.Outputs[0].Shape),
			},
		})
	}

	return Graph{
		Nodes: nodes,
		Edges: sequentialEdges(nodes),
	}
}

func sequentialEdges(nodes []Node) []Edge {
	edges := make([]Edge, 0, len(nodes))
	for i := 0; i+1 < len(nodes); i++ {
		edges = append(edges, Edge{
			Id:       fmt.Sprintf("e-%s-%s", nodes[i].Id, nodes[i+1].Id),
			Source:   nodes[i].Id,
			Target:   nodes[i+1].Id,
			Animated: true,
		})
	}
	return edges
}

func shapeString(shape []interface{}) string {
	parts := make([]string, 0, len(shape))
	for _, dim := range shape {
		parts = append(parts, fmt.Sprintf("%v", dim))
	}
	return strings.Join(parts, ", ")
}
