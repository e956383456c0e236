package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amapara27/silicon-edge-ai-compiler/external/compiler"
)

func sampleModelInfo() *compiler.ModelInfo {
	return &compiler.ModelInfo{
		Inputs: []compiler.TensorInfo{
			{Name: "input", Shape: []interface{}{float64(1), float64(28), float64(28)}},
		},
		Outputs: []compiler.TensorInfo{
			{Name: "output", Shape: []interface{}{float64(1), float64(10)}},
		},
		Layers: []compiler.LayerInfo{
			{Name: "fc1", OpType: "Gemm"},
			{Name: "act1", OpType: "Relu"},
			{Name: "fc2", OpType: "Gemm"},
			{Name: "probs", OpType: "Softmax"},
		},
		TotalParameters: 101770,
	}
}

func TestFromModelInfo(t *testing.T) {
	g := FromModelInfo(sampleModelInfo())

	// input + 4 layers + output, sequentially connected
	require.Len(t, g.Nodes, 6)
	require.Len(t, g.Edges, 5)

	require.Equal(t, "input-0", g.Nodes[0].Id)
	require.Equal(t, NodeTypeInput, g.Nodes[0].Type)
	require.Equal(t, "1, 28, 28", g.Nodes[0].Data["shape"])

	require.Equal(t, "layer-0", g.Nodes[1].Id)
	require.Equal(t, "Dense", g.Nodes[1].Data["label"])
	require.Equal(t, "ReLU", g.Nodes[2].Data["label"])
	require.Equal(t, "Softmax", g.Nodes[4].Data["label"])

	require.Equal(t, "output-0", g.Nodes[5].Id)
	require.Equal(t, NodeTypeOutput, g.Nodes[5].Type)

	for i, e := range g.Edges {
		require.Equal(t, g.Nodes[i].Id, e.Source)
		require.Equal(t, g.Nodes[i+1].Id, e.Target)
		require.True(t, e.Animated)
	}
}

func TestFromModelInfoLaysNodesLeftToRight(t *testing.T) {
	g := FromModelInfo(sampleModelInfo())
	for i := 1; i < len(g.Nodes); i++ {
		require.Greater(t, g.Nodes[i].Position.X, g.Nodes[i-1].Position.X)
	}
}

func TestFromModelInfoUnknownOperator(t *testing.T) {
	info := &compiler.ModelInfo{
		Inputs:  []compiler.TensorInfo{{Name: "in", Shape: []interface{}{float64(1)}}},
		Outputs: []compiler.TensorInfo{{Name: "out", Shape: []interface{}{float64(1)}}},
		Layers:  []compiler.LayerInfo{{Name: "mystery", OpType: "SomeFutureOp"}},
	}
	g := FromModelInfo(info)
	require.Len(t, g.Nodes, 3)
	require.Equal(t, "Layer", g.Nodes[1].Data["label"])
	require.Equal(t, NodeTypeLayer, g.Nodes[1].Type)
}

func TestFromModelInfoNil(t *testing.T) {
	require.Equal(t, Empty(), FromModelInfo(nil))
}

func TestFromModelInfoRoundTripsThroughCodec(t *testing.T) {
	g := FromModelInfo(sampleModelInfo())
	doc, err := Encode(g)
	require.NoError(t, err)
	require.Equal(t, g, Decode(doc))
}
