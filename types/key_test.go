package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectKeys(t *testing.T) {
	owner := "user-1"
	modelID := "7f9c37a2-4f2e-4f86-9d3c-0b2f6f3a1e55"

	require.Equal(t, "user-1/7f9c37a2-4f2e-4f86-9d3c-0b2f6f3a1e55/model.bin", GetModelObjectKey(owner, modelID))
	require.Equal(t, "user-1/7f9c37a2-4f2e-4f86-9d3c-0b2f6f3a1e55/model.aux", GetAuxObjectKey(owner, modelID))
	require.Equal(t, "user-1/7f9c37a2-4f2e-4f86-9d3c-0b2f6f3a1e55/graph.json", GetGraphObjectKey(owner, modelID))
}

func TestParseObjectKey(t *testing.T) {
	owner, modelID, objectName, err := ParseObjectKey("user-1/abc/model.bin")
	require.NoError(t, err)
	require.Equal(t, "user-1", owner)
	require.Equal(t, "abc", modelID)
	require.Equal(t, ModelObjectName, objectName)

	_, _, _, err = ParseObjectKey("not-a-key")
	require.Error(t, err)
	_, _, _, err = ParseObjectKey("a/b/c/d")
	require.Error(t, err)
}
