package types

import (
	"fmt"
	"strings"
)

const (
	ModelObjectName = "model.bin"
	AuxObjectName   = "model.aux"
	GraphObjectName = "graph.json"
)

// Object keys are never reused across model ids, even across versions of
// the same model name.

func GetModelObjectKey(owner, modelID string) string {
	return fmt.Sprintf("%s/%s/%s", owner, modelID, ModelObjectName)
}

func GetAuxObjectKey(owner, modelID string) string {
	return fmt.Sprintf("%s/%s/%s", owner, modelID, AuxObjectName)
}

func GetGraphObjectKey(owner, modelID string) string {
	return fmt.Sprintf("%s/%s/%s", owner, modelID, GraphObjectName)
}

func ParseObjectKey(key string) (owner string, modelID string, objectName string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid object key %s", key)
	}
	return parts[0], parts[1], parts[2], nil
}
