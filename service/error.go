package service

import (
	"errors"
	"fmt"
)

// Verify Interface Compliance
var _ error = (*Err)(nil)

// Err defines service errors.
type Err struct {
	Code    int64  `json:"code"`
	Message string `json:"error"`
}

func (e Err) Enrich(message string) Err {
	return Err{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, message),
	}
}

func (e Err) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Is lets enriched errors still match their taxonomy value with errors.Is.
func (e Err) Is(target error) bool {
	var t Err
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrUnauthenticated  = Err{Code: 401, Message: "not authenticated"}
	ErrEmptyName        = Err{Code: 400, Message: "model name is required"}
	ErrMissingModelFile = Err{Code: 400, Message: "model file is required"}
	ErrModelNotFound    = Err{Code: 404, Message: "model not found"}
	ErrBlobTransfer     = Err{Code: 502, Message: "blob transfer failed"}
	ErrRecordStore      = Err{Code: 500, Message: "record store failure"}
)
