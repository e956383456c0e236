package compiler

// TensorInfo describes a model input or output. Shape entries are either
// numbers or symbolic dimension names (e.g. "batch"), so they stay untyped.
type TensorInfo struct {
	Name  string        `json:"name"`
	Shape []interface{} `json:"shape"`
	Dtype int           `json:"dtype"`
}

type LayerInfo struct {
	Name    string   `json:"name"`
	OpType  string   `json:"op_type"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

type WeightInfo struct {
	Name  string  `json:"name"`
	Shape []int64 `json:"shape"`
	Dtype string  `json:"dtype"`
	Size  int64   `json:"size"`
}

// ModelInfo is the summary the compiler service extracts from an uploaded
// ONNX model.
type ModelInfo struct {
	Inputs          []TensorInfo `json:"inputs"`
	Outputs         []TensorInfo `json:"outputs"`
	Operators       []string     `json:"operators"`
	Layers          []LayerInfo  `json:"layers"`
	IRVersion       int64        `json:"ir_version"`
	ProducerName    string       `json:"producer_name"`
	ModelVersion    int64        `json:"model_version"`
	Weights         []WeightInfo `json:"weights"`
	TotalParameters int64        `json:"total_parameters"`
}

type UploadResponse struct {
	Valid     bool       `json:"valid"`
	Error     string     `json:"error,omitempty"`
	ModelInfo *ModelInfo `json:"model_info,omitempty"`
}

type CompileRequest struct {
	ModelName  string `json:"model_name"`
	TargetChip string `json:"target_chip"`
}

type CompileResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	SourceCode string `json:"source_code,omitempty"`
	HeaderCode string `json:"header_code,omitempty"`
	ModelName  string `json:"model_name,omitempty"`
}

type LayerProfile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Shape       string `json:"shape"`
	ParamCount  int64  `json:"param_count"`
	MemoryBytes int64  `json:"memory_bytes"`
	Flops       int64  `json:"flops"`
}

// ProfileInfo is the resource summary produced by the profiling endpoint for
// one target board.
type ProfileInfo struct {
	RamUsed    int64          `json:"ram_used"`
	RamTotal   int64          `json:"ram_total"`
	FlashUsed  int64          `json:"flash_used"`
	FlashTotal int64          `json:"flash_total"`
	TotalFlops int64          `json:"total_flops"`
	BoardName  string         `json:"board_name"`
	Layers     []LayerProfile `json:"layers"`
}

type ProfileResponse struct {
	Valid     bool         `json:"valid"`
	Error     string       `json:"error,omitempty"`
	ModelInfo *ProfileInfo `json:"model_info,omitempty"`
}
