package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/amapara27/silicon-edge-ai-compiler/external/compiler"
	"github.com/amapara27/silicon-edge-ai-compiler/graph"
	"github.com/amapara27/silicon-edge-ai-compiler/service"
	"github.com/amapara27/silicon-edge-ai-compiler/types"
)

const (
	headerUserID = "X-User-Id"

	formFieldName       = "name"
	formFieldTargetChip = "target_chip"
	formFieldMetrics    = "metrics"
	formFieldGraph      = "graph"
	formFieldModelFile  = "model_file"
	formFieldAuxFile    = "aux_file"

	maxSaveFormMemory = 64 << 20
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type LoadModelData struct {
	Model    interface{}            `json:"model"`
	ModelURL string                 `json:"model_url"`
	AuxURL   string                 `json:"aux_url,omitempty"`
	Graph    *graph.Graph           `json:"graph,omitempty"`
	Metrics  map[string]interface{} `json:"metrics"`
}

type ImportModelData struct {
	ModelInfo *compiler.ModelInfo `json:"model_info"`
	Graph     graph.Graph         `json:"graph"`
}

func (s *Server) HandleListModels(w http.ResponseWriter, r *http.Request) {
	rows, err := s.modelSvc.List(r.Context(), identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: rows})
}

func (s *Server) HandleSaveModel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSaveFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, &Response{Code: 400, Message: "malformed multipart form: " + err.Error()})
		return
	}

	req := &service.SaveRequest{
		Name:       r.FormValue(formFieldName),
		TargetChip: r.FormValue(formFieldTargetChip),
	}
	if metricsJSON := r.FormValue(formFieldMetrics); metricsJSON != "" {
		// opaque document, a broken one is stored as empty rather than rejected
		doc := map[string]interface{}{}
		if err := json.Unmarshal([]byte(metricsJSON), &doc); err == nil {
			req.Metrics = doc
		}
	}
	if graphJSON := r.FormValue(formFieldGraph); graphJSON != "" {
		// a document that decodes to the empty graph carries no layout and
		// is treated as absent, no blob gets persisted for it
		if g := graph.Decode([]byte(graphJSON)); !g.IsEmpty() {
			req.Graph = &g
		}
	}

	modelFile, err := readFormFile(r, formFieldModelFile)
	if err != nil {
		writeError(w, service.ErrMissingModelFile)
		return
	}
	req.ModelFile = modelFile
	if auxFile, err := readFormFile(r, formFieldAuxFile); err == nil {
		req.AuxFile = auxFile
	}

	id, err := s.modelSvc.Save(r.Context(), identity(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: map[string]string{"id": id}})
}

func (s *Server) HandleLoadModel(w http.ResponseWriter, r *http.Request) {
	result, err := s.modelSvc.Load(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: &LoadModelData{
		Model:    result.Model,
		ModelURL: result.ModelURL,
		AuxURL:   result.AuxURL,
		Graph:    result.Graph,
		Metrics:  result.Metrics,
	}})
}

func (s *Server) HandleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.modelSvc.Delete(r.Context(), identity(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok"})
}

func (s *Server) HandleDeployModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Deployed bool `json:"deployed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, &Response{Code: 400, Message: "malformed request body"})
		return
	}
	if err := s.modelSvc.SetDeployed(r.Context(), identity(r), mux.Vars(r)["id"], body.Deployed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok"})
}

// HandleCompileModel replays a saved model through the compiler service:
// load, pull the blobs back via their signed URLs, re-upload them to the
// compiler, then request C generation for the target chip.
func (s *Server) HandleCompileModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetChip string `json:"target_chip"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	result, err := s.modelSvc.Load(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	modelFile, auxFile, err := s.rehydrator.Rehydrate(r.Context(), result.ModelURL, result.AuxURL)
	if err != nil {
		writeError(w, err)
		return
	}
	uploadResp, err := s.compilerClient.UploadModel(r.Context(), modelFile, auxFile)
	if err != nil {
		writeError(w, service.ErrBlobTransfer.Enrich("compiler upload failed: "+err.Error()))
		return
	}
	if !uploadResp.Valid {
		writeJSON(w, http.StatusBadRequest, &Response{Code: 400, Message: uploadResp.Error})
		return
	}

	targetChip := body.TargetChip
	if targetChip == "" {
		targetChip = result.Model.TargetChip
	}
	compileResp, err := s.compilerClient.Compile(r.Context(), result.Model.Name, targetChip)
	if err != nil {
		writeError(w, service.ErrBlobTransfer.Enrich("compile failed: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: compileResp})
}

func (s *Server) HandleProfileModel(w http.ResponseWriter, r *http.Request) {
	boardName := r.URL.Query().Get("board_name")
	if boardName == "" {
		boardName = types.DefaultTargetChip
	}
	quantized, _ := strconv.ParseBool(r.URL.Query().Get("quantized"))
	batchSize, err := strconv.Atoi(r.URL.Query().Get("batch_size"))
	if err != nil || batchSize <= 0 {
		batchSize = 1
	}

	result, err := s.modelSvc.Load(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	modelFile, auxFile, err := s.rehydrator.Rehydrate(r.Context(), result.ModelURL, result.AuxURL)
	if err != nil {
		writeError(w, err)
		return
	}
	profileResp, err := s.compilerClient.Profile(r.Context(), modelFile, auxFile, boardName, quantized, batchSize)
	if err != nil {
		writeError(w, service.ErrBlobTransfer.Enrich("profile failed: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: profileResp})
}

// HandleImportModel verifies a fresh upload against the compiler service and
// synthesizes an editable graph from the extracted structure, so a model
// imported without a saved layout still lands on the canvas.
func (s *Server) HandleImportModel(w http.ResponseWriter, r *http.Request) {
	if identity(r) == "" {
		writeError(w, service.ErrUnauthenticated)
		return
	}
	if err := r.ParseMultipartForm(maxSaveFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, &Response{Code: 400, Message: "malformed multipart form: " + err.Error()})
		return
	}
	modelFile, err := readFormFile(r, formFieldModelFile)
	if err != nil {
		writeError(w, service.ErrMissingModelFile)
		return
	}
	auxFile, _ := readFormFile(r, formFieldAuxFile)

	uploadResp, err := s.compilerClient.UploadModel(r.Context(), modelFile, auxFile)
	if err != nil {
		writeError(w, service.ErrBlobTransfer.Enrich("compiler upload failed: "+err.Error()))
		return
	}
	if !uploadResp.Valid {
		writeJSON(w, http.StatusBadRequest, &Response{Code: 400, Message: uploadResp.Error})
		return
	}
	writeJSON(w, http.StatusOK, &Response{Code: 0, Message: "ok", Data: &ImportModelData{
		ModelInfo: uploadResp.ModelInfo,
		Graph:     graph.FromModelInfo(uploadResp.ModelInfo),
	}})
}

func identity(r *http.Request) string {
	return r.Header.Get(headerUserID)
}

func readFormFile(r *http.Request, field string) (*types.MemoryFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return types.NewMemoryFile(header.Filename, data), nil
}

func writeError(w http.ResponseWriter, err error) {
	var svcErr service.Err
	if errors.As(err, &svcErr) {
		writeJSON(w, int(svcErr.Code), &Response{Code: svcErr.Code, Message: svcErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, &Response{Code: 500, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
