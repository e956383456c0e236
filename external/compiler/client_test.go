package compiler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amapara27/silicon-edge-ai-compiler/types"
)

func TestUploadModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/model/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "model.onnx", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("onnx-bytes"), data)

		dataFile, _, err := r.FormFile("data_file")
		require.NoError(t, err)
		defer dataFile.Close()

		_ = json.NewEncoder(w).Encode(&UploadResponse{
			Valid: true,
			ModelInfo: &ModelInfo{
				Layers:          []LayerInfo{{Name: "fc1", OpType: "Gemm"}},
				TotalParameters: 1290,
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.UploadModel(context.Background(),
		types.NewMemoryFile("model.onnx", []byte("onnx-bytes")),
		types.NewMemoryFile("model.data", []byte("aux-bytes")))
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.NotNil(t, resp.ModelInfo)
	require.Equal(t, int64(1290), resp.ModelInfo.TotalParameters)
	require.Equal(t, "Gemm", resp.ModelInfo.Layers[0].OpType)
}

func TestUploadModelWithoutAux(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, _, err := r.FormFile("data_file")
		require.Error(t, err) // aux part must be omitted entirely
		_ = json.NewEncoder(w).Encode(&UploadResponse{Valid: true})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.UploadModel(context.Background(), types.NewMemoryFile("model.onnx", []byte("x")), nil)
	require.NoError(t, err)
	require.True(t, resp.Valid)
}

func TestCompile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compile-model/compile", r.URL.Path)
		var req CompileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "mnist", req.ModelName)
		require.Equal(t, "STM32F401", req.TargetChip)

		_ = json.NewEncoder(w).Encode(&CompileResponse{
			Success:    true,
			SourceCode: "void neural_network_init(void) {}",
			HeaderCode: "#pragma once",
			ModelName:  "mnist",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Compile(context.Background(), "mnist", "STM32F401")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Contains(t, resp.SourceCode, "neural_network_init")
}

func TestDownloadArchive(t *testing.T) {
	archive := []byte{0x50, 0x4b, 0x03, 0x04, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compile-model/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	data, err := c.DownloadArchive(context.Background(), "mnist", "STM32F401")
	require.NoError(t, err)
	require.Equal(t, archive, data)
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/profile-model/profile", r.URL.Path)
		require.Equal(t, "ESP32", r.URL.Query().Get("board_name"))
		require.Equal(t, "true", r.URL.Query().Get("quantized"))
		require.Equal(t, "4", r.URL.Query().Get("batch_size"))

		_ = json.NewEncoder(w).Encode(&ProfileResponse{
			Valid: true,
			ModelInfo: &ProfileInfo{
				RamUsed:    143360,
				RamTotal:   327680,
				FlashUsed:  163840,
				FlashTotal: 4194304,
				TotalFlops: 1248000,
				BoardName:  "ESP32",
				Layers: []LayerProfile{
					{Name: "dense1", Type: "Dense", Shape: "128", ParamCount: 204928, MemoryBytes: 512, Flops: 409856},
				},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Profile(context.Background(), types.NewMemoryFile("model.onnx", []byte("x")), nil, "ESP32", true, 4)
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Equal(t, int64(1248000), resp.ModelInfo.TotalFlops)
	require.Len(t, resp.ModelInfo.Layers, 1)
}

func TestNonOKStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no model loaded", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Compile(context.Background(), "mnist", "STM32F401")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no model loaded")
}
