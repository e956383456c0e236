package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amapara27/silicon-edge-ai-compiler/service"
)

func newBlobServer(t *testing.T, blobs map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := blobs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRehydrateModelAndAux(t *testing.T) {
	srv := newBlobServer(t, map[string][]byte{
		"/model": []byte("onnx-bytes"),
		"/aux":   []byte("aux-bytes"),
	})

	modelFile, auxFile, err := NewRehydrator().Rehydrate(context.Background(), srv.URL+"/model", srv.URL+"/aux")
	require.NoError(t, err)
	require.Equal(t, []byte("onnx-bytes"), modelFile.Data)
	require.Equal(t, "model.bin", modelFile.Name)
	require.NotNil(t, auxFile)
	require.Equal(t, []byte("aux-bytes"), auxFile.Data)
	require.Equal(t, "model.aux", auxFile.Name)
}

func TestRehydrateWithoutAuxURL(t *testing.T) {
	srv := newBlobServer(t, map[string][]byte{
		"/model": []byte("onnx-bytes"),
	})

	modelFile, auxFile, err := NewRehydrator().Rehydrate(context.Background(), srv.URL+"/model", "")
	require.NoError(t, err)
	require.Equal(t, []byte("onnx-bytes"), modelFile.Data)
	require.Nil(t, auxFile)
}

func TestRehydrateAuxFailureDegradesToAbsent(t *testing.T) {
	srv := newBlobServer(t, map[string][]byte{
		"/model": []byte("onnx-bytes"),
	})

	modelFile, auxFile, err := NewRehydrator().Rehydrate(context.Background(), srv.URL+"/model", srv.URL+"/gone")
	require.NoError(t, err)
	require.Equal(t, []byte("onnx-bytes"), modelFile.Data)
	require.Nil(t, auxFile)
}

func TestRehydrateModelFailureIsFatal(t *testing.T) {
	srv := newBlobServer(t, map[string][]byte{
		"/aux": []byte("aux-bytes"),
	})

	_, _, err := NewRehydrator().Rehydrate(context.Background(), srv.URL+"/gone", srv.URL+"/aux")
	require.ErrorIs(t, err, service.ErrBlobTransfer)
}
