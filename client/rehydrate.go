package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amapara27/silicon-edge-ai-compiler/logging"
	"github.com/amapara27/silicon-edge-ai-compiler/service"
	"github.com/amapara27/silicon-edge-ai-compiler/types"
)

// Rehydrator turns the signed URLs a Load returns into in-memory files the
// compiler service client can re-upload as multipart form data. Locating a
// blob and transferring it are deliberately decoupled, the transfer happens
// here against the store directly.
type Rehydrator struct {
	hc *http.Client
}

func NewRehydrator() *Rehydrator {
	transport := &http.Transport{
		DisableCompression:  true,
		MaxIdleConnsPerHost: 1000,
		MaxConnsPerHost:     1000,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Rehydrator{
		hc: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
	}
}

type fetchResult struct {
	data []byte
	err  error
}

// Rehydrate fetches the model blob and, when a URL is given, the aux blob.
// The two fetches run concurrently, their ordering is not observable. A
// failure on the model URL fails the whole operation, a failure on the aux
// URL degrades to "aux absent".
func (r *Rehydrator) Rehydrate(ctx context.Context, modelURL, auxURL string) (*types.MemoryFile, *types.MemoryFile, error) {
	modelCh := make(chan fetchResult, 1)
	auxCh := make(chan fetchResult, 1)

	go func() {
		data, err := r.fetch(ctx, modelURL)
		modelCh <- fetchResult{data, err}
	}()
	if auxURL != "" {
		go func() {
			data, err := r.fetch(ctx, auxURL)
			auxCh <- fetchResult{data, err}
		}()
	} else {
		auxCh <- fetchResult{}
	}

	modelRes := <-modelCh
	auxRes := <-auxCh

	if modelRes.err != nil {
		return nil, nil, service.ErrBlobTransfer.Enrich("model download failed: " + modelRes.err.Error())
	}
	modelFile := types.NewMemoryFile(types.ModelObjectName, modelRes.data)

	var auxFile *types.MemoryFile
	if auxURL != "" {
		if auxRes.err != nil {
			logging.Logger.Warningf("aux download failed, treating aux as absent, err=%s", auxRes.err.Error())
		} else {
			auxFile = types.NewMemoryFile(types.AuxObjectName, auxRes.data)
		}
	}
	return modelFile, auxFile, nil
}

func (r *Rehydrator) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received non-OK response status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
