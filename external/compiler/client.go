package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/amapara27/silicon-edge-ai-compiler/types"
)

const (
	pathUploadModel     = "/model/upload"
	pathCompileModel    = "/compile-model/compile"
	pathDownloadArchive = "/compile-model/download"
	pathProfileModel    = "/profile-model/profile"

	fieldModelFile = "file"
	fieldDataFile  = "data_file"
)

// Client talks to the external compilation/profiling service. The service is
// a black box here, the model hub only relays files and JSON to it.
type Client struct {
	hc   *http.Client
	host string
}

func NewClient(host string) (*Client, error) {
	transport := &http.Transport{
		DisableCompression:  true,
		MaxIdleConnsPerHost: 1000,
		MaxConnsPerHost:     1000,
		IdleConnTimeout:     90 * time.Second,
	}
	client := &http.Client{
		Timeout:   10 * time.Minute,
		Transport: transport,
	}
	return &Client{hc: client, host: host}, nil
}

// UploadModel sends the model file, plus the optional external-weights file,
// for verification and structural inspection.
func (c *Client) UploadModel(ctx context.Context, model *types.MemoryFile, aux *types.MemoryFile) (*UploadResponse, error) {
	body, contentType, err := buildMultipartBody(model, aux)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+pathUploadModel, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	uploadResp := &UploadResponse{}
	if err = c.doJSON(req, uploadResp); err != nil {
		return nil, err
	}
	return uploadResp, nil
}

func (c *Client) Compile(ctx context.Context, modelName, targetChip string) (*CompileResponse, error) {
	reqBody, err := json.Marshal(CompileRequest{ModelName: modelName, TargetChip: targetChip})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+pathCompileModel, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	compileResp := &CompileResponse{}
	if err = c.doJSON(req, compileResp); err != nil {
		return nil, err
	}
	return compileResp, nil
}

// DownloadArchive compiles and streams back the generated C files as a zip
// archive.
func (c *Client) DownloadArchive(ctx context.Context, modelName, targetChip string) ([]byte, error) {
	reqBody, err := json.Marshal(CompileRequest{ModelName: modelName, TargetChip: targetChip})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+pathDownloadArchive, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bodyStr, _ := readResponseBody(resp)
		return nil, fmt.Errorf("received non-OK response status: %s, err %s", resp.Status, bodyStr)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) Profile(ctx context.Context, model *types.MemoryFile, aux *types.MemoryFile, boardName string, quantized bool, batchSize int) (*ProfileResponse, error) {
	body, contentType, err := buildMultipartBody(model, aux)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+pathProfileModel, body)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("board_name", boardName)
	q.Add("quantized", strconv.FormatBool(quantized))
	q.Add("batch_size", strconv.Itoa(batchSize))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", contentType)
	profileResp := &ProfileResponse{}
	if err = c.doJSON(req, profileResp); err != nil {
		return nil, err
	}
	return profileResp, nil
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bodyStr, _ := readResponseBody(resp)
		return fmt.Errorf("received non-OK response status: %s, err %s", resp.Status, bodyStr)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func buildMultipartBody(model *types.MemoryFile, aux *types.MemoryFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filePart, err := writer.CreateFormFile(fieldModelFile, model.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err = io.Copy(filePart, model.Reader()); err != nil {
		return nil, "", err
	}
	if aux != nil && aux.Size() > 0 {
		dataPart, err := writer.CreateFormFile(fieldDataFile, aux.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err = io.Copy(dataPart, aux.Reader()); err != nil {
			return nil, "", err
		}
	}
	if err = writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func readResponseBody(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
