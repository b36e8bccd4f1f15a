// internal/infra/arweave/uploader.go
package arweave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"tokenforge/internal/infra/metrics"
)

var ErrNotConfigured = errors.New("arweave: baseURL is empty; endpoint not configured")

// HTTPUploader は Irys Uploader（Cloud Run など）の HTTP API を叩く AssetStore 実装です。
//
//	POST {base}/upload/file  multipart "file"  → {"uri": "..."}
//	POST {base}/upload/json  JSON body         → {"uri": "..."}
type HTTPUploader struct {
	client  *http.Client
	baseURL string
	apiKey  string // 不要なら空
}

func NewHTTPUploader(baseURL, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

func (u *HTTPUploader) PinFile(ctx context.Context, name, contentType string, data []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload("arweave", "file", err) }()

	if len(data) == 0 {
		return "", fmt.Errorf("arweave: file is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("arweave: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("arweave: write form file: %w", err)
	}
	if contentType != "" {
		if err := mw.WriteField("contentType", contentType); err != nil {
			return "", fmt.Errorf("arweave: write content type: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("arweave: close multipart: %w", err)
	}

	log.Printf("[arweave] PinFile start name=%s size=%d", name, len(data))
	return u.post(ctx, "/upload/file", mw.FormDataContentType(), &body)
}

// PinJSON uploads metadata JSON. name is informational only; the service assigns the id.
func (u *HTTPUploader) PinJSON(ctx context.Context, name string, doc []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload("arweave", "json", err) }()

	if len(doc) == 0 {
		return "", fmt.Errorf("arweave: metadataJSON is empty")
	}
	log.Printf("[arweave] PinJSON start name=%s", name)
	return u.post(ctx, "/upload/json", "application/json", bytes.NewReader(doc))
}

func (u *HTTPUploader) post(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if u == nil || u.baseURL == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("arweave: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		log.Printf("[arweave] http request FAILED path=%s err=%v", path, err)
		return "", fmt.Errorf("arweave: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[arweave] %s FAILED status=%d body=%s", path, resp.StatusCode, string(raw))
		return "", fmt.Errorf("arweave: %s failed: status=%d body=%s", path, resp.StatusCode, string(raw))
	}

	var res struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("arweave: decode upload response: %w", err)
	}
	if strings.TrimSpace(res.URI) == "" {
		return "", fmt.Errorf("arweave: upload response has empty uri")
	}

	log.Printf("[arweave] %s OK uri=%s", path, res.URI)
	return res.URI, nil
}
