// internal/infra/ipfs/pinata_uploader.go
package ipfs

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
	"net/textproto"
	"strings"
	"time"

	"tokenforge/internal/infra/metrics"
)

const (
	defaultAPIURL  = "https://api.pinata.cloud"
	defaultGateway = "https://ipfs.io"
	providerName   = "pinata"
)

var (
	ErrPinataNotConfigured = errors.New("pinata: jwt not configured")
	ErrPinataEmptyHash     = errors.New("pinata: response has empty IpfsHash")
)

// PinataUploader は Pinata の pinFileToIPFS / pinJSONToIPFS を叩く AssetStore 実装です。
// 返す URI は <gateway>/ipfs/<IpfsHash> です。
type PinataUploader struct {
	client  *http.Client
	apiURL  string
	gateway string
	jwt     string
}

// NewPinataUploader: jwt は起動時に Secret Manager / 環境変数から解決済みの値を渡す。
func NewPinataUploader(apiURL, gateway, jwt string) *PinataUploader {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	gateway = strings.TrimRight(strings.TrimSpace(gateway), "/")
	if gateway == "" {
		gateway = defaultGateway
	}
	return &PinataUploader{
		client:  &http.Client{Timeout: 60 * time.Second},
		apiURL:  apiURL,
		gateway: gateway,
		jwt:     strings.TrimSpace(jwt),
	}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// GatewayURI は CID を公開ゲートウェイの URL にします。
func (u *PinataUploader) GatewayURI(cid string) string {
	return u.gateway + "/ipfs/" + cid
}

// PinFile uploads raw bytes as multipart field "file".
func (u *PinataUploader) PinFile(ctx context.Context, name, contentType string, data []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload(providerName, "file", err) }()

	if len(data) == 0 {
		return "", errors.New("pinata: file is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("pinata: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("pinata: write form file: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"name": name})
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("pinata: write metadata field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("pinata: close multipart: %w", err)
	}

	log.Printf("[pinata] PinFile start name=%s size=%d", name, len(data))
	cid, err := u.post(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	uri = u.GatewayURI(cid)
	log.Printf("[pinata] PinFile OK uri=%s", uri)
	return uri, nil
}

// PinJSON は doc をそのまま pinataContent として送ります。
func (u *PinataUploader) PinJSON(ctx context.Context, name string, doc []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload(providerName, "json", err) }()

	if !json.Valid(doc) {
		return "", errors.New("pinata: document is not valid json")
	}

	payload, err := json.Marshal(struct {
		PinataContent  json.RawMessage   `json:"pinataContent"`
		PinataMetadata map[string]string `json:"pinataMetadata"`
	}{
		PinataContent:  json.RawMessage(doc),
		PinataMetadata: map[string]string{"name": name},
	})
	if err != nil {
		return "", fmt.Errorf("pinata: marshal payload: %w", err)
	}

	log.Printf("[pinata] PinJSON start name=%s", name)
	cid, err := u.post(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	uri = u.GatewayURI(cid)
	log.Printf("[pinata] PinJSON OK uri=%s", uri)
	return uri, nil
}

func (u *PinataUploader) post(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if u == nil || u.jwt == "" {
		return "", ErrPinataNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.apiURL+path, body)
	if err != nil {
		return "", fmt.Errorf("pinata: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+u.jwt)

	resp, err := u.client.Do(req)
	if err != nil {
		log.Printf("[pinata] http request FAILED path=%s err=%v", path, err)
		return "", fmt.Errorf("pinata: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[pinata] %s FAILED status=%d body=%s", path, resp.StatusCode, string(raw))
		return "", fmt.Errorf("pinata: %s failed: status=%d body=%s", path, resp.StatusCode, string(raw))
	}

	var pr pinResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return "", fmt.Errorf("pinata: decode response: %w", err)
	}
	if strings.TrimSpace(pr.IpfsHash) == "" {
		return "", ErrPinataEmptyHash
	}
	return pr.IpfsHash, nil
}
