// internal/adapters/out/gcs/asset_store_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	tcapp "tokenforge/internal/application/tokenCreation"
	"tokenforge/internal/infra/metrics"
)

const objectPrefix = "tokens"

// AssetStoreGCS は画像と metadata.json を GCS の公開バケットに置く AssetStore 実装です。
type AssetStoreGCS struct {
	Client *storage.Client
	Bucket string

	newID func() string
	// prefixID が空でなければ、このストアで書くオブジェクトは全て tokens/<prefixID>/ 配下。
	prefixID string
}

func NewAssetStoreGCS(client *storage.Client, bucket string) *AssetStoreGCS {
	return &AssetStoreGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		newID:  uuid.NewString,
	}
}

// NewSession は 1 回のアップロード（画像 + metadata.json）用に uuid を 1 つ決めたコピーを返します。
func (s *AssetStoreGCS) NewSession() tcapp.AssetStore {
	cp := *s
	cp.prefixID = s.newID()
	return &cp
}

func (s *AssetStoreGCS) objectID() string {
	if s.prefixID != "" {
		return s.prefixID
	}
	return s.newID()
}

// objectPath builds "tokens/<id>/<fileName>".
func objectPath(id, fileName string) (string, error) {
	i := strings.TrimSpace(id)
	f := path.Base(strings.TrimSpace(fileName))
	if i == "" || f == "" || f == "." || f == "/" {
		return "", fmt.Errorf("gcs: invalid id or fileName: %q, %q", id, fileName)
	}
	return objectPrefix + "/" + i + "/" + f, nil
}

// PublicURL は storage.googleapis.com 形式の公開 URL です。
func PublicURL(bucket, object string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + object
}

func (s *AssetStoreGCS) PinFile(ctx context.Context, name, contentType string, data []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload("gcs", "file", err) }()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.put(ctx, name, contentType, data)
}

func (s *AssetStoreGCS) PinJSON(ctx context.Context, name string, doc []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload("gcs", "json", err) }()
	return s.put(ctx, name, "application/json", doc)
}

func (s *AssetStoreGCS) put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("gcs: client is nil")
	}
	if s.Bucket == "" {
		return "", errors.New("gcs: bucket is empty")
	}
	if len(data) == 0 {
		return "", errors.New("gcs: object is empty")
	}

	obj, err := objectPath(s.objectID(), name)
	if err != nil {
		return "", err
	}

	w := s.Client.Bucket(s.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", obj, err)
	}

	uri := PublicURL(s.Bucket, obj)
	log.Printf("[gcs] uploaded bucket=%s object=%s size=%d", s.Bucket, obj, len(data))
	return uri, nil
}
