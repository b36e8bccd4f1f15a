// internal/application/tokenCreation/uploader.go
package tokenCreation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

var ErrAssetStoreNotConfigured = errors.New("metadata_uploader: asset store not configured")

// MetadataObjectName は metadata.json のオブジェクト名（ピン名）です。
const MetadataObjectName = "metadata.json"

// MetadataUploader は画像 → metadata.json の順に 2 回アップロードします。
// どちらかが失敗した場合は途中からの再送はせず、呼び出し全体をやり直します。
type MetadataUploader struct {
	store AssetStore
}

func NewMetadataUploader(store AssetStore) *MetadataUploader {
	return &MetadataUploader{store: store}
}

// BuildMetadataDocument は metadata.json を組み立てます。
func BuildMetadataDocument(req tcdom.TokenCreationRequest, imageURI string) ([]byte, error) {
	return json.Marshal(tcdom.MetadataDocument{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Image:       imageURI,
	})
}

func (u *MetadataUploader) Upload(ctx context.Context, req tcdom.TokenCreationRequest) (tcdom.UploadedMetadata, error) {
	if u == nil || u.store == nil {
		return tcdom.UploadedMetadata{}, &tcdom.UploadError{Kind: tcdom.ImageUploadFailed, Err: ErrAssetStoreNotConfigured}
	}

	store := u.store
	if ss, ok := store.(AssetSessionStarter); ok {
		store = ss.NewSession()
	}

	// 1) 画像
	imageURI, err := store.PinFile(ctx, req.Icon.FileName, req.Icon.ContentType, req.Icon.Data)
	if err == nil && strings.TrimSpace(imageURI) == "" {
		err = errors.New("empty image uri")
	}
	if err != nil {
		log.Printf("[metadata_uploader] image upload FAILED name=%s err=%v", req.Icon.FileName, err)
		return tcdom.UploadedMetadata{}, &tcdom.UploadError{Kind: tcdom.ImageUploadFailed, Err: err}
	}

	// 2) metadata.json
	doc, err := BuildMetadataDocument(req, imageURI)
	if err != nil {
		return tcdom.UploadedMetadata{}, &tcdom.UploadError{Kind: tcdom.MetadataUploadFailed, Err: fmt.Errorf("marshal metadata: %w", err)}
	}
	metaURI, err := store.PinJSON(ctx, MetadataObjectName, doc)
	if err == nil && strings.TrimSpace(metaURI) == "" {
		err = errors.New("empty metadata uri")
	}
	if err == nil && len(metaURI) > tcdom.MaxURILen {
		err = fmt.Errorf("%w: %s", tcdom.ErrURITooLong, metaURI)
	}
	if err != nil {
		log.Printf("[metadata_uploader] metadata upload FAILED symbol=%s err=%v", req.Symbol, err)
		return tcdom.UploadedMetadata{}, &tcdom.UploadError{Kind: tcdom.MetadataUploadFailed, Err: err}
	}

	log.Printf("[metadata_uploader] uploaded image=%s metadata=%s", imageURI, metaURI)
	return tcdom.UploadedMetadata{ImageURI: imageURI, MetadataJSONURI: metaURI}, nil
}
