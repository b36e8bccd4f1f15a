// internal/infra/ipfs/kubo_uploader.go
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	files "github.com/ipfs/boxo/files"
	shell "github.com/ipfs/go-ipfs-api"

	"tokenforge/internal/infra/metrics"
)

const kuboProvider = "kubo"

var ErrKuboEmptyCID = errors.New("kubo: add returned empty cid")

// KuboUploader は自前の IPFS ノード（kubo の HTTP API, 既定 localhost:5001）に add + pin します。
// URI は Pinata と同じく <gateway>/ipfs/<cid> 形式。
type KuboUploader struct {
	sh      *shell.Shell
	gateway string
}

func NewKuboUploader(apiAddr, gateway string) *KuboUploader {
	apiAddr = strings.TrimSpace(apiAddr)
	if apiAddr == "" {
		apiAddr = "localhost:5001"
	}
	gateway = strings.TrimRight(strings.TrimSpace(gateway), "/")
	if gateway == "" {
		gateway = defaultGateway
	}
	sh := shell.NewShellWithClient(apiAddr, &http.Client{Timeout: 60 * time.Second})
	return &KuboUploader{sh: sh, gateway: gateway}
}

func (u *KuboUploader) PinFile(ctx context.Context, name, contentType string, data []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload(kuboProvider, "file", err) }()
	return u.add(ctx, name, data)
}

func (u *KuboUploader) PinJSON(ctx context.Context, name string, doc []byte) (uri string, err error) {
	defer func() { metrics.RecordUpload(kuboProvider, "json", err) }()
	return u.add(ctx, name, doc)
}

// add は Shell.Add と同じ multipart を組み立てますが、ctx 付きで送るのでキャンセルで HTTP 呼び出しごと止まります。
func (u *KuboUploader) add(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := files.NewSliceDirectory([]files.DirEntry{
		files.FileEntry("", files.NewReaderFile(bytes.NewReader(data))),
	})
	body := files.NewMultiFileReader(dir, true, false)

	var out struct {
		Hash string
	}
	err := u.sh.Request("add").
		Option("pin", true).
		Body(body).
		Exec(ctx, &out)
	if err != nil {
		return "", fmt.Errorf("kubo: add %s: %w", name, err)
	}
	cid := strings.TrimSpace(out.Hash)
	if cid == "" {
		return "", ErrKuboEmptyCID
	}
	log.Printf("[kubo] added name=%s cid=%s bytes=%d", name, cid, len(data))
	return u.gateway + "/ipfs/" + cid, nil
}
