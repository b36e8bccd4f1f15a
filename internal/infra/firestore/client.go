// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// ClientWrapper は Firestore クライアントとプロジェクト ID をまとめたものです。
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
}

// NewClient は credentialsFile が空なら ADC で接続します。
func NewClient(ctx context.Context, projectID, credentialsFile string) (*ClientWrapper, error) {
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil, fmt.Errorf("firestore: projectID is empty")
	}

	var opts []option.ClientOption
	if f := strings.TrimSpace(credentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	client, err := firestore.NewClient(ctx, pid, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client: %w", err)
	}

	log.Printf("[firestore] connected project=%s", pid)
	return &ClientWrapper{Client: client, ProjectID: pid}, nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
