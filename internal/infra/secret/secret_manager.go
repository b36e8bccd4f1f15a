// internal/infra/secret/secret_manager.go
package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrSecretNotConfigured = errors.New("secret_manager: not configured")
	ErrSecretNotFound      = errors.New("secret_manager: secret not found")
	ErrSecretEmpty         = errors.New("secret_manager: secret payload is empty")
)

// accessor は AccessSecretVersion だけを切り出したものです（テスト差し替え用）。
type accessor interface {
	AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest) ([]byte, error)
}

type smAccessor struct {
	client *secretmanager.Client
}

func (a smAccessor) AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest) ([]byte, error) {
	res, err := a.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Payload == nil {
		return nil, nil
	}
	return res.Payload.Data, nil
}

// Provider は Secret Manager から最新バージョンの値を読み出します。
type Provider struct {
	projectID string
	access    accessor
	closer    func() error
}

func NewProvider(ctx context.Context, projectID string) (*Provider, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	return &Provider{
		projectID: strings.TrimSpace(projectID),
		access:    smAccessor{client: c},
		closer:    c.Close,
	}, nil
}

func (p *Provider) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}

// VersionName は secret ID（または projects/... のフルパス）を latest のバージョン名にします。
func VersionName(projectID, secretID string) (string, error) {
	id := strings.TrimSpace(secretID)
	if id == "" {
		return "", fmt.Errorf("%w: secret id is empty", ErrSecretNotConfigured)
	}
	if strings.HasPrefix(id, "projects/") {
		if strings.Contains(id, "/versions/") {
			return id, nil
		}
		return id + "/versions/latest", nil
	}
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return "", fmt.Errorf("%w: projectID is empty", ErrSecretNotConfigured)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", pid, id), nil
}

// Get returns the secret payload. NotFound is reported as ErrSecretNotFound.
func (p *Provider) Get(ctx context.Context, secretID string) ([]byte, error) {
	if p == nil || p.access == nil {
		return nil, ErrSecretNotConfigured
	}
	name, err := VersionName(p.projectID, secretID)
	if err != nil {
		return nil, err
	}

	data, err := p.access.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return nil, fmt.Errorf("access secret version %s: %w", name, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecretEmpty, name)
	}
	return data, nil
}

// GetString は前後の空白を除いた文字列として返します（JWT など）。
func (p *Provider) GetString(ctx context.Context, secretID string) (string, error) {
	b, err := p.Get(ctx, secretID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
