package tokenCreation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

type blankStore struct{}

func (blankStore) PinFile(context.Context, string, string, []byte) (string, error) { return "", nil }
func (blankStore) PinJSON(context.Context, string, []byte) (string, error)         { return "", nil }

func TestBuildMetadataDocument_KeepsEmptyDescription(t *testing.T) {
	doc, err := BuildMetadataDocument(tcdom.TokenCreationRequest{Name: "A", Symbol: "B"}, "https://x/img")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A","symbol":"B","description":"","image":"https://x/img"}`, string(doc))
}

func TestUpload_Order(t *testing.T) {
	s := &fakeStore{}
	got, err := NewMetadataUploader(s).Upload(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/QmImage", got.ImageURI)
	assert.Equal(t, "https://ipfs.io/ipfs/QmMeta", got.MetadataJSONURI)
	assert.Equal(t, 1, s.fileCalls)
	assert.Equal(t, 1, s.jsonCalls)
	assert.Contains(t, string(s.lastJSON), `"image":"https://ipfs.io/ipfs/QmImage"`)
	assert.Equal(t, MetadataObjectName, s.jsonName)
}

// sessionStore は NewSession ごとに別の fakeStore を払い出します。
type sessionStore struct {
	fakeStore
	sessions []*fakeStore
}

func (s *sessionStore) NewSession() AssetStore {
	fs := &fakeStore{}
	s.sessions = append(s.sessions, fs)
	return fs
}

func TestUpload_UsesOneSessionPerRequest(t *testing.T) {
	s := &sessionStore{}
	u := NewMetadataUploader(s)

	_, err := u.Upload(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, s.sessions, 1)
	assert.Equal(t, 1, s.sessions[0].fileCalls)
	assert.Equal(t, 1, s.sessions[0].jsonCalls)
	assert.Equal(t, "metadata.json", s.sessions[0].jsonName)
	assert.Zero(t, s.fileCalls+s.jsonCalls)

	_, err = u.Upload(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, s.sessions, 2)
}

func TestUpload_EmptyURIIsFailure(t *testing.T) {
	_, err := NewMetadataUploader(blankStore{}).Upload(context.Background(), validRequest())
	var ue *tcdom.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, tcdom.ImageUploadFailed, ue.Kind)
}

func TestUpload_NoStore(t *testing.T) {
	_, err := NewMetadataUploader(nil).Upload(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrAssetStoreNotConfigured)
}

type longURIStore struct{}

func (longURIStore) PinFile(context.Context, string, string, []byte) (string, error) {
	return "https://x/img", nil
}

func (longURIStore) PinJSON(context.Context, string, []byte) (string, error) {
	return "https://x/" + strings.Repeat("m", tcdom.MaxURILen), nil
}

func TestUpload_MetadataURITooLong(t *testing.T) {
	_, err := NewMetadataUploader(longURIStore{}).Upload(context.Background(), validRequest())
	var ue *tcdom.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, tcdom.MetadataUploadFailed, ue.Kind)
	assert.ErrorIs(t, err, tcdom.ErrURITooLong)
}
