package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestSaveBase64WithoutStore(t *testing.T) {
	images := NewImageService(nil)
	ctx := context.Background()

	url, err := images.SaveBase64(ctx, tinyPNG, "recipes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	// data-URL prefixed payloads work the same
	url, err = images.SaveBase64(ctx, "data:image/png;base64,"+tinyPNG, "recipes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestSaveBase64Validation(t *testing.T) {
	images := NewImageService(nil)
	ctx := context.Background()

	_, err := images.SaveBase64(ctx, "", "recipes")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = images.SaveBase64(ctx, "!!! not base64 !!!", "recipes")
	assert.ErrorIs(t, err, ErrValidation)

	// valid base64 but not an image
	_, err = images.SaveBase64(ctx, "aGVsbG8gd29ybGQsIHRoaXMgaXMgcGxhaW4gdGV4dA==", "recipes")
	assert.ErrorIs(t, err, ErrValidation)
}

type fakeStore struct {
	key         string
	contentType string
}

func (s *fakeStore) Upload(_ context.Context, _ []byte, key, contentType string) (string, error) {
	s.key = key
	s.contentType = contentType
	return "https://bucket.example.com/" + key, nil
}

func TestSaveBase64UploadsToStore(t *testing.T) {
	store := &fakeStore{}
	images := NewImageService(store)

	url, err := images.SaveBase64(context.Background(), tinyPNG, "avatars")
	require.NoError(t, err)

	assert.Equal(t, "image/png", store.contentType)
	assert.True(t, strings.HasPrefix(store.key, "avatars/"))
	assert.True(t, strings.HasSuffix(store.key, ".png"))
	assert.Equal(t, "https://bucket.example.com/"+store.key, url)
}
