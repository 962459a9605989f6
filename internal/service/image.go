package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/platefeed/backend/config"
)

// ImageStore persists raw image bytes and returns a public URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// S3ImageStore uploads images to the configured S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}

// ImageService turns base64 image payloads into stored image URLs.
type ImageService struct {
	store ImageStore
}

// NewImageService creates an ImageService. A nil store (local development
// without S3 credentials) keeps payloads inline as data URLs.
func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// SaveBase64 decodes a base64 image payload (with or without a data-URL
// prefix) and uploads it under the given key prefix. An empty payload is a
// validation error; so is a payload that does not decode.
func (s *ImageService) SaveBase64(ctx context.Context, payload, keyPrefix string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("%w: image is required", ErrValidation)
	}

	raw := payload
	contentType := ""
	if strings.HasPrefix(payload, "data:") {
		header, rest, found := strings.Cut(payload, ",")
		if !found {
			return "", fmt.Errorf("%w: malformed image data URL", ErrValidation)
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		raw = rest
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: image payload is not valid base64", ErrValidation)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: payload is not an image", ErrValidation)
	}

	if s.store == nil {
		// no object storage configured; keep the image inline
		return fmt.Sprintf("data:%s;base64,%s", contentType, raw), nil
	}

	ext := strings.TrimPrefix(contentType, "image/")
	key := fmt.Sprintf("%s/%s.%s", keyPrefix, uuid.New().String(), ext)
	return s.store.Upload(ctx, data, key, contentType)
}
