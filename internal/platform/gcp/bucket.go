// Package gcp wraps the Cloud Storage client behind the small surface the
// services need: uploads, presigned URLs, and public URL construction.
package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/envutil"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type BucketService interface {
	// Upload streams r into the bucket under key and returns the object's
	// public URL. When public is true the object is readable without a
	// signed URL.
	Upload(ctx context.Context, key string, r io.Reader, contentType string, public bool) (string, error)

	// PresignedPut returns a V4 signed URL that allows a single PUT of
	// the given content type until expireAt. A fresh URL is minted on
	// every call.
	PresignedPut(key string, expireAt time.Time, contentType string) (string, error)

	// PresignedGet returns a V4 signed URL for reading the object until
	// expireAt.
	PresignedGet(key string, expireAt time.Time) (string, error)

	// PublicURL builds the unauthenticated URL for an object, using the
	// CDN domain when one is configured.
	PublicURL(key string) string

	Close() error
}

type bucketService struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
	cdnDomain  string
}

func NewBucketService(ctx context.Context, baseLog *logger.Logger, opts ...option.ClientOption) (BucketService, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET_NAME")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &bucketService{
		log:        baseLog.With("service", "BucketService"),
		client:     client,
		bucketName: bucketName,
		cdnDomain:  envutil.Str("GCS_CDN_DOMAIN", ""),
	}, nil
}

func (s *bucketService) Upload(ctx context.Context, key string, r io.Reader, contentType string, public bool) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("upload requires an object key")
	}

	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if public {
		w.PredefinedACL = "publicRead"
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload %s: %w", key, err)
	}

	url := s.PublicURL(key)
	s.log.Debug("Object uploaded", "key", key, "content_type", contentType, "public", public)
	return url, nil
}

func (s *bucketService) PresignedPut(key string, expireAt time.Time, contentType string) (string, error) {
	return s.client.Bucket(s.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     expireAt,
		ContentType: contentType,
	})
}

func (s *bucketService) PresignedGet(key string, expireAt time.Time) (string, error) {
	return s.client.Bucket(s.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expireAt,
	})
}

func (s *bucketService) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(s.cdnDomain, "/"), key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}

func (s *bucketService) Close() error {
	return s.client.Close()
}
