package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

// Presigner is the slice of the bucket that mints signed URLs.
type Presigner interface {
	PresignedPut(key string, expireAt time.Time, contentType string) (string, error)
	PresignedGet(key string, expireAt time.Time) (string, error)
}

// MediaService issues short-lived presigned URLs for direct client access
// to audio objects. Every URL is minted fresh with an expiry computed at
// call time; nothing is cached.
type MediaService interface {
	IssueUploadURL(key string, contentType string) (string, error)
	IssueDownloadURL(key string) (string, error)
}

type mediaService struct {
	log    *logger.Logger
	signer Presigner
	ttl    time.Duration
	now    func() time.Time
}

func NewMediaService(baseLog *logger.Logger, signer Presigner, ttl time.Duration) MediaService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &mediaService{
		log:    baseLog.With("service", "MediaService"),
		signer: signer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *mediaService) IssueUploadURL(key string, contentType string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("presigned upload requires an object key")
	}
	return s.signer.PresignedPut(key, s.now().Add(s.ttl), contentType)
}

func (s *mediaService) IssueDownloadURL(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("presigned download requires an object key")
	}
	return s.signer.PresignedGet(key, s.now().Add(s.ttl))
}
