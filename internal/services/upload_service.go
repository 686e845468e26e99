package services

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/NexSupply/internal/core"
)

// ErrArchiveDisabled is returned when no object storage is configured.
var ErrArchiveDisabled = errors.New("upload archive disabled")

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadService archives analysed attachments to object storage.
type UploadService struct {
	storage core.ObjectClient
	bucket  string
	now     func() time.Time
}

// NewUploadService accepts a nil storage client; Archive then reports
// ErrArchiveDisabled.
func NewUploadService(storage core.ObjectClient, bucket string) *UploadService {
	return &UploadService{storage: storage, bucket: bucket, now: time.Now}
}

func (s *UploadService) Enabled() bool {
	return s != nil && s.storage != nil && s.bucket != ""
}

// ArchivedUpload locates an attachment in object storage.
type ArchivedUpload struct {
	Key string
	URL string
}

// Archive stores data under a per-owner key. owner is the user id when
// signed in, otherwise the session id.
func (s *UploadService) Archive(ctx context.Context, owner, filename, contentType string, data []byte) (*ArchivedUpload, error) {
	if !s.Enabled() {
		return nil, ErrArchiveDisabled
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.objectKey(owner, filename)
	url, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return &ArchivedUpload{Key: key, URL: url}, nil
}

// Discard removes a previously archived attachment.
func (s *UploadService) Discard(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrArchiveDisabled
	}
	return s.storage.DeleteFile(ctx, s.bucket, key)
}

// objectKey creates a consistent S3 key layout.
func (s *UploadService) objectKey(owner, filename string) string {
	filename = unsafeKeyChars.ReplaceAllString(strings.TrimSpace(filename), "_")
	if filename == "" || filename == "_" {
		filename = "upload"
	}
	owner = unsafeKeyChars.ReplaceAllString(owner, "_")
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join("uploads", owner, s.now().UTC().Format("2006/01/02"), uuid.NewString(), filename)
}
