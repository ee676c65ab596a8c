// Package upload stores admin-submitted images in object storage.
package upload

import (
	"context"
	"errors"
	"io"

	"github.com/go-logr/logr"

	"github.com/carcosmetics/service/internal/metrics"
	"github.com/carcosmetics/service/internal/storage"
)

const defaultContentType = "application/octet-stream"

// errEmptyKey is logged when a filename normalises to nothing.
var errEmptyKey = errors.New("object key is empty after normalisation")

// File is one uploaded form file.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service uploads files and turns the outcome into a URL or nothing.
type Service struct {
	store   storage.Storage
	log     logr.Logger
	metrics *metrics.Metrics
}

// NewService creates a new upload Service. m may be nil.
func NewService(store storage.Storage, log logr.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, log: log, metrics: m}
}

// Upload stores f under key, or under SecureFilename(f.Filename) when key is
// empty, and returns the public URL. Failures are logged and reported only
// through the false result so that a storage outage never blocks the caller.
func (s *Service) Upload(ctx context.Context, f File, key string) (string, bool) {
	if key == "" {
		key = SecureFilename(f.Filename)
	}
	if key == "" {
		s.fail(errEmptyKey, f, key)
		return "", false
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	url, err := s.store.Put(ctx, key, f.Body, f.Size, contentType)
	if err != nil {
		s.fail(err, f, key)
		return "", false
	}

	s.metrics.ObserveUpload(metrics.UploadSucceeded)
	s.log.V(1).Info("image uploaded", "key", key, "url", url, "size", f.Size)
	return url, true
}

func (s *Service) fail(err error, f File, key string) {
	s.metrics.ObserveUpload(metrics.UploadFailed)
	s.log.Error(err, "image upload failed", "filename", f.Filename, "key", key)
}
