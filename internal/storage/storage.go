// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO implementation works with any S3-compatible provider, the S3
// implementation talks to AWS directly through the official SDK.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Storage is the interface for storing publicly readable objects.
type Storage interface {
	// Put streams body to the store under key and returns the public URL of
	// the stored object. Failures are reported as *PutError.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// PutError is returned when an object could not be stored.
type PutError struct {
	Key string
	Err error
}

func (e *PutError) Error() string {
	return fmt.Sprintf("put object %q: %v", e.Key, e.Err)
}

func (e *PutError) Unwrap() error {
	return e.Err
}

// joinURL appends key to base, escaping every path segment of the key.
func joinURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
