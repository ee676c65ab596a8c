package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3Storage(t *testing.T, endpoint string, publicRead bool) *S3Storage {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := NewS3Storage(ctx, S3Config{
		Endpoint:        endpoint,
		Bucket:          "car-cosmetics",
		Region:          "us-east-1",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
		PublicRead:      publicRead,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return s
}

func TestS3StoragePut_SendsObjectAndReturnsURL(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotACL         string
		gotBody        []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() { _ = r.Body.Close() }()
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotACL = r.Header.Get("X-Amz-Acl")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestS3Storage(t, server.URL, true)

	data := []byte("fake png bytes")
	url, err := s.Put(context.Background(), "front.png", bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "/car-cosmetics/front.png", gotPath)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, "public-read", gotACL)
	assert.Contains(t, string(gotBody), string(data))
	assert.Equal(t, server.URL+"/car-cosmetics/front.png", url)
}

func TestS3StoragePut_OmitsACLWhenDisabled(t *testing.T) {
	var gotACL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		gotACL = r.Header.Get("X-Amz-Acl")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestS3Storage(t, server.URL, false)

	_, err := s.Put(context.Background(), "side.png", bytes.NewReader([]byte("x")), 1, "image/png")
	require.NoError(t, err)
	assert.Empty(t, gotACL)
}

func TestS3StoragePut_FailureIsSingleAttemptPutError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		calls.Add(1)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<Error><Code>InternalError</Code><Message>boom</Message></Error>`))
	}))
	defer server.Close()

	s := newTestS3Storage(t, server.URL, true)

	url, err := s.Put(context.Background(), "rear.png", bytes.NewReader([]byte("x")), 1, "image/png")
	require.Error(t, err)
	assert.Empty(t, url)

	var putErr *PutError
	require.True(t, errors.As(err, &putErr))
	assert.Equal(t, "rear.png", putErr.Key)
	assert.Equal(t, int32(1), calls.Load())
}

func TestS3PublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "aws virtual hosted",
			cfg:  S3Config{Bucket: "cars", Region: "ap-northeast-2"},
			want: "https://cars.s3.ap-northeast-2.amazonaws.com",
		},
		{
			name: "custom endpoint",
			cfg:  S3Config{Bucket: "cars", Region: "us-east-1", Endpoint: "http://localhost:4566/"},
			want: "http://localhost:4566/cars",
		},
		{
			name: "explicit public base wins",
			cfg:  S3Config{Bucket: "cars", Region: "us-east-1", Endpoint: "http://localhost:4566", PublicBase: "https://cdn.example.com"},
			want: "https://cdn.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3PublicBase(tt.cfg))
		})
	}
}

func TestJoinURL_EscapesSegments(t *testing.T) {
	got := joinURL("https://cdn.example.com/", "Avante N_Track Pack_image_url_front_front.png")
	assert.Equal(t, "https://cdn.example.com/Avante%20N_Track%20Pack_image_url_front_front.png", got)

	got = joinURL("https://cdn.example.com", "dir/a b.png")
	assert.Equal(t, "https://cdn.example.com/dir/a%20b.png", got)
}

func TestNewS3Storage_RequiresBucketAndRegion(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)

	_, err = NewS3Storage(context.Background(), S3Config{Bucket: "cars"})
	assert.Error(t, err)
}
