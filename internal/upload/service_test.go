package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carcosmetics/service/internal/metrics"
	"github.com/carcosmetics/service/internal/storage"
)

type putCall struct {
	key         string
	body        string
	size        int64
	contentType string
}

type fakeStorage struct {
	calls []putCall
	err   error
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	b, _ := io.ReadAll(body)
	f.calls = append(f.calls, putCall{key: key, body: string(b), size: size, contentType: contentType})
	if f.err != nil {
		return "", &storage.PutError{Key: key, Err: f.err}
	}
	return "https://bucket.example.com/" + key, nil
}

func testFile(name string) File {
	return File{Filename: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("data")}
}

func TestUpload_DefaultKeyFromFilename(t *testing.T) {
	store := &fakeStorage{}
	svc := NewService(store, logr.Discard(), nil)

	url, ok := svc.Upload(context.Background(), testFile("../My Car.png"), "")
	require.True(t, ok)
	assert.Equal(t, "https://bucket.example.com/My_Car.png", url)

	require.Len(t, store.calls, 1)
	assert.Equal(t, putCall{key: "My_Car.png", body: "data", size: 4, contentType: "image/png"}, store.calls[0])
}

func TestUpload_ExplicitKeyUsedVerbatim(t *testing.T) {
	store := &fakeStorage{}
	svc := NewService(store, logr.Discard(), nil)

	_, ok := svc.Upload(context.Background(), testFile("x.png"), "K5_Black_image_url_front_x.png")
	require.True(t, ok)
	assert.Equal(t, "K5_Black_image_url_front_x.png", store.calls[0].key)
}

func TestUpload_DefaultContentType(t *testing.T) {
	store := &fakeStorage{}
	svc := NewService(store, logr.Discard(), nil)

	f := testFile("x.bin")
	f.ContentType = ""
	_, ok := svc.Upload(context.Background(), f, "")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", store.calls[0].contentType)
}

func TestUpload_StorageFailureIsSwallowed(t *testing.T) {
	store := &fakeStorage{err: errors.New("access denied")}
	m := metrics.New()
	svc := NewService(store, logr.Discard(), m)

	url, ok := svc.Upload(context.Background(), testFile("front.png"), "")
	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Len(t, store.calls, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `car_cosmetics_image_uploads_total{result="failure"} 1`)
}

func TestUpload_EmptyKeyFailsWithoutCallingStorage(t *testing.T) {
	store := &fakeStorage{}
	svc := NewService(store, logr.Discard(), nil)

	url, ok := svc.Upload(context.Background(), testFile("..."), "")
	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Empty(t, store.calls)
}
