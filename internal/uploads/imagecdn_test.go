package uploads

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadSignsAndPostsImage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/auth", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t-1","expire":1756400000,"signature":"sig-1"}`))
	}))
	defer backend.Close()

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "pk-abc", r.FormValue("publicKey"))
		assert.Equal(t, "t-1", r.FormValue("token"))
		assert.Equal(t, "1756400000", r.FormValue("expire"))
		assert.Equal(t, "sig-1", r.FormValue("signature"))
		assert.Equal(t, "anillo.jpg", r.FormValue("fileName"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "anillo.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "JPEGDATA", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/anillo.jpg"}`))
	}))
	defer cdn.Close()

	uploader := &Uploader{
		Auth:      gateway.New(backend.URL, 2*time.Second, testLogger()),
		UploadURL: cdn.URL,
		PublicKey: "pk-abc",
		Client:    cdn.Client(),
	}

	url, err := uploader.Upload(context.Background(), "anillo.jpg", []byte("JPEGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/anillo.jpg", url)
}

func TestUploadRejectsEmptyImage(t *testing.T) {
	uploader := &Uploader{UploadURL: "http://cdn.invalid"}
	_, err := uploader.Upload(context.Background(), "a.jpg", nil)
	require.Error(t, err)
}

func TestUploadPropagatesCDNFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t","expire":1,"signature":"s"}`))
	}))
	defer backend.Close()
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer cdn.Close()

	uploader := &Uploader{
		Auth:      gateway.New(backend.URL, 2*time.Second, testLogger()),
		UploadURL: cdn.URL,
		Client:    cdn.Client(),
	}
	_, err := uploader.Upload(context.Background(), "a.jpg", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
