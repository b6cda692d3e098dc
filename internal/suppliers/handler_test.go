package suppliers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

func newTestHandler(t *testing.T, backend *httptest.Server) (*Handler, *shared.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates, err := view.NewEngine()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "alhaja_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetCredentials("tok-1", shared.Identity{ID: "u1", Email: "ana@alhaja.com", Name: "Ana"})

	gw := gateway.New(backend.URL, 2*time.Second, logger)
	failures := &httpx.GatewayErrors{Logger: logger, Sessions: manager}
	return NewHandler(logger, gw, templates, shared.NewCSRFManager("csrf"), failures), sess
}

func authedRequest(method, path string, sess *shared.Session) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := shared.ContextWithSession(context.Background(), sess)
	ctx = shared.ContextWithToken(ctx, sess.Token())
	return req.WithContext(ctx)
}

func TestHandleListRendersSuppliers(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suppliers", r.URL.Path)
		// Archived suppliers stay hidden unless asked for.
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"s1","name":"Plata del Sur","active":true}]`))
	}))
	defer backend.Close()

	h, sess := newTestHandler(t, backend)
	rec := httptest.NewRecorder()
	h.handleList(rec, authedRequest(http.MethodGet, "/suppliers", sess))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plata del Sur")
}

func TestHandleListExpiredTokenRedirectsOnce(t *testing.T) {
	var calls int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	h, sess := newTestHandler(t, backend)
	rec := httptest.NewRecorder()
	h.handleList(rec, authedRequest(http.MethodGet, "/suppliers", sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, sess.Authenticated(), "credential must be dropped")
	assert.Equal(t, 1, calls, "a rejected request is never retried")
}

func TestHandleCreateRejectsInvalidForm(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for an invalid form")
	}))
	defer backend.Close()

	h, sess := newTestHandler(t, backend)
	req := authedRequest(http.MethodPost, "/suppliers", sess)
	req.PostForm = map[string][]string{"name": {""}, "url": {"no-url"}}

	rec := httptest.NewRecorder()
	h.handleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "El nombre es obligatorio")
}
