package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, backend *httptest.Server) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	svc := NewService(newTestClient(backend))
	return NewHandler(testLogger(), svc, templates, nil, shared.NewCSRFManager("csrf-secret"))
}

func postForm(path string, form url.Values, sess *shared.Session) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(shared.ContextWithSession(context.Background(), sess))
}

func TestHandleLoginRejectsInvalidForm(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for an invalid form")
	}))
	defer backend.Close()

	h := newTestHandler(t, backend)
	sess := newTestSession(t)

	rec := httptest.NewRecorder()
	h.handleLogin(rec, postForm("/login", url.Values{"email": {"no-es-email"}, "password": {"secret123"}}, sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email válido")
	assert.False(t, sess.Authenticated())
}

func TestHandleLoginShowsBackendRejection(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Credenciales inválidas"}`))
	}))
	defer backend.Close()

	h := newTestHandler(t, backend)
	sess := newTestSession(t)

	rec := httptest.NewRecorder()
	h.handleLogin(rec, postForm("/login", url.Values{"email": {"ana@alhaja.com"}, "password": {"wrongpass"}}, sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Credenciales inválidas")
	assert.False(t, sess.Authenticated())
}

func TestHandleLoginStoresCredentialsAndRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","email":"ana@alhaja.com","name":"Ana"}}`))
	}))
	defer backend.Close()

	h := newTestHandler(t, backend)
	sess := newTestSession(t)

	rec := httptest.NewRecorder()
	h.handleLogin(rec, postForm("/login", url.Values{"email": {"ana@alhaja.com"}, "password": {"secret123"}}, sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.True(t, sess.Authenticated())
	assert.Equal(t, "tok-1", sess.Token())
	assert.Equal(t, "Ana", sess.Identity().Name)
}

func TestHandleRegisterDoesNotAuthenticate(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	h := newTestHandler(t, backend)
	sess := newTestSession(t)

	form := url.Values{"email": {"ana@alhaja.com"}, "name": {"Ana"}, "password": {"secret123"}, "password_confirm": {"secret123"}}
	rec := httptest.NewRecorder()
	h.handleRegister(rec, postForm("/register", form, sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, sess.Authenticated())
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer backend.Close()

	h := newTestHandler(t, backend)
	sess := newTestSession(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run")
	})
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = req.WithContext(shared.ContextWithSession(context.Background(), sess))
	rec := httptest.NewRecorder()
	h.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
