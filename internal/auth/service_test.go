package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/shared"
)

func newTestSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "alhaja_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestRehydrateClearsCredentialsOnRejectedToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	svc := NewService(newTestClient(backend))
	sess := newTestSession(t)
	sess.SetCredentials("stale-token", shared.Identity{ID: "u1", Email: "a@b.c", Name: "Ana"})

	svc.Rehydrate(context.Background(), sess)

	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.Identity())
}

func TestRehydrateClearsCredentialsOnNetworkFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // connection refused from here on

	svc := NewService(newTestClient(backend))
	sess := newTestSession(t)
	sess.SetCredentials("token", shared.Identity{ID: "u1", Email: "a@b.c", Name: "Ana"})

	svc.Rehydrate(context.Background(), sess)

	assert.False(t, sess.Authenticated())
}

func TestRehydrateSkipsBackendWhileFresh(t *testing.T) {
	var calls atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.c","name":"Ana"}`))
	}))
	defer backend.Close()

	svc := NewService(newTestClient(backend))
	sess := newTestSession(t)
	sess.SetCredentials("token", shared.Identity{ID: "u1", Email: "a@b.c", Name: "Ana"})
	sess.Set("checked_at", time.Now().UTC().Format(time.RFC3339))

	svc.Rehydrate(context.Background(), sess)

	assert.True(t, sess.Authenticated())
	assert.Equal(t, int64(0), calls.Load())
}

func TestRehydrateRefreshesIdentity(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","email":"nuevo@b.c","name":"Ana María"}`))
	}))
	defer backend.Close()

	svc := NewService(newTestClient(backend))
	sess := newTestSession(t)
	sess.SetCredentials("token", shared.Identity{ID: "u1", Email: "a@b.c", Name: "Ana"})
	sess.Set("checked_at", time.Now().Add(-time.Hour).UTC().Format(time.RFC3339))

	svc.Rehydrate(context.Background(), sess)

	require.True(t, sess.Authenticated())
	assert.Equal(t, "nuevo@b.c", sess.Identity().Email)
}

func newTestClient(backend *httptest.Server) *gateway.Client {
	return gateway.New(backend.URL, 2*time.Second, testLogger())
}
