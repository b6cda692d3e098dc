// Package auth owns the login, registration and logout flows, plus the
// session rehydration check that runs when the app comes back into
// focus.
package auth

import (
	"context"
	"time"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/shared"
)

// rehydrateInterval bounds how often a focused tab revalidates its
// token against the backend.
const rehydrateInterval = 5 * time.Minute

// Service wraps the credential flows around the backend gateway.
type Service struct {
	client *gateway.Client
}

// NewService constructs a new Service.
func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Login exchanges credentials for a bearer token and stores the full
// credential pair in the session.
func (s *Service) Login(ctx context.Context, sess *shared.Session, email, password string) error {
	resp, err := s.client.Login(ctx, gateway.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	sess.SetCredentials(resp.Token, shared.Identity{
		ID:    resp.User.ID,
		Email: resp.User.Email,
		Name:  resp.User.Name,
	})
	sess.Set("checked_at", time.Now().UTC().Format(time.RFC3339))
	return nil
}

// Register creates an account. The operator still logs in afterwards;
// registration never stores a credential.
func (s *Service) Register(ctx context.Context, email, name, password string) error {
	return s.client.Register(ctx, gateway.RegisterRequest{Email: email, Name: name, Password: password})
}

// Rehydrate revalidates the stored token against the backend. Any
// failure, network errors included, collapses the session to logged
// out; rehydration itself never fails the request.
func (s *Service) Rehydrate(ctx context.Context, sess *shared.Session) {
	if sess == nil || !sess.Authenticated() {
		return
	}
	if fresh(sess.Get("checked_at")) {
		return
	}
	user, err := s.client.Me(shared.ContextWithToken(ctx, sess.Token()))
	if err != nil {
		sess.ClearCredentials()
		return
	}
	sess.SetCredentials(sess.Token(), shared.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	sess.Set("checked_at", time.Now().UTC().Format(time.RFC3339))
}

func fresh(checkedAt string) bool {
	if checkedAt == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, checkedAt)
	if err != nil {
		return false
	}
	return time.Since(t) < rehydrateInterval
}
