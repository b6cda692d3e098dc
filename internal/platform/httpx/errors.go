// Package httpx provides HTTP response utilities shared by the page
// handlers.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/shared"
)

// GatewayErrors centralizes what every page handler does when a backend
// call fails.
type GatewayErrors struct {
	Logger   *slog.Logger
	Sessions *shared.SessionManager
}

// HandleExpired reports whether err was an expired credential. When it
// is, the stored credential is dropped and the request redirected to
// the login page, exactly once; the caller must return without writing
// anything else. A request is never retried with a dead token.
func (g *GatewayErrors) HandleExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !gateway.IsSessionExpired(err) {
		return false
	}
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.ClearCredentials()
		sess.AddFlash(shared.FlashMessage{Kind: "warning", Message: "Tu sesión expiró. Ingresá de nuevo."})
	}
	g.Logger.Info("backend rejected credential, forcing re-login", slog.String("path", r.URL.Path))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}
