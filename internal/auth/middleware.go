package auth

import (
	"net/http"

	"github.com/alhaja/alhaja-admin/internal/shared"
)

// RequireAuth redirects unauthenticated requests to the login page. It
// also runs the periodic rehydration check on authenticated ones, so a
// stale token is caught before the page handler spends a backend call
// on it.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil {
			h.service.Rehydrate(r.Context(), sess)
		}
		if !sess.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
