package gateway

import "errors"

// ErrSessionExpired classifies an HTTP 401 from the backend. Callers
// must clear the session and redirect to login, never retry.
var ErrSessionExpired = errors.New("session expired")

// APIError carries a backend rejection (any non-2xx other than 401)
// with the message extracted from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsSessionExpired reports whether err is the 401 classification.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// RejectionMessage returns the backend's message when err is an
// APIError, or the generic fallback otherwise. Views surface validation
// rejections verbatim and everything else behind a fixed message.
func RejectionMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Ocurrió un error inesperado. Intentá nuevamente."
}
