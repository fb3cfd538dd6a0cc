package auth

import "github.com/pkg/errors"

var (
	// InvalidCredentialsErr means the backend rejected the email/password
	// pair, or accepted the request without issuing a token. Non-retryable
	// without new input.
	InvalidCredentialsErr = errors.New("invalid credentials")

	// NotAuthenticatedErr means a protected call was attempted with no
	// current session. Callers redirect to login instead of letting the
	// request reach the backend without a token.
	NotAuthenticatedErr = errors.New("not authenticated")

	// SessionExpiredErr means the backend returned 401 for a bearer token
	// the session still carried. The user re-authenticates; there is no
	// refresh flow.
	SessionExpiredErr = errors.New("session expired")

	// ServerErr covers network failures, timeouts and 5xx responses. The
	// underlying cause is logged, never shown to the user.
	ServerErr = errors.New("authentication service unavailable")
)

// RejectedError carries the backend's own 4xx rejection reason (account
// locked, too many attempts). The message is passed through to the user
// verbatim.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}
