package server

import (
	"context"
	"net/http"

	"github.com/momentam/admin-server/auth"
	"github.com/momentam/admin-server/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the decoded session for the current request.
const ContextKeySession ContextKey = "session"

// RequireSession is the route gate for server-rendered pages. A missing or
// invalid session cookie redirects to the login path; the protected handler
// is never invoked. Decode failure is treated identically to no token.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess := s.session.FromRequest(r)
			if !sess.Valid() {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSessionAPI gates JSON routes. Unlike the page gate it answers 401
// rather than redirecting, so the view layer can tell "you're logged out"
// apart from a failed resource call.
func (s *Server) RequireSessionAPI() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess := s.session.FromRequest(r)
			if !sess.Valid() {
				writeJSONError(w, http.StatusUnauthorized, "not_authenticated", "")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// RedirectAuthenticated keeps authenticated users away from the auth paths:
// a valid session visiting the login page is sent to the landing page.
func (s *Server) RedirectAuthenticated() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.session.FromRequest(r).Valid() {
				http.Redirect(w, r, DefaultLandingPath, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// SessionFromContext returns the decoded session the route gate stored for
// this request, or NotAuthenticatedErr when there is none.
func SessionFromContext(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(ContextKeySession).(*session.Session)
	if !ok || !sess.Valid() {
		return nil, auth.NotAuthenticatedErr
	}
	return sess, nil
}
