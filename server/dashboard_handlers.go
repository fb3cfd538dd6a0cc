package server

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/momentam/admin-server/backend"
	"github.com/pkg/errors"
)

// DashboardPageData contains data for rendering the dashboard shell.
type DashboardPageData struct {
	AppName  string
	Email    string
	Username string
	Role     string
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Dashboard</title></head>
<body>
<h1>{{.AppName}}</h1>
<p>Signed in as {{.Email}} ({{.Role}}) · <a href="/auth/logout">Sign out</a></p>
<nav>
  <a href="/api/users">Users</a>
  <a href="/api/photographers">Photographers</a>
  <a href="/api/bookings">Bookings</a>
  <a href="/api/photos">Photos</a>
  <a href="/api/finances/summary">Finances</a>
</nav>
</body>
</html>
`))

// DashboardHandler renders the authenticated shell. The data tables load
// through the /api endpoints.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		data := DashboardPageData{
			AppName:  s.config.GetAppName(),
			Email:    sess.Identity.Email,
			Username: sess.Identity.Username,
			Role:     sess.Identity.Role,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := dashboardTmpl.Execute(w, data); err != nil {
			s.logger.Error().Err(err).Msg("failed to render dashboard")
			http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		}
	}
}

// SessionInfo is the current-session view exposed to the browser. The bearer
// tokens never leave the cookie.
type SessionInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionInfoHandler returns the identity and timestamps of the current
// session (GET /api/session).
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "not_authenticated", "")
			return
		}

		writeJSON(w, http.StatusOK, SessionInfo{
			ID:        sess.Identity.ID,
			Email:     sess.Identity.Email,
			Username:  sess.Identity.Username,
			Role:      sess.Identity.Role,
			IssuedAt:  sess.IssuedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}
}

func (s *Server) UsersListHandler() http.HandlerFunc {
	return s.proxyHandler(func(ctx context.Context, token string, page int) (any, error) {
		return s.backend.Users(ctx, token, page)
	})
}

func (s *Server) PhotographersListHandler() http.HandlerFunc {
	return s.proxyHandler(func(ctx context.Context, token string, page int) (any, error) {
		return s.backend.Photographers(ctx, token, page)
	})
}

func (s *Server) BookingsListHandler() http.HandlerFunc {
	return s.proxyHandler(func(ctx context.Context, token string, page int) (any, error) {
		return s.backend.Bookings(ctx, token, page)
	})
}

func (s *Server) PhotosListHandler() http.HandlerFunc {
	return s.proxyHandler(func(ctx context.Context, token string, page int) (any, error) {
		return s.backend.Photos(ctx, token, page)
	})
}

func (s *Server) FinanceSummaryHandler() http.HandlerFunc {
	return s.proxyHandler(func(ctx context.Context, token string, _ int) (any, error) {
		return s.backend.FinanceSummary(ctx, token)
	})
}

// proxyHandler is the shared shape of the read proxies: take the bearer
// token from the current session, fetch from the backend, and translate the
// failure modes so the UI can tell a dead session apart from a failed
// resource call.
func (s *Server) proxyHandler(fetch func(ctx context.Context, token string, page int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "not_authenticated", "")
			return
		}

		out, err := fetch(r.Context(), sess.Credential.AccessToken, pageFromQuery(r))
		if err != nil {
			s.writeProxyError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) writeProxyError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrNoToken):
		// The backend no longer accepts the token; the browser must
		// re-authenticate.
		writeJSONError(w, http.StatusUnauthorized, "session_expired", "")
	case errors.As(err, &apiErr):
		writeJSONError(w, apiErr.Status, "backend_rejected", apiErr.Message)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend fetch failed")
		writeJSONError(w, http.StatusBadGateway, "backend_unavailable", "")
	}
}

func pageFromQuery(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
