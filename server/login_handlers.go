package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/momentam/admin-server/auth"
	"github.com/pkg/errors"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName    string
	Error      string
	Email      string // Preserve email on error
	SSOEnabled bool
}

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Sign in</title></head>
<body>
<h1>{{.AppName}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/auth/login">
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
{{if .SSOEnabled}}<p><a href="/auth/sso/login">Sign in with SSO</a></p>{{end}}
</body>
</html>
`))

// LoginPageHandler displays the login form (GET /login). The route gate has
// already bounced authenticated visitors to the landing page.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:    s.config.GetAppName(),
			Error:      r.URL.Query().Get("error"),
			Email:      r.URL.Query().Get("email"),
			SSOEnabled: s.sso != nil,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTmpl.Execute(w, data); err != nil {
			s.logger.Error().Err(err).Msg("failed to render login page")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form (POST /auth/login):
// authenticate against the backend, mint the session cookie, redirect to the
// landing page. Failures are recovered here, at the boundary closest to the
// user, and never propagate into page rendering.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")

		identity, credential, err := s.auth.Authenticate(r.Context(), email, password)
		if err != nil {
			s.redirectLoginError(w, r, loginErrorMessage(err), email)
			return
		}

		token, err := s.session.Mint(identity, credential)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to mint session")
			s.redirectLoginError(w, r, "Something went wrong. Please try again later.", email)
			return
		}

		s.session.SetCookie(w, token)
		http.Redirect(w, r, DefaultLandingPath, http.StatusSeeOther)
	}
}

// LogoutHandler destroys the session cookie and returns to the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.session.ClearCookie(w)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// IndexHandler routes the bare domain: authenticated browsers land on the
// dashboard, everyone else on the login page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.session.FromRequest(r).Valid() {
			http.Redirect(w, r, DefaultLandingPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// loginErrorMessage maps the auth error taxonomy to what the user sees. The
// backend's own rejection reasons pass through verbatim; everything else is
// generic.
func loginErrorMessage(err error) string {
	var rejected *auth.RejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.Is(err, auth.InvalidCredentialsErr):
		return "Invalid credentials"
	default:
		return "Something went wrong. Please try again later."
	}
}

// redirectLoginError sends the browser back to the login page with an inline
// error message.
func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}
