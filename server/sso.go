package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/momentam/admin-server/internal/config"
	"github.com/momentam/admin-server/session"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	ssoStateCookieName = "momentam_sso_state"
	ssoNonceCookieName = "momentam_sso_nonce"
	ssoFlowLifetime    = 5 * time.Minute
)

// SSOAuthenticator handles the optional OIDC login flow. It ends in the same
// place as the credentials flow: a minted session cookie.
type SSOAuthenticator struct {
	oauthConfig  oauth2.Config
	verifier     *oidc.IDTokenVerifier
	roleClaim    string
	cookieSecure bool
}

// NewSSOAuthenticator discovers the OIDC provider and prepares the flow.
func NewSSOAuthenticator(ctx context.Context, cfg config.OIDCConfig, cookieSecure bool) (*SSOAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetOIDCIssuerURL())
	if err != nil {
		return nil, errors.Wrap(err, "[NewSSOAuthenticator] OIDC discovery failed")
	}

	return &SSOAuthenticator{
		oauthConfig: oauth2.Config{
			ClientID:     cfg.GetOIDCClientID(),
			ClientSecret: cfg.GetOIDCClientSecret(),
			RedirectURL:  cfg.GetOIDCRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.GetOIDCClientID()}),
		roleClaim:    cfg.GetOIDCRoleClaim(),
		cookieSecure: cookieSecure,
	}, nil
}

// SSOLoginHandler starts the OIDC flow: random state and nonce pinned in
// short-lived cookies, then a redirect to the provider.
func (s *Server) SSOLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := randomToken()
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate SSO state")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}
		nonce, err := randomToken()
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate SSO nonce")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}

		s.setSSOFlowCookie(w, ssoStateCookieName, state)
		s.setSSOFlowCookie(w, ssoNonceCookieName, nonce)

		http.Redirect(w, r, s.sso.oauthConfig.AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
	}
}

// SSOCallbackHandler finishes the OIDC flow: validate state, exchange the
// code, verify the ID token and its nonce, then mint the same session
// artifact the credentials flow produces.
func (s *Server) SSOCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(ssoStateCookieName)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			http.Error(w, "State mismatch: request likely expired", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code was provided", http.StatusBadRequest)
			return
		}

		oauthToken, err := s.sso.oauthConfig.Exchange(r.Context(), code)
		if err != nil {
			s.logger.Error().Err(err).Msg("oauth2 code exchange failed")
			s.redirectLoginError(w, r, "SSO sign-in failed. Please try again.", "")
			return
		}

		rawIDToken, ok := oauthToken.Extra("id_token").(string)
		if !ok {
			s.logger.Error().Msg("SSO provider response missing id_token")
			s.redirectLoginError(w, r, "SSO sign-in failed. Please try again.", "")
			return
		}

		idToken, err := s.sso.verifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			s.logger.Error().Err(err).Msg("ID token verification failed")
			s.redirectLoginError(w, r, "SSO sign-in failed. Please try again.", "")
			return
		}

		nonceCookie, err := r.Cookie(ssoNonceCookieName)
		if err != nil || nonceCookie.Value == "" || idToken.Nonce != nonceCookie.Value {
			http.Error(w, "Nonce mismatch: request likely expired", http.StatusBadRequest)
			return
		}

		identity, err := s.sso.identityFromIDToken(idToken)
		if err != nil {
			s.logger.Warn().Err(err).Msg("SSO identity rejected")
			s.redirectLoginError(w, r, "Your SSO account has no admin role assigned.", "")
			return
		}

		token, err := s.session.Mint(identity, session.Credential{
			AccessToken:  oauthToken.AccessToken,
			RefreshToken: oauthToken.RefreshToken,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to mint session")
			s.redirectLoginError(w, r, "Something went wrong. Please try again later.", "")
			return
		}

		s.session.SetCookie(w, token)
		http.Redirect(w, r, DefaultLandingPath, http.StatusSeeOther)
	}
}

// identityFromIDToken maps verified ID-token claims onto the session
// identity. The role is taken from the configured claim and never invented
// here: an account without one cannot sign in.
func (a *SSOAuthenticator) identityFromIDToken(idToken *oidc.IDToken) (session.Identity, error) {
	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return session.Identity{}, errors.Wrap(err, "[identityFromIDToken] parse claims")
	}

	role, _ := claims[a.roleClaim].(string)
	if role == "" {
		return session.Identity{}, errors.Errorf("[identityFromIDToken] claim %q is missing or empty", a.roleClaim)
	}

	email, _ := claims["email"].(string)
	username, _ := claims["preferred_username"].(string)

	return session.Identity{
		ID:       idToken.Subject,
		Email:    email,
		Username: username,
		Role:     role,
	}, nil
}

func (s *Server) setSSOFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   s.sso.cookieSecure,
		HttpOnly: true,
		Expires:  time.Now().Add(ssoFlowLifetime),
	})
}

func randomToken() (string, error) {
	buff := make([]byte, 16)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
