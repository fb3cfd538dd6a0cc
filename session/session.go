package session

import "time"

// Identity is the authenticated principal as returned by the Momentam
// backend at login. Role is an opaque string; which values are allowed to do
// what is route-level policy, not a session concern.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

// Credential holds the opaque bearer tokens issued by the backend. They are
// treated as blobs: never parsed locally, only checked for presence.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Session is the decoded session artifact for one browser context. It is
// created once at login and read on every gated request; there is no
// server-side revocation, expiry is purely time based.
type Session struct {
	Identity   Identity
	Credential Credential
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Valid reports whether the session carries enough to be treated as
// authenticated: a principal ID and a non-empty access token.
func (s *Session) Valid() bool {
	return s != nil && s.Identity.ID != "" && s.Credential.AccessToken != ""
}
