package session

import (
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var jwtSigningMethod = jwtlib.SigningMethodHS256

// sessionClaims is the claims schema embedded in the session cookie. The
// claims are set exactly once at mint time from the backend login response.
type sessionClaims struct {
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	jwtlib.RegisteredClaims
}

// Encoder mints and decodes the signed, time-boxed session cookie. It is the
// only component that writes the session artifact; the route gate and the
// API handlers only read it.
type Encoder struct {
	secret       []byte
	lifetime     time.Duration
	cookieName   string
	cookieSecure bool

	nowTime func() time.Time
}

// EncoderOption modifies an Encoder at construction time.
type EncoderOption func(*Encoder)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) EncoderOption {
	return func(e *Encoder) {
		e.nowTime = nowFunc
	}
}

// NewEncoder creates an Encoder with the process-wide signing secret and
// session policy loaded at startup.
func NewEncoder(secret []byte, lifetime time.Duration, cookieName string, cookieSecure bool, options ...EncoderOption) (*Encoder, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewEncoder] signing secret is required")
	}
	if lifetime <= 0 {
		return nil, errors.New("[NewEncoder] session lifetime must be positive")
	}
	if cookieName == "" {
		return nil, errors.New("[NewEncoder] cookie name is required")
	}

	encoder := &Encoder{
		secret:       secret,
		lifetime:     lifetime,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(encoder)
	}

	return encoder, nil
}

// CookieName returns the name of the session cookie.
func (e *Encoder) CookieName() string {
	return e.cookieName
}

// Mint embeds the identity and bearer credential into a signed session token.
// The identity comes straight from the backend login response and is never
// mutated here.
func (e *Encoder) Mint(identity Identity, credential Credential) (string, error) {
	now := e.nowTime()
	claims := &sessionClaims{
		Email:        identity.Email,
		Username:     identity.Username,
		Role:         identity.Role,
		AccessToken:  credential.AccessToken,
		RefreshToken: credential.RefreshToken,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(e.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtSigningMethod, claims).SignedString(e.secret)
	if err != nil {
		return "", errors.Wrap(err, "[Encoder.Mint] failed to sign session token")
	}
	return signed, nil
}

// Decode verifies the signature and expiry of a raw session token. It
// returns nil on any failure: missing token, bad signature, expired token,
// malformed payload, or a payload without a principal ID and access token.
// Callers must treat nil as unauthenticated, never as an error condition.
func (e *Encoder) Decode(raw string) *Session {
	if raw == "" {
		return nil
	}

	claims := new(sessionClaims)
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwtlib.WithTimeFunc(e.nowTime),
	)

	token, err := parser.ParseWithClaims(raw, claims, func(token *jwtlib.Token) (interface{}, error) {
		return e.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	sess := &Session{
		Identity: Identity{
			ID:       claims.Subject,
			Email:    claims.Email,
			Username: claims.Username,
			Role:     claims.Role,
		},
		Credential: Credential{
			AccessToken:  claims.AccessToken,
			RefreshToken: claims.RefreshToken,
		},
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}

	if !sess.Valid() {
		return nil
	}
	return sess
}

// SetCookie writes the session token as an HTTP-only cookie. Creating a new
// session overwrites any prior one, last write wins.
func (e *Encoder) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     e.cookieName,
		Value:    token,
		Path:     "/",
		Secure:   e.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  e.nowTime().Add(e.lifetime),
	})
}

// ClearCookie expires the session cookie, destroying the session on the
// client side.
func (e *Encoder) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     e.cookieName,
		Value:    "",
		Path:     "/",
		Secure:   e.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// FromRequest reads and decodes the session cookie from an incoming request.
// A missing cookie and an invalid token both yield nil.
func (e *Encoder) FromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(e.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return e.Decode(cookie.Value)
}
