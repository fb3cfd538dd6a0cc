package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/momentam/admin-server/session"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	testCookieName = "momentam_admin_session"
	testLifetime   = 24 * time.Hour
)

var testIdentity = session.Identity{
	ID:       "1",
	Email:    "admin@example.com",
	Username: "admin",
	Role:     "admin",
}

var testCredential = session.Credential{
	AccessToken:  "tok123",
	RefreshToken: "refresh456",
}

func newTestEncoder(t *testing.T, options ...session.EncoderOption) *session.Encoder {
	t.Helper()
	encoder, err := session.NewEncoder([]byte(testSecret), testLifetime, testCookieName, false, options...)
	require.NoError(t, err)
	return encoder
}

func TestNewEncoderValidation(t *testing.T) {
	_, err := session.NewEncoder(nil, testLifetime, testCookieName, false)
	require.Error(t, err)

	_, err = session.NewEncoder([]byte(testSecret), 0, testCookieName, false)
	require.Error(t, err)

	_, err = session.NewEncoder([]byte(testSecret), testLifetime, "", false)
	require.Error(t, err)
}

func TestMintDecodeRoundTrip(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(testIdentity, testCredential)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess := encoder.Decode(token)
	require.NotNil(t, sess)
	require.Equal(t, testIdentity, sess.Identity)
	require.Equal(t, testCredential, sess.Credential)
	require.True(t, sess.Valid())
	require.True(t, sess.ExpiresAt.After(sess.IssuedAt))
}

func TestDecodeEmptyToken(t *testing.T) {
	encoder := newTestEncoder(t)
	require.Nil(t, encoder.Decode(""))
}

func TestDecodeMalformedToken(t *testing.T) {
	encoder := newTestEncoder(t)
	require.Nil(t, encoder.Decode("not-a-jwt"))
}

func TestDecodeTamperedSignature(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(testIdentity, testCredential)
	require.NoError(t, err)

	// Flip a byte in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	require.Nil(t, encoder.Decode(tampered))
}

func TestDecodeWrongSecret(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(testIdentity, testCredential)
	require.NoError(t, err)

	other, err := session.NewEncoder([]byte("another-secret-another-secret-00"), testLifetime, testCookieName, false)
	require.NoError(t, err)
	require.Nil(t, other.Decode(token))
}

func TestDecodeExpiredToken(t *testing.T) {
	mintTime := time.Now().Add(-testLifetime - time.Second)
	minter := newTestEncoder(t, session.WithNowTime(func() time.Time { return mintTime }))

	token, err := minter.Mint(testIdentity, testCredential)
	require.NoError(t, err)

	// The signature is valid, but exp is in the past.
	decoder := newTestEncoder(t)
	require.Nil(t, decoder.Decode(token))
}

func TestDecodeRejectsMissingPrincipal(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(session.Identity{Email: "nobody@example.com", Role: "admin"}, testCredential)
	require.NoError(t, err)
	require.Nil(t, encoder.Decode(token))
}

func TestDecodeRejectsMissingAccessToken(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(testIdentity, session.Credential{})
	require.NoError(t, err)
	require.Nil(t, encoder.Decode(token))
}

func TestCookieRoundTrip(t *testing.T) {
	encoder := newTestEncoder(t)

	token, err := encoder.Mint(testIdentity, testCredential)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	encoder.SetCookie(rec, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, testCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])

	sess := encoder.FromRequest(req)
	require.NotNil(t, sess)
	require.Equal(t, testIdentity, sess.Identity)
}

func TestClearCookieExpiresSession(t *testing.T) {
	encoder := newTestEncoder(t)

	rec := httptest.NewRecorder()
	encoder.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, testCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestFromRequestWithoutCookie(t *testing.T) {
	encoder := newTestEncoder(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	require.Nil(t, encoder.FromRequest(req))
}
