package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/momentam/admin-server/auth"
	"github.com/momentam/admin-server/backend"
	"github.com/momentam/admin-server/backend/backendtest"
	"github.com/momentam/admin-server/internal/config"
	"github.com/momentam/admin-server/server"
	"github.com/momentam/admin-server/session"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "0123456789abcdef0123456789abcdef"
	testCookieName    = "momentam_admin_session"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct"
)

var testAdminUser = backend.UserSummary{
	ID:       "1",
	Email:    testAdminEmail,
	Username: "admin",
	Role:     "admin",
}

// testConfig overrides the rate-limit knobs so ordinary tests never throttle.
type testConfig struct {
	config.EnvVars
	config.SessionVars
	config.OIDCVars

	loginRatePerMinute int
	loginRateBurst     int
}

func (c testConfig) GetLoginRatePerMinute() int {
	if c.loginRatePerMinute > 0 {
		return c.loginRatePerMinute
	}
	return 6000
}

func (c testConfig) GetLoginRateBurst() int {
	if c.loginRateBurst > 0 {
		return c.loginRateBurst
	}
	return 100
}

type serverFixture struct {
	stub    *backendtest.Server
	encoder *session.Encoder
	srv     *server.Server
}

func setupServerFixture(t *testing.T, cfg testConfig) *serverFixture {
	t.Helper()

	stub := backendtest.New(t)
	stub.AddAccount(t, testAdminEmail, testAdminPassword, testAdminUser)
	stub.UsersData = []backend.User{{ID: "u1", Email: "customer@example.com", Role: "user", Status: "active"}}
	stub.BookingsData = []backend.Booking{{ID: "b1", UserID: "u1", PhotographerID: "p1", Status: "confirmed"}}

	client, err := backend.New(stub.URL)
	require.NoError(t, err)

	service, err := auth.NewService(client)
	require.NoError(t, err)

	encoder, err := session.NewEncoder([]byte(testSecret), 24*time.Hour, testCookieName, false)
	require.NoError(t, err)

	srv, err := server.New(cfg, server.Deps{
		Auth:    service,
		Session: encoder,
		Backend: client,
	})
	require.NoError(t, err)

	return &serverFixture{stub: stub, encoder: encoder, srv: srv}
}

// sessionCookie mints a valid session backed by a token the fake backend
// recognizes.
func (f *serverFixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	token, err := f.encoder.Mint(
		session.Identity{ID: testAdminUser.ID, Email: testAdminUser.Email, Username: testAdminUser.Username, Role: testAdminUser.Role},
		session.Credential{AccessToken: f.stub.IssueToken(testAdminUser.ID)},
	)
	require.NoError(t, err)

	return &http.Cookie{Name: testCookieName, Value: token}
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func postLogin(t *testing.T, f *serverFixture, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestProtectedPathRedirectsWithoutSession(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteDashboard, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	require.Zero(t, f.stub.FetchCalls(), "protected handler must not run")
}

func TestLoginPageRedirectsAuthenticated(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	req := httptest.NewRequest(http.MethodGet, server.RouteLogin, nil)
	req.AddCookie(f.sessionCookie(t))
	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.DefaultLandingPath, rec.Header().Get("Location"))
}

func TestLoginPageRendersForm(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteLogin+"?error=Invalid+credentials&email=a%40b.c", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")
	require.Contains(t, rec.Body.String(), `value="a@b.c"`)
}

func TestLoginFlowMintsSessionAndAuthorizesFetches(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := postLogin(t, f, testAdminEmail, testAdminPassword)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.DefaultLandingPath, rec.Header().Get("Location"))

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie, "successful login must set the session cookie")
	require.True(t, cookie.HttpOnly)

	sess := f.encoder.Decode(cookie.Value)
	require.NotNil(t, sess)
	require.Equal(t, "admin", sess.Identity.Role)

	// The protected fetch carries the minted token as a bearer credential.
	req := httptest.NewRequest(http.MethodGet, server.RouteAPIUsers, nil)
	req.AddCookie(cookie)
	apiRec := f.do(req)

	require.Equal(t, http.StatusOK, apiRec.Code)
	require.Equal(t, sess.Credential.AccessToken, f.stub.LastBearer())

	var page backend.UsersPage
	require.NoError(t, json.Unmarshal(apiRec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	require.Equal(t, "u1", page.Data[0].ID)
}

func TestFailedLoginMintsNothing(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := postLogin(t, f, testAdminEmail, "wrong")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, server.RouteLogin, location.Path)
	require.Equal(t, "Invalid credentials", location.Query().Get("error"))
	require.Nil(t, sessionCookieFrom(rec))

	// The browser remains unauthenticated.
	dashRec := f.do(httptest.NewRequest(http.MethodGet, server.RouteDashboard, nil))
	require.Equal(t, http.StatusSeeOther, dashRec.Code)
	require.Equal(t, server.RouteLogin, dashRec.Header().Get("Location"))
}

func TestRejectionMessagePassedThrough(t *testing.T) {
	f := setupServerFixture(t, testConfig{})
	f.stub.LockAccount(testAdminEmail)

	rec := postLogin(t, f, testAdminEmail, testAdminPassword)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Account locked", location.Query().Get("error"))
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	// Mint with a clock far enough in the past that exp has passed.
	past := time.Now().Add(-48 * time.Hour)
	expiredEncoder, err := session.NewEncoder([]byte(testSecret), 24*time.Hour, testCookieName, false,
		session.WithNowTime(func() time.Time { return past }))
	require.NoError(t, err)

	token, err := expiredEncoder.Mint(
		session.Identity{ID: "1", Email: testAdminEmail, Role: "admin"},
		session.Credential{AccessToken: "tok123"},
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, server.RouteDashboard, nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
}

func TestAPIWithoutSessionReturns401(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPIBookings, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "not_authenticated")
}

func TestAPIBackendRejectionReadsAsSessionExpired(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	// A well-formed session whose token the backend no longer accepts.
	token, err := f.encoder.Mint(
		session.Identity{ID: "1", Email: testAdminEmail, Role: "admin"},
		session.Credential{AccessToken: "tok-revoked"},
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, server.RouteAPIBookings, nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "session_expired")
}

func TestSessionInfoOmitsTokens(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	cookie := f.sessionCookie(t)
	req := httptest.NewRequest(http.MethodGet, server.RouteAPISession, nil)
	req.AddCookie(cookie)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), testAdminEmail)
	require.NotContains(t, rec.Body.String(), "tok-", "bearer tokens must never reach client-side script")
}

func TestDashboardRendersIdentity(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	req := httptest.NewRequest(http.MethodGet, server.RouteDashboard, nil)
	req.AddCookie(f.sessionCookie(t))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), testAdminEmail)
	require.Contains(t, rec.Body.String(), "admin")
}

func TestLogoutClearsSession(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	req := httptest.NewRequest(http.MethodGet, server.RouteAuthLogout, nil)
	req.AddCookie(f.sessionCookie(t))
	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var cleared bool
	for _, c := range cookies {
		if c.Name == testCookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "logout must expire the session cookie")
}

func TestIndexRoutesByAuthState(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(f.sessionCookie(t))
	rec = f.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.DefaultLandingPath, rec.Header().Get("Location"))
}

func TestLoginRateLimit(t *testing.T) {
	f := setupServerFixture(t, testConfig{loginRatePerMinute: 1, loginRateBurst: 2})

	first := postLogin(t, f, testAdminEmail, "wrong")
	require.Equal(t, http.StatusSeeOther, first.Code)
	second := postLogin(t, f, testAdminEmail, "wrong")
	require.Equal(t, http.StatusSeeOther, second.Code)

	third := postLogin(t, f, testAdminEmail, "wrong")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	require.NotEmpty(t, third.Header().Get("Retry-After"))
}

func TestHealthz(t *testing.T) {
	f := setupServerFixture(t, testConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteHealthz, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestPathClassification(t *testing.T) {
	require.True(t, server.IsProtectedPath("/dashboard"))
	require.True(t, server.IsProtectedPath("/dashboard/users"))
	require.True(t, server.IsProtectedPath("/home"))
	require.True(t, server.IsProtectedPath("/api/bookings"))
	require.False(t, server.IsProtectedPath("/login"))
	require.False(t, server.IsProtectedPath("/healthz"))

	require.True(t, server.IsAuthPath("/login"))
	require.False(t, server.IsAuthPath("/dashboard"))
}
