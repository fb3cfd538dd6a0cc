// Package backendtest provides an in-memory fake of the Momentam REST
// backend for tests, in the spirit of the repo fakes used elsewhere.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/momentam/admin-server/backend"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user         backend.UserSummary
	passwordHash []byte
	locked       bool
}

// Server is a fake Momentam backend listening on a local httptest server.
// Accounts store bcrypt password hashes and successful logins issue opaque
// tokens that gate the /admin resources.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    map[string]*account // keyed by email
	tokens      map[string]string   // access token -> user ID
	loginCalls int
	fetchCalls int
	lastBearer string

	// Canned resources served to authorized callers.
	UsersData          []backend.User
	PhotographersData  []backend.Photographer
	BookingsData       []backend.Booking
	PhotosData         []backend.Photo
	FinanceSummaryData backend.FinanceSummary
}

// New starts a fake backend and registers cleanup with t.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.loginHandler)
	mux.HandleFunc("GET /admin/users", jsonResource(s, func() any { return backend.UsersPage{Data: s.UsersData, Total: len(s.UsersData)} }))
	mux.HandleFunc("GET /admin/photographers", jsonResource(s, func() any { return backend.PhotographersPage{Data: s.PhotographersData, Total: len(s.PhotographersData)} }))
	mux.HandleFunc("GET /admin/bookings", jsonResource(s, func() any { return backend.BookingsPage{Data: s.BookingsData, Total: len(s.BookingsData)} }))
	mux.HandleFunc("GET /admin/photos", jsonResource(s, func() any { return backend.PhotosPage{Data: s.PhotosData, Total: len(s.PhotosData)} }))
	mux.HandleFunc("GET /admin/finances/summary", jsonResource(s, func() any { return s.FinanceSummaryData }))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// AddAccount registers an account with a bcrypt-hashed password.
func (s *Server) AddAccount(t *testing.T, email, password string, user backend.UserSummary) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{user: user, passwordHash: hash}
}

// LockAccount makes subsequent logins for email fail with a 423 and a
// backend-specific message.
func (s *Server) LockAccount(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[email]; ok {
		acc.locked = true
	}
}

// IssueToken mints a token directly, bypassing login. Useful for seeding an
// authorized session in route tests.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "tok-" + uuid.New().String()
	s.tokens[token] = userID
	return token
}

// LoginCalls returns how many login requests reached the fake backend.
func (s *Server) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// FetchCalls returns how many protected resource requests reached the fake
// backend.
func (s *Server) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

// LastBearer returns the bearer token seen on the most recent protected
// resource request.
func (s *Server) LastBearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBearer
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed request"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	if acc.locked {
		writeJSON(w, http.StatusLocked, map[string]string{"message": "Account locked"})
		return
	}

	token := s.IssueToken(acc.user.ID)
	writeJSON(w, http.StatusOK, backend.LoginResponse{
		User:         acc.user,
		AccessToken:  token,
		RefreshToken: "refresh-" + uuid.New().String(),
	})
}

func jsonResource(s *Server, payload func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)

		s.mu.Lock()
		s.fetchCalls++
		s.lastBearer = token
		_, authorized := s.tokens[token]
		body := payload()
		s.mu.Unlock()

		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
