// Package server wires the login boundary, the route gate and the dashboard
// proxy handlers into one HTTP surface.
package server

import (
	"net/http"

	"github.com/momentam/admin-server/auth"
	"github.com/momentam/admin-server/backend"
	"github.com/momentam/admin-server/internal/config"
	"github.com/momentam/admin-server/internal/metrics"
	"github.com/momentam/admin-server/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Deps holds the dependencies the server routes over.
type Deps struct {
	Auth    *auth.Service
	Session *session.Encoder
	Backend *backend.Client
	SSO     *SSOAuthenticator // optional, nil disables the SSO routes
	Metrics metrics.Collector
	Logger  zerolog.Logger

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config

	auth    *auth.Service
	session *session.Encoder
	backend *backend.Client
	sso     *SSOAuthenticator

	metrics        metrics.Collector
	metricsHandler http.Handler
	logger         zerolog.Logger
	loginLimiter   *loginRateLimiter
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if deps.Session == nil {
		return nil, errors.New("[server.New] session encoder is required")
	}
	if deps.Backend == nil {
		return nil, errors.New("[server.New] backend client is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}

	s := &Server{
		env:            cfg.GetEnv(),
		mux:            http.NewServeMux(),
		config:         cfg,
		auth:           deps.Auth,
		session:        deps.Session,
		backend:        deps.Backend,
		sso:            deps.SSO,
		metrics:        deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		logger:         deps.Logger,
		loginLimiter:   newLoginRateLimiter(cfg.GetLoginRatePerMinute(), cfg.GetLoginRateBurst()),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.logger.Debug().Str("route", route).Msg("registered route")
	}
}
