// Package auth exchanges admin credentials for a backend-issued identity and
// token set. It owns the error taxonomy the login boundary recovers with.
package auth

import (
	"context"
	"strings"

	"github.com/momentam/admin-server/backend"
	"github.com/momentam/admin-server/internal/metrics"
	"github.com/momentam/admin-server/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BackendClient is the slice of the backend API the authenticator needs.
type BackendClient interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
}

// Service is the credential authenticator. It has no storage side effects;
// packaging the result into a session is the caller's responsibility.
type Service struct {
	backend BackendClient
	logger  zerolog.Logger
	metrics metrics.Collector
}

// ServiceOption modifies the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector metrics.Collector) ServiceOption {
	return func(s *Service) {
		s.metrics = collector
	}
}

// NewService initializes the authenticator with its backend dependency.
func NewService(client BackendClient, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] backend client is required")
	}

	service := &Service{
		backend: client,
		logger:  zerolog.Nop(),
		metrics: metrics.Nop{},
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Authenticate exchanges the credential pair for the backend-issued identity
// and token set. The identity, including its role, is returned exactly as
// the backend supplied it.
//
// Error mapping:
//   - empty input or a 2xx without token/identity -> InvalidCredentialsErr
//   - backend 4xx -> *RejectedError with the backend message, falling back
//     to "Invalid credentials" when none was supplied
//   - anything else (timeout, network, 5xx) -> ServerErr, cause logged
func (s *Service) Authenticate(ctx context.Context, email, password string) (session.Identity, session.Credential, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		s.metrics.RecordLoginFailure("invalid_credentials")
		return session.Identity{}, session.Credential{}, InvalidCredentialsErr
	}

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			s.metrics.RecordLoginFailure("rejected")
			message := apiErr.Message
			if message == "" {
				message = "Invalid credentials"
			}
			return session.Identity{}, session.Credential{}, &RejectedError{Message: message}
		}

		s.logger.Error().Err(err).Str("email", email).Msg("backend login call failed")
		s.metrics.RecordLoginFailure("server_error")
		return session.Identity{}, session.Credential{}, ServerErr
	}

	// A 2xx without a token or an identity is a rejection the backend
	// failed to flag with an error status.
	if resp.AccessToken == "" || resp.User.ID == "" {
		s.metrics.RecordLoginFailure("invalid_credentials")
		return session.Identity{}, session.Credential{}, InvalidCredentialsErr
	}

	s.metrics.RecordLoginSuccess()

	identity := session.Identity{
		ID:       resp.User.ID,
		Email:    resp.User.Email,
		Username: resp.User.Username,
		Role:     resp.User.Role,
	}
	credential := session.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	return identity, credential, nil
}
