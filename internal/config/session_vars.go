package config

import (
	"crypto/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	sessionSecretVar   = "SESSION_SECRET"
	sessionLifetimeVar = "SESSION_LIFETIME"
	cookieNameVar      = "SESSION_COOKIE_NAME"
	cookieSecureVar    = "SESSION_COOKIE_SECURE"
)

type SessionConfig interface {
	GetSessionSecret() []byte
	GetSessionLifetime() time.Duration
	GetSessionCookieName() string
	GetSessionCookieSecure() bool
}

type SessionVars struct{}

var _ SessionConfig = SessionVars{}

var (
	devSecretOnce sync.Once
	devSecret     []byte
)

// GetSessionSecret returns the process-wide signing secret. Outside DEV the
// secret must be configured; in DEV a random one is generated once per
// process, which means sessions do not survive restarts.
func (SessionVars) GetSessionSecret() []byte {
	if secret := os.Getenv(sessionSecretVar); secret != "" {
		if len(secret) < 16 {
			log.Fatal().Msg("SESSION_SECRET must be at least 16 characters")
		}
		return []byte(secret)
	}

	if (EnvVars{}).GetEnv() != "DEV" {
		log.Fatal().Msg("SESSION_SECRET must be set outside DEV")
	}

	devSecretOnce.Do(func() {
		buff := make([]byte, 32)
		if _, err := rand.Read(buff); err != nil {
			log.Fatal().Err(err).Msg("failed to generate random session secret")
		}
		devSecret = buff
		log.Warn().Msg("SESSION_SECRET not set, generated a random secret; sessions will not survive a restart")
	})
	return devSecret
}

func (SessionVars) GetSessionLifetime() time.Duration {
	return GetEnvDuration(sessionLifetimeVar, 24*time.Hour)
}

func (SessionVars) GetSessionCookieName() string {
	return GetEnv(cookieNameVar, "momentam_admin_session")
}

func (SessionVars) GetSessionCookieSecure() bool {
	return GetEnv(cookieSecureVar, "true") != "false"
}
