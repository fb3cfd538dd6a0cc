package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	backendURLVar    = "BACKEND_BASE_URL"
	backendTimeout   = "BACKEND_TIMEOUT"
	loginRatePerMin  = "LOGIN_RATE_PER_MINUTE"
	loginRateBurst   = "LOGIN_RATE_BURST"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBackendBaseURL() string
	GetBackendTimeout() time.Duration
	GetLoginRatePerMinute() int
	GetLoginRateBurst() int
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Momentam Admin")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBackendBaseURL returns the base URL of the Momentam REST backend
// (e.g., "https://api.momentam.io").
func (EnvVars) GetBackendBaseURL() string {
	return GetEnv(backendURLVar, "http://localhost:4000")
}

func (EnvVars) GetBackendTimeout() time.Duration {
	return GetEnvDuration(backendTimeout, 10*time.Second)
}

func (EnvVars) GetLoginRatePerMinute() int {
	return GetEnvInt(loginRatePerMin, 10)
}

func (EnvVars) GetLoginRateBurst() int {
	return GetEnvInt(loginRateBurst, 5)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
