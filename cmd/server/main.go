package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/momentam/admin-server/auth"
	"github.com/momentam/admin-server/backend"
	"github.com/momentam/admin-server/internal/config"
	"github.com/momentam/admin-server/internal/metrics"
	"github.com/momentam/admin-server/server"
	"github.com/momentam/admin-server/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	logger := newLogger(cfg)
	displayAppname(cfg.GetAppName())

	collector := metrics.NewPromCollector()

	backendClient, err := backend.New(cfg.GetBackendBaseURL(),
		backend.WithTimeout(cfg.GetBackendTimeout()),
		backend.WithLogger(logger),
		backend.WithMetrics(collector),
	)
	if err != nil {
		return errors.Wrap(err, "[run] backend client")
	}

	authService, err := auth.NewService(backendClient,
		auth.WithLogger(logger),
		auth.WithMetrics(collector),
	)
	if err != nil {
		return errors.Wrap(err, "[run] auth service")
	}

	encoder, err := session.NewEncoder(
		cfg.GetSessionSecret(),
		cfg.GetSessionLifetime(),
		cfg.GetSessionCookieName(),
		cfg.GetSessionCookieSecure(),
	)
	if err != nil {
		return errors.Wrap(err, "[run] session encoder")
	}

	var sso *server.SSOAuthenticator
	if cfg.SSOEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		sso, err = server.NewSSOAuthenticator(ctx, cfg, cfg.GetSessionCookieSecure())
		cancel()
		if err != nil {
			// Credentials login still works; SSO just stays off.
			logger.Warn().Err(err).Msg("SSO disabled: OIDC provider discovery failed")
			sso = nil
		}
	}

	srv, err := server.New(cfg, server.Deps{
		Auth:           authService,
		Session:        encoder,
		Backend:        backendClient,
		SSO:            sso,
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
		Logger:         logger,
	})
	if err != nil {
		return errors.Wrap(err, "[run] server")
	}

	httpServer := &http.Server{
		Addr:         cfg.GetPort(),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go listenAndServe(logger, httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(logger zerolog.Logger, httpServer *http.Server) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	logger := log.Logger
	if cfg.GetEnv() == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
