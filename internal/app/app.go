// Package app wires the shared dependencies of the api and web processes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Deps are the long-lived clients one process owns.
type Deps struct {
	Env     config.Env
	Logger  zerolog.Logger
	Redis   *redis.Client
	Users   *credential.SQLStore
	Service *sharedauth.Service
}

// Open connects to redis and the database and builds the auth service.
func Open(ctx context.Context, e config.Env, logger zerolog.Logger) (*Deps, error) {
	rdb := redis.NewClient(e.RedisOptions())

	users, err := credential.Open(ctx, e.DBDriver, e.DatabaseDSN())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("credential store: %w", err)
	}

	builder := sharedauth.New().
		WithConfig(e.ServiceConfig()).
		WithRedis(rdb).
		WithCredentialStore(users).
		WithLogger(logger)
	if e.AuditEnabled {
		builder = builder.WithAuditSink(sharedauth.NewJSONWriterSink(os.Stdout))
	}

	svc, err := builder.Build()
	if err != nil {
		_ = users.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("auth service: %w", err)
	}

	report := svc.SecurityReport()
	logger.Info().
		Bool("secure_cookie", report.SecureCookie).
		Dur("session_ttl", report.SessionTTL).
		Str("password_algorithm", string(report.Password.Algorithm)).
		Bool("rate_limiting", report.RateLimitingActive).
		Bool("audit", report.AuditEnabled).
		Msg("auth service ready")
	if e.Production() {
		for _, w := range report.Warnings() {
			logger.Warn().Msg(w)
		}
	}

	return &Deps{Env: e, Logger: logger, Redis: rdb, Users: users, Service: svc}, nil
}

// Close stops the service and releases both clients.
func (d *Deps) Close() {
	d.Service.Close()
	if err := d.Users.Close(); err != nil {
		d.Logger.Warn().Err(err).Msg("close database")
	}
	if err := d.Redis.Close(); err != nil {
		d.Logger.Warn().Err(err).Msg("close redis")
	}
}

// Serve runs srv until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
