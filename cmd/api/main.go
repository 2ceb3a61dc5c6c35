// Command api serves the JSON auth endpoints, health and metrics.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/sharedauth/health"
	"github.com/MrEthical07/sharedauth/internal/app"
	"github.com/MrEthical07/sharedauth/internal/config"
	"github.com/MrEthical07/sharedauth/internal/httpapi"
	"github.com/MrEthical07/sharedauth/internal/logging"
	"github.com/MrEthical07/sharedauth/internal/telemetry"
	otelexport "github.com/MrEthical07/sharedauth/metrics/export/otel"
	promexport "github.com/MrEthical07/sharedauth/metrics/export/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

func main() {
	e, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{Service: "api"})
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: e.LogLevel, Pretty: e.LogPretty, Service: "api"})
	if e.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(e, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
}

func run(e config.Env, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, e, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	provider, shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "sharedauth-api",
		Endpoint:    e.OTLPMetricsEndpoint,
		Interval:    e.OTLPMetricsInterval,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("flush otel metrics")
		}
	}()

	// Without an OTLP endpoint metrics are only served on /metrics.
	if provider != nil {
		otel.SetMeterProvider(provider)
		otelExporter, err := otelexport.NewExporter(provider.Meter("github.com/MrEthical07/sharedauth"), deps.Service)
		if err != nil {
			return err
		}
		defer func() { _ = otelExporter.Close() }()
		logger.Info().Str("endpoint", e.OTLPMetricsEndpoint).Msg("otel metrics export enabled")
	}

	probe := health.NewProbe(e.HealthTimeout, logger,
		health.DatabaseCheck(deps.Users),
		health.RedisCheck(deps.Redis),
	)
	go probe.Run(ctx, e.HealthInterval, nil)

	router, err := httpapi.NewRouter(httpapi.RouterConfig{
		Service:        deps.Service,
		Probe:          probe,
		Metrics:        promexport.NewExporter(deps.Service).Handler(),
		Logger:         logger,
		TrustedProxies: e.TrustedProxies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              e.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app.Serve(ctx, srv, logger)
}
