// Command web is a front-end process. Several instances share sessions
// through redis, so any of them can sit behind a load balancer.
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
	"github.com/MrEthical07/sharedauth/internal/logging"
	"github.com/MrEthical07/sharedauth/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	e, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{Service: "web"})
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: e.LogLevel, Pretty: e.LogPretty, Service: e.ServerName})
	if e.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(e, logger); err != nil {
		logger.Fatal().Err(err).Msg("web stopped")
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

	probe := health.NewProbe(e.HealthTimeout, logger, health.RedisCheck(deps.Redis))

	router, err := web.NewRouter(web.Config{
		Service:        deps.Service,
		Probe:          probe,
		ServerName:     e.ServerName,
		LoginRedirect:  e.LoginRedirect,
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
