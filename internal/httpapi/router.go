package httpapi

import (
	"net/http"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/health"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterConfig wires the api process router.
type RouterConfig struct {
	Service *sharedauth.Service
	Probe   *health.Probe
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Logger  zerolog.Logger
	// TrustedProxies lists CIDRs whose X-Forwarded-For is honored. Empty
	// means the peer address is always the client address.
	TrustedProxies []string
}

// NewEngine returns a gin engine with recovery, request ids, access logs
// and session resolution installed.
func NewEngine(svc *sharedauth.Service, logger zerolog.Logger, trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(logger))
	router.Use(Sessions(svc.Sessions()))

	return router, nil
}

// NewRouter builds the api process router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router, err := NewEngine(cfg.Service, cfg.Logger, cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"backend":       true,
			"authenticated": SessionFrom(c).Authenticated(),
		})
	})

	NewHandler(cfg.Service, cfg.Logger).RegisterRoutes(router)

	if cfg.Probe != nil {
		router.GET("/healthz", Health(cfg.Probe))
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return router, nil
}
