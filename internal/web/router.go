// Package web is the front-end process router: the /api routes plus
// session-gated page routes. Pages answer with JSON stand-ins; templates
// and static assets are served elsewhere.
package web

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/health"
	"github.com/MrEthical07/sharedauth/internal/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const loginPath = "/login"

// Config wires a front-end router.
type Config struct {
	Service *sharedauth.Service
	// Probe should check redis only; front ends do not talk to the database
	// outside of the auth service.
	Probe      *health.Probe
	ServerName string
	// LoginRedirect is where "/" sends an authenticated visitor: "/home" or
	// "/profile".
	LoginRedirect  string
	Logger         zerolog.Logger
	TrustedProxies []string
}

type pages struct {
	svc        *sharedauth.Service
	serverName string
	redirect   string
}

// NewRouter builds the front-end router.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.Service == nil {
		return nil, errors.New("web: service is required")
	}
	if cfg.LoginRedirect == "" {
		cfg.LoginRedirect = "/home"
	}

	router, err := httpapi.NewEngine(cfg.Service, cfg.Logger, cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	httpapi.NewHandler(cfg.Service, cfg.Logger).RegisterRoutes(router)

	p := &pages{svc: cfg.Service, serverName: cfg.ServerName, redirect: cfg.LoginRedirect}
	router.GET("/", p.index)
	router.GET(loginPath, p.public("login"))
	router.GET("/signup", p.public("signup"))
	router.GET("/home", p.private("home"))
	router.GET("/profile", p.private("profile"))

	if cfg.Probe != nil {
		router.GET("/healthz", httpapi.Health(cfg.Probe))
	}

	return router, nil
}

func (p *pages) index(c *gin.Context) {
	if _, ok := p.svc.CurrentUser(httpapi.SessionFrom(c)); ok {
		c.Redirect(http.StatusFound, p.redirect)
		return
	}
	c.Redirect(http.StatusFound, loginPath)
}

func (p *pages) public(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name, "server": p.serverName})
	}
}

func (p *pages) private(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := p.svc.CurrentUser(httpapi.SessionFrom(c))
		if !ok {
			c.Redirect(http.StatusFound, loginPath)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"page":   name,
			"server": p.serverName,
			"user":   user,
		})
	}
}
