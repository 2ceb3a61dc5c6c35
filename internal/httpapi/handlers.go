package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrEthical07/sharedauth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler serves the /api routes.
type Handler struct {
	svc    *sharedauth.Service
	logger zerolog.Logger
}

// NewHandler binds the routes to svc.
func NewHandler(svc *sharedauth.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("component", "httpapi").Logger(),
	}
}

// RegisterRoutes mounts the /api group. r must already run [Sessions].
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/users", h.Signup)
	api.GET("/users", h.ListUsers)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/me", h.Me)
}

func (h *Handler) Signup(c *gin.Context) {
	var req sharedauth.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req sharedauth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	_, cookie, err := h.svc.Login(c.Request.Context(), req, SessionFrom(c))
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	http.SetCookie(c.Writer, cookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := h.svc.Logout(c.Request.Context(), SessionFrom(c))
	if err != nil {
		writeError(c, h.logger, err, "")
		return
	}

	http.SetCookie(c.Writer, cookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := h.svc.CurrentUser(SessionFrom(c))
	if !ok {
		writeError(c, h.logger, sharedauth.ErrUnauthenticated, "")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, msgFetchUsers)
		return
	}

	c.JSON(http.StatusOK, users)
}

// bindJSON decodes the body into dst. An empty body leaves dst zeroed so
// the service reports which fields are missing.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}
	return true
}
