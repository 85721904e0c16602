package rest

import (
	"net/http"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Service    AuthService
	Codec      *auth.Codec
	Logger     logging.Logger
	Cookie     CookiePolicy
	CORSOrigin string
	// Store answers /readyz; nil means always ready.
	Store Pinger
	// Registry receives the HTTP metrics; a fresh one is created when nil.
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewMetrics(registry)

	r := gin.New()
	r.Use(RequestID(), Logger(logger, metrics), Recovery(logger), CORS(cfg.CORSOrigin))

	h := &handler{svc: cfg.Service, cookie: cfg.Cookie}

	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/logout", h.logout)

	r.GET("/me", RequireAccessToken(cfg.Codec), h.me)

	r.GET("/health", livenessHandler)
	r.GET("/readyz", readinessHandler(cfg.Store))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, CodeNotFound, msgRouteNotFound)
	})

	return r
}
