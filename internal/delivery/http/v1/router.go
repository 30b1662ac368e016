package v1

import (
	"log/slog"
	"net/http"
	"time"

	"job-portal-backend/config"
	"job-portal-backend/internal/delivery/http/middleware"
	"job-portal-backend/internal/domain"
	"job-portal-backend/internal/usecase"
	"job-portal-backend/pkg/metrics"
	"job-portal-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	AuthUC      domain.AuthUsecase
	HealthUC    usecase.HealthUsecase
	Issuer      domain.TokenIssuer
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	SecurityLog *security.SecurityLogger
	Logger      *slog.Logger
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(deps.Metrics.Middleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config.CookieName))
	r.Use(middleware.ErrorHandler(deps.Logger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	NewHealthHandler(api, deps.HealthUC)

	user := api.Group("/v1/user")
	user.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	protected := user.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Issuer, deps.Config.CookieName, deps.SecurityLog))

	NewAccountHandler(user, protected, deps.AuthUC, deps.Config, AccountLimits{
		Login:    deps.RateLimiter.Middleware(middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window)),
		Register: deps.RateLimiter.Middleware(middleware.RegisterRateLimitConfig(deps.Config.RateLimitRegisterThreshold, window)),
	})

	return r
}
