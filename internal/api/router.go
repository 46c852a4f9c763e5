package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/medicalassistance/identity-core/docs"
	"github.com/medicalassistance/identity-core/internal/api/handler"
	"github.com/medicalassistance/identity-core/internal/api/middleware"
	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
	"github.com/medicalassistance/identity-core/internal/infrastructure/security"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService ports.AuthService
	Tokens      *security.JWTIssuer
	Audit       handler.AuditSink
	Checks      map[string]handler.Check
	Log         zerolog.Logger

	// AuthRateLimit and AuthRateBurst throttle login and sign-up per client
	// IP. Zero disables throttling.
	AuthRateLimit float64
	AuthRateBurst int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Audit)

	// --- Account routes ---
	v1 := e.Group("/v1")
	throttle := middleware.RateLimit(deps.AuthRateLimit, deps.AuthRateBurst)
	v1.POST("/:role/login", authHandler.Login, throttle)
	v1.POST("/:role/signup", authHandler.SignUp, throttle)

	// --- Password routes ---
	v1.POST("/password/reset/validate", authHandler.ValidateResetToken)
	v1.POST("/password/reset", authHandler.UpdatePassword, middleware.ResetAuth(deps.AuthService, deps.Tokens))

	authed := []echo.MiddlewareFunc{
		middleware.Auth(deps.Tokens),
		middleware.RBAC(domain.AuthorityPatient, domain.AuthorityCounselor, domain.AuthorityDoctor),
	}
	v1.PUT("/password", authHandler.UpdatePassword, authed...)
	v1.POST("/password/reset-token", authHandler.IssueResetToken, authed...)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.Checks).Readiness)

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
