package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/infrastructure/security"
)

// Keys under which the middlewares store the caller on the echo.Context.
const (
	ContextKeyEmail       = "email"
	ContextKeyAuthorities = "authorities"
)

// AccessTokenParser verifies access tokens.
type AccessTokenParser interface {
	ParseAccessToken(token string) (*security.Claims, error)
}

// Auth validates the bearer access token and injects the caller into both the
// echo.Context and the request context.
func Auth(parser AccessTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := parser.ParseAccessToken(token)
			if err != nil || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			setIdentity(c, claims.Subject, domain.AuthoritiesFromStrings(claims.Authorities))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setIdentity(c echo.Context, email string, authorities domain.Authorities) {
	c.Set(ContextKeyEmail, email)
	c.Set(ContextKeyAuthorities, authorities)
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), email)))
}
