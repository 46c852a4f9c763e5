package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

// RBAC lets the request through when the caller holds any of the allowed
// authorities. It must run after Auth.
func RBAC(allowed ...domain.Authority) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			held, _ := c.Get(ContextKeyAuthorities).(domain.Authorities)
			for _, a := range allowed {
				if held.Contains(a) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
