package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

// ResetTokenValidator reports whether a reset token is still usable.
type ResetTokenValidator interface {
	ValidatePasswordResetToken(ctx context.Context, token string) bool
}

// IdentityExtractor returns the email a token was issued for.
type IdentityExtractor interface {
	ExtractIdentity(token string) (string, error)
}

// ResetAuth admits requests carrying a live password reset token as bearer
// and exposes the token's account as the caller. Access tokens are refused.
func ResetAuth(validator ResetTokenValidator, extractor IdentityExtractor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			if !validator.ValidatePasswordResetToken(c.Request().Context(), token) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid reset token")
			}
			email, err := extractor.ExtractIdentity(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid reset token")
			}

			setIdentity(c, email, domain.Authorities{})
			return next(c)
		}
	}
}
