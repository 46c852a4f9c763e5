package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/api/metrics"
	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

type updatePasswordRequest struct {
	Password string `json:"password" validate:"omitempty,maxbytes=72"`
}

type updatePasswordResponse struct {
	Success      bool   `json:"success"`
	EmailAddress string `json:"email_address"`
}

type resetTokenRequest struct {
	Token string `json:"token"`
}

type resetTokenResponse struct {
	Token string `json:"token"`
}

type resetTokenValidity struct {
	Valid bool `json:"valid"`
}

// UpdatePassword replaces the caller's password. Mounted behind Auth for a
// logged-in change and behind ResetAuth for the reset-link flow.
//
// @Summary      Update password
// @Tags         password
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "New password"
// @Success      200   {object}  updatePasswordResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/password [put]
// @Router       /v1/password/reset [post]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	email, _ := domain.IdentityFromContext(ctx)

	out, err := h.authService.UpdatePassword(ctx, &ports.UpdatePasswordRequest{Password: req.Password})
	if err != nil {
		metrics.PasswordUpdatesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		h.record(email, domain.EventPasswordUpdate, "", false, err.Error())
		return err
	}

	metrics.PasswordUpdatesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	h.record(out.EmailAddress, domain.EventPasswordUpdate, "", true, "")
	return c.JSON(http.StatusOK, updatePasswordResponse{Success: out.Success, EmailAddress: out.EmailAddress})
}

// IssueResetToken mints a password reset token for the caller's own account.
//
// @Summary      Issue password reset token
// @Tags         password
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  resetTokenResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/password/reset-token [post]
func (h *AuthHandler) IssueResetToken(c echo.Context) error {
	ctx := c.Request().Context()
	email, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	token, err := h.authService.IssuePasswordResetToken(ctx, email)
	if err != nil {
		return err
	}

	h.record(email, domain.EventResetIssued, "", true, "")
	return c.JSON(http.StatusOK, resetTokenResponse{Token: token})
}

// ValidateResetToken reports whether a reset token can still be used.
//
// @Summary      Validate password reset token
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      resetTokenRequest  true  "Reset token"
// @Success      200   {object}  resetTokenValidity
// @Failure      400   {object}  map[string]string
// @Router       /v1/password/reset/validate [post]
func (h *AuthHandler) ValidateResetToken(c echo.Context) error {
	var req resetTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	valid := h.authService.ValidatePasswordResetToken(c.Request().Context(), req.Token)
	return c.JSON(http.StatusOK, resetTokenValidity{Valid: valid})
}
