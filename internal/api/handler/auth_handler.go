package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/api/metrics"
	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

// AuditSink accepts audit events for asynchronous persistence.
type AuditSink interface {
	Enqueue(event domain.AuthEvent) bool
}

type AuthHandler struct {
	authService ports.AuthService
	audit       AuditSink
}

func NewAuthHandler(authService ports.AuthService, audit AuditSink) *AuthHandler {
	return &AuthHandler{authService: authService, audit: audit}
}

type loginRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type signUpRequest struct {
	EmailAddress       string `json:"email_address"       validate:"omitempty,email,max=254"`
	Password           string `json:"password"            validate:"omitempty,maxbytes=72"`
	FullName           string `json:"full_name"           validate:"omitempty,max=256"`
	DateOfBirth        string `json:"date_of_birth"`
	City               string `json:"city"                validate:"omitempty,max=128"`
	Province           string `json:"province"            validate:"omitempty,max=128"`
	Country            string `json:"country"             validate:"omitempty,max=128"`
	PhoneNumber        string `json:"phone_number"        validate:"omitempty,max=32"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=64"`
}

type userResponse struct {
	ID                    string    `json:"id"`
	EmailAddress          string    `json:"email_address"`
	FullName              string    `json:"full_name"`
	DateOfBirth           string    `json:"date_of_birth"`
	City                  string    `json:"city"`
	Province              string    `json:"province"`
	Country               string    `json:"country"`
	PhoneNumber           string    `json:"phone_number"`
	RegistrationNumber    string    `json:"registration_number,omitempty"`
	Authorities           []string  `json:"authorities"`
	PasswordAutoGenerated bool      `json:"password_auto_generated"`
	CreatedAt             time.Time `json:"created_at"`
}

type loginResponse struct {
	User         *userResponse `json:"user,omitempty"`
	Status       string        `json:"status,omitempty"`
	LoginSuccess bool          `json:"login_success"`
	AccessToken  string        `json:"access_token,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Login authenticates an account registered under the role in the path.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        role  path      string        true  "patient, counselor or doctor"
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  loginResponse
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/{role}/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), metrics.ResultFailure).Inc()
		return c.JSON(http.StatusUnauthorized, loginResponse{ErrorMessage: domain.MsgWrongCredentials})
	}

	out, err := h.authService.Login(c.Request().Context(), &ports.LoginRequest{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	}, role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), metrics.ResultError).Inc()
		return err
	}

	h.record(req.EmailAddress, domain.EventLogin, role, out.LoginSuccess, out.ErrorMessage)
	if !out.LoginSuccess {
		metrics.LoginsTotal.WithLabelValues(string(role), metrics.ResultFailure).Inc()
		return c.JSON(http.StatusUnauthorized, toLoginResponse(out))
	}
	metrics.LoginsTotal.WithLabelValues(string(role), metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusOK, toLoginResponse(out))
}

// SignUp registers a new account under the role in the path and logs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        role  path      string         true  "patient, counselor or doctor"
// @Param        body  body      signUpRequest  true  "Registration details"
// @Success      201   {object}  loginResponse
// @Failure      400   {object}  loginResponse
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/{role}/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		metrics.SignUpsTotal.WithLabelValues(string(role), metrics.ResultFailure).Inc()
		return c.JSON(http.StatusBadRequest, loginResponse{ErrorMessage: domain.MsgInvalidUserRequest})
	}
	if err := c.Validate(&req); err != nil {
		var fe *fieldErrors
		if !errors.As(err, &fe) {
			return err
		}
		// Malformed fields count as missing so the registration checks
		// report them in order.
		req.clear(fe.fields)
	}

	out, err := h.authService.SignUp(c.Request().Context(), &ports.SignUpRequest{
		EmailAddress:       req.EmailAddress,
		Password:           req.Password,
		FullName:           req.FullName,
		DateOfBirth:        req.DateOfBirth,
		City:               req.City,
		Province:           req.Province,
		Country:            req.Country,
		PhoneNumber:        req.PhoneNumber,
		RegistrationNumber: req.RegistrationNumber,
	}, role, false)
	if err != nil {
		metrics.SignUpsTotal.WithLabelValues(string(role), metrics.ResultError).Inc()
		return err
	}

	h.record(req.EmailAddress, domain.EventSignUp, role, out.LoginSuccess, out.ErrorMessage)
	if !out.LoginSuccess {
		metrics.SignUpsTotal.WithLabelValues(string(role), metrics.ResultFailure).Inc()
		return c.JSON(http.StatusBadRequest, toLoginResponse(out))
	}
	metrics.SignUpsTotal.WithLabelValues(string(role), metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, toLoginResponse(out))
}

func (r *signUpRequest) clear(fields []string) {
	for _, f := range fields {
		switch f {
		case "email_address":
			r.EmailAddress = ""
		case "password":
			r.Password = ""
		case "full_name":
			r.FullName = ""
		case "city":
			r.City = ""
		case "province":
			r.Province = ""
		case "country":
			r.Country = ""
		case "phone_number":
			r.PhoneNumber = ""
		case "registration_number":
			r.RegistrationNumber = ""
		}
	}
}

func roleParam(c echo.Context) (domain.Authority, error) {
	role, err := domain.ParseAuthority(c.Param("role"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown role")
	}
	return role, nil
}

// record never blocks; a full audit queue drops the event.
func (h *AuthHandler) record(email string, kind domain.AuthEventKind, role domain.Authority, success bool, msg string) {
	email = domain.CanonicalEmail(email)
	if h.audit == nil || email == "" {
		return
	}
	h.audit.Enqueue(domain.AuthEvent{
		Email:     email,
		Kind:      kind,
		Role:      role,
		Success:   success,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	})
}

func toLoginResponse(out *ports.LoginOutcome) loginResponse {
	resp := loginResponse{
		Status:       string(out.Status),
		LoginSuccess: out.LoginSuccess,
		AccessToken:  out.AccessToken,
		ErrorMessage: out.ErrorMessage,
	}
	if u := out.User; u != nil {
		resp.User = &userResponse{
			ID:                    u.ID,
			EmailAddress:          u.EmailAddress,
			FullName:              u.FullName,
			City:                  u.City,
			Province:              u.Province,
			Country:               u.Country,
			PhoneNumber:           u.PhoneNumber,
			RegistrationNumber:    u.RegistrationNumber,
			Authorities:           u.Authorities,
			PasswordAutoGenerated: u.PasswordAutoGenerated,
			CreatedAt:             u.CreatedAt,
		}
		if !u.DateOfBirth.IsZero() {
			resp.User.DateOfBirth = u.DateOfBirth.Format(time.DateOnly)
		}
	}
	return resp
}
