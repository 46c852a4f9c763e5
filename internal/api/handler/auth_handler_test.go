package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error)
	signUpFn   func(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, auto bool) (*ports.LoginOutcome, error)
	validateFn func(ctx context.Context, token string) bool
	updateFn   func(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error)
	issueFn    func(ctx context.Context, email string) (string, error)
}

func (s *stubAuthService) Login(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error) {
	return s.loginFn(ctx, req, role)
}

func (s *stubAuthService) SignUp(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, auto bool) (*ports.LoginOutcome, error) {
	return s.signUpFn(ctx, req, role, auto)
}

func (s *stubAuthService) ValidatePasswordResetToken(ctx context.Context, token string) bool {
	return s.validateFn(ctx, token)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error) {
	return s.updateFn(ctx, req)
}

func (s *stubAuthService) IssuePasswordResetToken(ctx context.Context, email string) (string, error) {
	return s.issueFn(ctx, email)
}

type stubSink struct {
	events []domain.AuthEvent
}

func (s *stubSink) Enqueue(event domain.AuthEvent) bool {
	s.events = append(s.events, event)
	return true
}

func newContext(method, path, body, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.SetParamNames("role")
		c.SetParamValues(role)
	}
	return c, rec
}

func withIdentity(c echo.Context, email string) {
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), email)))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	sink := &stubSink{}
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error) {
			if req.EmailAddress != "pat@x.com" || req.Password != "pw" || role != domain.AuthorityPatient {
				t.Fatalf("unexpected args: %+v %s", req, role)
			}
			return &ports.LoginOutcome{
				User: &ports.UserView{
					ID:           "u1",
					EmailAddress: "pat@x.com",
					DateOfBirth:  time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
					Authorities:  []string{"ROLE_PATIENT"},
				},
				Status:       domain.RecordStatusNoRecord,
				LoginSuccess: true,
				AccessToken:  "tok",
			}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/patient/login", `{"email_address":"pat@x.com","password":"pw"}`, "patient")

	if err := NewAuthHandler(stub, sink).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["login_success"] != true || resp["access_token"] != "tok" || resp["status"] != "NO_RECORD" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["date_of_birth"] != "1990-01-02" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password digest must not be serialised")
	}

	if len(sink.events) != 1 || sink.events[0].Kind != domain.EventLogin || !sink.events[0].Success {
		t.Fatalf("expected one successful login event, got %+v", sink.events)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	sink := &stubSink{}
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error) {
			return &ports.LoginOutcome{ErrorMessage: domain.MsgWrongCredentials}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/doctor/login", `{"email_address":"Doc@X.com","password":"bad"}`, "doctor")

	if err := NewAuthHandler(stub, sink).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["login_success"] != false || resp["error_message"] != domain.MsgWrongCredentials {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(sink.events) != 1 || sink.events[0].Success || sink.events[0].Email != "doc@x.com" {
		t.Fatalf("expected failed login event, got %+v", sink.events)
	}
}

func TestAuthHandler_Login_UnknownRole(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/admin/login", `{}`, "admin")

	err := NewAuthHandler(&stubAuthService{}, &stubSink{}).Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestAuthHandler_Login_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error) {
			return nil, errors.New("store down")
		},
	}
	sink := &stubSink{}
	c, _ := newContext(http.MethodPost, "/v1/patient/login", `{"email_address":"a@x.com","password":"pw"}`, "patient")

	if err := NewAuthHandler(stub, sink).Login(c); err == nil {
		t.Fatalf("expected error to reach the error handler")
	}
	if len(sink.events) != 0 {
		t.Fatalf("no audit event expected on infrastructure failure")
	}
}

func TestAuthHandler_SignUp_Created(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, auto bool) (*ports.LoginOutcome, error) {
			if role != domain.AuthorityCounselor || auto {
				t.Fatalf("unexpected role %s auto %v", role, auto)
			}
			if req.RegistrationNumber != "C-1" || req.DateOfBirth != "1985-05-05" {
				t.Fatalf("payload not mapped: %+v", req)
			}
			return &ports.LoginOutcome{
				User:         &ports.UserView{EmailAddress: req.EmailAddress, Authorities: []string{"ROLE_COUNSELOR"}},
				Status:       domain.RecordStatusNotApplicable,
				LoginSuccess: true,
				AccessToken:  "tok",
			}, nil
		},
	}
	body := `{"email_address":"c@x.com","password":"pw","full_name":"C","date_of_birth":"1985-05-05",` +
		`"city":"T","province":"ON","country":"CA","phone_number":"1","registration_number":"C-1"}`
	c, rec := newContext(http.MethodPost, "/v1/counselor/signup", body, "counselor")

	if err := NewAuthHandler(stub, &stubSink{}).SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_SignUp_Rejected(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, auto bool) (*ports.LoginOutcome, error) {
			return &ports.LoginOutcome{ErrorMessage: domain.MsgInvalidCity}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/patient/signup", `{"email_address":"p@x.com"}`, "patient")

	if err := NewAuthHandler(stub, &stubSink{}).SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error_message"] != domain.MsgInvalidCity {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_SignUp_MalformedFieldsFollowRegistrationOrder(t *testing.T) {
	var got *ports.SignUpRequest
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, auto bool) (*ports.LoginOutcome, error) {
			got = req
			if req.EmailAddress == "" {
				return &ports.LoginOutcome{ErrorMessage: domain.MsgInvalidEmail}, nil
			}
			if req.Password == "" {
				return &ports.LoginOutcome{ErrorMessage: domain.MsgInvalidPassword}, nil
			}
			return &ports.LoginOutcome{ErrorMessage: domain.MsgInvalidCity}, nil
		},
	}
	h := NewAuthHandler(stub, &stubSink{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed email", `{"email_address":"nope","password":"pw"}`, domain.MsgInvalidEmail},
		{"overlong password", `{"email_address":"p@x.com","password":"` + strings.Repeat("p", 73) + `"}`, domain.MsgInvalidPassword},
		{"multi-byte password over the limit", `{"email_address":"p@x.com","password":"` + strings.Repeat("é", 37) + `"}`, domain.MsgInvalidPassword},
		{"overlong city after bad email", `{"email_address":"nope","city":"` + strings.Repeat("c", 200) + `"}`, domain.MsgInvalidEmail},
	}
	for _, tt := range tests {
		c, rec := newContext(http.MethodPost, "/v1/patient/signup", tt.body, "patient")
		if err := h.SignUp(c); err != nil {
			t.Fatalf("%s: handler error: %v", tt.name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tt.name, rec.Code)
		}
		resp := decode(t, rec)
		if resp["login_success"] != false || resp["error_message"] != tt.want {
			t.Fatalf("%s: unexpected payload: %+v", tt.name, resp)
		}
		if _, leaked := resp["error"]; leaked {
			t.Fatalf("%s: format details must not be reported", tt.name)
		}
	}
	if got == nil || got.City != "" {
		t.Fatalf("malformed city must be cleared before the service runs: %+v", got)
	}
}

func TestAuthHandler_SignUp_UnreadableBody(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/v1/patient/signup", `{"email_address":`, "patient")

	if err := NewAuthHandler(&stubAuthService{}, &stubSink{}).SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["login_success"] != false || resp["error_message"] != domain.MsgInvalidUserRequest {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_UnreadableBody(t *testing.T) {
	sink := &stubSink{}
	c, rec := newContext(http.MethodPost, "/v1/patient/login", `not json`, "patient")

	if err := NewAuthHandler(&stubAuthService{}, sink).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["login_success"] != false || resp["error_message"] != domain.MsgWrongCredentials {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	sink := &stubSink{}
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error) {
			email, _ := domain.IdentityFromContext(ctx)
			if email != "pat@x.com" || req.Password != "new" {
				t.Fatalf("unexpected call: %q %+v", email, req)
			}
			return &ports.UpdatePasswordOutcome{Success: true, EmailAddress: email}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/v1/password", `{"password":"new"}`, "")
	withIdentity(c, "pat@x.com")

	if err := NewAuthHandler(stub, sink).UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["success"] != true || resp["email_address"] != "pat@x.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(sink.events) != 1 || sink.events[0].Kind != domain.EventPasswordUpdate {
		t.Fatalf("expected password update event, got %+v", sink.events)
	}
}

func TestAuthHandler_UpdatePassword_SamePassword(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error) {
			return nil, domain.ErrInvalidUserRequest
		},
	}
	c, _ := newContext(http.MethodPut, "/v1/password", `{"password":"same"}`, "")
	withIdentity(c, "pat@x.com")

	err := NewAuthHandler(stub, &stubSink{}).UpdatePassword(c)
	if !errors.Is(err, domain.ErrInvalidUserRequest) {
		t.Fatalf("expected ErrInvalidUserRequest, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_TooLong(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error) {
			t.Fatalf("service must not be called for an overlong password")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPut, "/v1/password", `{"password":"`+strings.Repeat("p", 100)+`"}`, "")
	withIdentity(c, "pat@x.com")

	err := NewAuthHandler(stub, &stubSink{}).UpdatePassword(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_IssueResetToken(t *testing.T) {
	stub := &stubAuthService{
		issueFn: func(ctx context.Context, email string) (string, error) {
			return "reset:" + email, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/password/reset-token", "", "")
	withIdentity(c, "pat@x.com")

	if err := NewAuthHandler(stub, &stubSink{}).IssueResetToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["token"] != "reset:pat@x.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_IssueResetToken_Unauthenticated(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/password/reset-token", "", "")

	err := NewAuthHandler(&stubAuthService{}, &stubSink{}).IssueResetToken(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_ValidateResetToken(t *testing.T) {
	stub := &stubAuthService{
		validateFn: func(ctx context.Context, token string) bool {
			return token == "good"
		},
	}
	h := NewAuthHandler(stub, &stubSink{})

	for token, want := range map[string]bool{"good": true, "bad": false, "": false} {
		c, rec := newContext(http.MethodPost, "/v1/password/reset/validate", `{"token":"`+token+`"}`, "")
		if err := h.ValidateResetToken(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if resp := decode(t, rec); resp["valid"] != want {
			t.Fatalf("token %q: expected valid=%v, got %+v", token, want, resp)
		}
	}
}
