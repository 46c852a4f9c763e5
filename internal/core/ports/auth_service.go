package ports

import (
	"context"
	"time"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

// LoginRequest carries credentials for Login.
type LoginRequest struct {
	EmailAddress string
	Password     string
}

// SignUpRequest carries a registration payload. Empty fields are treated as
// absent. DateOfBirth uses the 2006-01-02 layout.
type SignUpRequest struct {
	EmailAddress       string
	Password           string
	FullName           string
	DateOfBirth        string
	City               string
	Province           string
	Country            string
	PhoneNumber        string
	RegistrationNumber string
}

// UpdatePasswordRequest carries the caller's new password.
type UpdatePasswordRequest struct {
	Password string
}

// UserView is the public projection of a user returned to clients.
type UserView struct {
	ID                    string
	EmailAddress          string
	FullName              string
	DateOfBirth           time.Time
	City                  string
	Province              string
	Country               string
	PhoneNumber           string
	RegistrationNumber    string
	Authorities           []string
	PasswordAutoGenerated bool
	CreatedAt             time.Time
}

// LoginOutcome is returned by Login and SignUp. Business failures are
// reported with LoginSuccess=false and a message, never as an error.
type LoginOutcome struct {
	User         *UserView
	Status       domain.RecordStatus
	LoginSuccess bool
	AccessToken  string
	ErrorMessage string
}

// UpdatePasswordOutcome is returned by a successful UpdatePassword.
type UpdatePasswordOutcome struct {
	Success      bool
	EmailAddress string
}

// AuthService defines the account use cases.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest, role domain.Authority) (*LoginOutcome, error)
	SignUp(ctx context.Context, req *SignUpRequest, role domain.Authority, passwordAutoGenerated bool) (*LoginOutcome, error)
	ValidatePasswordResetToken(ctx context.Context, token string) bool
	UpdatePassword(ctx context.Context, req *UpdatePasswordRequest) (*UpdatePasswordOutcome, error)
	IssuePasswordResetToken(ctx context.Context, email string) (string, error)
}

// AuditService records account actions.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}
