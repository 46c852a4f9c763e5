package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrRegistrationInUse  = errors.New("registration number already in use")
	ErrInvalidUserRequest = errors.New("invalid user request")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// MaxPasswordBytes is the longest password bcrypt can digest.
const MaxPasswordBytes = 72

// User models an account holder of any role.
type User struct {
	ID                    string      `json:"id"`
	EmailAddress          string      `json:"email_address"`
	PasswordHash          string      `json:"-"`
	FullName              string      `json:"full_name"`
	DateOfBirth           time.Time   `json:"date_of_birth"`
	City                  string      `json:"city"`
	Province              string      `json:"province"`
	Country               string      `json:"country"`
	PhoneNumber           string      `json:"phone_number"`
	RegistrationNumber    string      `json:"registration_number,omitempty"`
	Authorities           Authorities `json:"authorities"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	Deleted               bool        `json:"deleted"`
	PasswordAutoGenerated bool        `json:"password_auto_generated"`
	LastPasswordResetAt   time.Time   `json:"last_password_reset_at"`
}

// HasAuthority reports whether the user was granted a.
func (u *User) HasAuthority(a Authority) bool {
	return u.Authorities.Contains(a)
}
