package ports

import (
	"context"
	"time"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints and checks bearer tokens bound to a user's email.
type TokenIssuer interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueResetToken(user *domain.User) (string, error)
	// ExtractIdentity returns the email the token was issued for.
	ExtractIdentity(token string) (string, error)
	// ValidateResetToken reports whether token is a live reset token for user.
	ValidateResetToken(token string, user *domain.User) bool
}

// RecordStatusResolver reports the record status shown to a user after login.
type RecordStatusResolver interface {
	StatusFor(ctx context.Context, user *domain.User) domain.RecordStatus
}

// StatusCache is a short-lived cache in front of the patient record store.
type StatusCache interface {
	Get(ctx context.Context, email string) (domain.RecordStatus, bool, error)
	Set(ctx context.Context, email string, status domain.RecordStatus, ttl time.Duration) error
}
