package ports

import (
	"context"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
// Find methods return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	// FindByEmail matches deleted and non-deleted users alike.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailNonDeleted(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailNonDeleted(ctx context.Context, email string) (bool, error)
	ExistsByRegistrationNumberNonDeleted(ctx context.Context, registrationNumber string) (bool, error)
	// Save inserts the user when ID is empty and replaces it otherwise.
	// A uniqueness violation is reported as domain.ErrUserExists.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PatientRecordRepository reads the latest patient record for an account.
type PatientRecordRepository interface {
	LatestByPatient(ctx context.Context, email string) (*domain.PatientRecord, error)
}

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
