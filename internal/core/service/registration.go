package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

const dateOfBirthLayout = "2006-01-02"

// toUser maps a sign-up payload onto a user. It returns nil when the payload
// cannot be represented at all.
func toUser(req *ports.SignUpRequest) *domain.User {
	if req == nil {
		return nil
	}
	user := &domain.User{
		EmailAddress:       domain.CanonicalEmail(req.EmailAddress),
		PasswordHash:       req.Password,
		FullName:           strings.TrimSpace(req.FullName),
		City:               strings.TrimSpace(req.City),
		Province:           strings.TrimSpace(req.Province),
		Country:            strings.TrimSpace(req.Country),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
	}
	if dob := strings.TrimSpace(req.DateOfBirth); dob != "" {
		t, err := time.Parse(dateOfBirthLayout, dob)
		if err != nil {
			return nil
		}
		user.DateOfBirth = t
	}
	return user
}

// validateRegistration runs the sign-up checks in order and returns the
// message of the first one that fails, or "" when the user may be created.
// user.PasswordHash still holds the plaintext at this point.
func validateRegistration(ctx context.Context, repo ports.UserRepository, user *domain.User, role domain.Authority) (string, error) {
	switch {
	case user == nil:
		return domain.MsgInvalidUserRequest, nil
	case user.EmailAddress == "":
		return domain.MsgInvalidEmail, nil
	case user.PasswordHash == "" || len(user.PasswordHash) > domain.MaxPasswordBytes:
		return domain.MsgInvalidPassword, nil
	case user.DateOfBirth.IsZero():
		return domain.MsgInvalidDateOfBirth, nil
	case user.FullName == "":
		return domain.MsgInvalidFullName, nil
	case user.City == "":
		return domain.MsgInvalidCity, nil
	case user.Country == "":
		return domain.MsgInvalidCountry, nil
	case user.PhoneNumber == "":
		return domain.MsgInvalidPhoneNumber, nil
	case user.Province == "":
		return domain.MsgInvalidProvince, nil
	}

	if role.Privileged() {
		if user.RegistrationNumber == "" {
			return domain.MsgInvalidRegistrationNo, nil
		}
		taken, err := repo.ExistsByRegistrationNumberNonDeleted(ctx, user.RegistrationNumber)
		if err != nil {
			return "", fmt.Errorf("check registration number: %w", err)
		}
		if taken {
			return domain.MsgRegistrationNoInUse, nil
		}
	}

	taken, err := repo.ExistsByEmailNonDeleted(ctx, user.EmailAddress)
	if err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.MsgUserAlreadyExists, nil
	}
	return "", nil
}
