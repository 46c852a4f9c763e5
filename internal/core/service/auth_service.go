package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

// AuthService implements login, sign-up and password management.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	statuses ports.RecordStatusResolver
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	statuses ports.RecordStatusResolver,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		statuses: statuses,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates req against the account registered under role.
// A user that exists but does not hold role is reported as nonexistent.
func (s *AuthService) Login(ctx context.Context, req *ports.LoginRequest, role domain.Authority) (*ports.LoginOutcome, error) {
	if req == nil || req.EmailAddress == "" || req.Password == "" {
		return failedOutcome(domain.MsgWrongCredentials), nil
	}

	user, err := s.repo.FindByEmail(ctx, domain.CanonicalEmail(req.EmailAddress))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !user.HasAuthority(role) {
		return failedOutcome(domain.MsgUserDoesNotExist), nil
	}
	if user.Deleted {
		return failedOutcome(domain.MsgAccountDeleted), nil
	}
	if user.PasswordHash == "" || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return failedOutcome(domain.MsgWrongCredentials), nil
	}

	return s.successOutcome(ctx, user)
}

// SignUp registers a new account under role. Validation failures and
// duplicates are returned as a failed outcome.
func (s *AuthService) SignUp(ctx context.Context, req *ports.SignUpRequest, role domain.Authority, passwordAutoGenerated bool) (*ports.LoginOutcome, error) {
	user := toUser(req)
	msg, err := validateRegistration(ctx, s.repo, user, role)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if msg != "" {
		return failedOutcome(msg), nil
	}

	hash, err := s.hasher.Hash(user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("email", user.EmailAddress).Msg("password hashing failed")
		return failedOutcome(domain.MsgPasswordNotSecured), nil
	}

	now := s.now()
	user.PasswordHash = hash
	user.Authorities = domain.NewAuthorities(role)
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Deleted = false
	user.LastPasswordResetAt = now
	user.PasswordAutoGenerated = passwordAutoGenerated

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return failedOutcome(domain.MsgUserAlreadyExists), nil
		case errors.Is(err, domain.ErrRegistrationInUse):
			return failedOutcome(domain.MsgRegistrationNoInUse), nil
		}
		return nil, fmt.Errorf("sign up: save user: %w", err)
	}

	s.log.Info().Str("email", saved.EmailAddress).Str("role", string(role)).Msg("user registered")
	return s.successOutcome(ctx, saved)
}

// ValidatePasswordResetToken reports whether token is a live reset token of
// an existing account. Every failure yields false.
func (s *AuthService) ValidatePasswordResetToken(ctx context.Context, token string) bool {
	email, err := s.tokens.ExtractIdentity(token)
	if err != nil {
		return false
	}
	user, err := s.repo.FindByEmailNonDeleted(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Err(err).Msg("reset token lookup failed")
		}
		return false
	}
	return s.tokens.ValidateResetToken(token, user)
}

// UpdatePassword replaces the password of the caller found in ctx.
// Malformed requests and reuse of the current password fail with
// domain.ErrInvalidUserRequest.
func (s *AuthService) UpdatePassword(ctx context.Context, req *ports.UpdatePasswordRequest) (*ports.UpdatePasswordOutcome, error) {
	if req == nil || req.Password == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUserRequest, domain.MsgInvalidRequest)
	}
	if len(req.Password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUserRequest, domain.MsgInvalidPassword)
	}

	email, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.repo.FindByEmailNonDeleted(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	if s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUserRequest, domain.MsgPasswordSameAsCurrent)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("update password: hash: %w", err)
	}

	now := s.now()
	user.PasswordHash = hash
	user.PasswordAutoGenerated = false
	user.UpdatedAt = now
	// Reset tokens carry whole-second issue times. Rounding up rejects
	// tokens minted earlier in the same second.
	user.LastPasswordResetAt = now.Truncate(time.Second).Add(time.Second)

	if _, err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: save user: %w", err)
	}

	s.log.Info().Str("email", user.EmailAddress).Msg("password updated")
	return &ports.UpdatePasswordOutcome{Success: true, EmailAddress: user.EmailAddress}, nil
}

// IssuePasswordResetToken mints a reset token for a non-deleted account.
func (s *AuthService) IssuePasswordResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmailNonDeleted(ctx, domain.CanonicalEmail(email))
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	token, err := s.tokens.IssueResetToken(user)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

func (s *AuthService) successOutcome(ctx context.Context, user *domain.User) (*ports.LoginOutcome, error) {
	token, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &ports.LoginOutcome{
		User:         toUserView(user),
		Status:       s.statuses.StatusFor(ctx, user),
		LoginSuccess: true,
		AccessToken:  token,
	}, nil
}

func failedOutcome(msg string) *ports.LoginOutcome {
	return &ports.LoginOutcome{LoginSuccess: false, ErrorMessage: msg}
}

func toUserView(u *domain.User) *ports.UserView {
	return &ports.UserView{
		ID:                    u.ID,
		EmailAddress:          u.EmailAddress,
		FullName:              u.FullName,
		DateOfBirth:           u.DateOfBirth,
		City:                  u.City,
		Province:              u.Province,
		Country:               u.Country,
		PhoneNumber:           u.PhoneNumber,
		RegistrationNumber:    u.RegistrationNumber,
		Authorities:           u.Authorities.Strings(),
		PasswordAutoGenerated: u.PasswordAutoGenerated,
		CreatedAt:             u.CreatedAt,
	}
}
