package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

const (
	PurposeAccess = "access"
	PurposeReset  = "reset"

	defaultAccessTTL = 24 * time.Hour
	defaultResetTTL  = 30 * time.Minute
)

var ErrWrongPurpose = errors.New("token purpose mismatch")

// Claims are carried by every token the issuer mints. Subject is the email.
type Claims struct {
	Authorities []string `json:"authorities,omitempty"`
	Purpose     string   `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTIssuer implements ports.TokenIssuer with HS256-signed JWTs.
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

func NewJWTIssuer(secret string, accessTTL, resetTTL time.Duration) *JWTIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL, resetTTL: resetTTL, now: time.Now}
}

func (i *JWTIssuer) IssueAccessToken(user *domain.User) (string, error) {
	return i.sign(user, PurposeAccess, i.accessTTL, user.Authorities.Strings())
}

func (i *JWTIssuer) IssueResetToken(user *domain.User) (string, error) {
	return i.sign(user, PurposeReset, i.resetTTL, nil)
}

func (i *JWTIssuer) sign(user *domain.User, purpose string, ttl time.Duration, authorities []string) (string, error) {
	now := i.now()
	claims := Claims{
		Authorities: authorities,
		Purpose:     purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.EmailAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the claims.
func (i *JWTIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}

// ParseAccessToken is Parse restricted to access tokens.
func (i *JWTIssuer) ParseAccessToken(token string) (*Claims, error) {
	claims, err := i.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeAccess {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (i *JWTIssuer) ExtractIdentity(token string) (string, error) {
	claims, err := i.Parse(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("parse token: %w", jwt.ErrTokenInvalidSubject)
	}
	return claims.Subject, nil
}

// ValidateResetToken accepts only reset tokens minted for user's email no
// earlier than the user's last password reset.
func (i *JWTIssuer) ValidateResetToken(token string, user *domain.User) bool {
	if user == nil {
		return false
	}
	claims, err := i.Parse(token)
	if err != nil || claims.Purpose != PurposeReset || claims.IssuedAt == nil {
		return false
	}
	if claims.Subject != user.EmailAddress {
		return false
	}
	return !claims.IssuedAt.Time.Before(user.LastPasswordResetAt.Truncate(time.Second))
}
