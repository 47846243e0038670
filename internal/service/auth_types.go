package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	DefaultBcryptCost = 12
)

type AuthConfig struct {
	RegistrationCodeTTL time.Duration
	LoginCodeTTL        time.Duration
	ResetCodeTTL        time.Duration
	EmailChangeCodeTTL  time.Duration
}

// DefaultAuthConfig returns the code lifetimes announced in the outgoing emails.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		RegistrationCodeTTL: 15 * time.Minute,
		LoginCodeTTL:        10 * time.Minute,
		ResetCodeTTL:        15 * time.Minute,
		EmailChangeCodeTTL:  15 * time.Minute,
	}
}

type EmailSender interface {
	Send(ctx context.Context, to string, subject string, text string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type CodeHasher interface {
	Hash(code string) string
}

// CodeGenerator yields the plaintext one-time codes that are emailed to users.
type CodeGenerator func() (string, error)

type AccessTokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, email string) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
