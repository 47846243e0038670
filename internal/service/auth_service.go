package service

import (
	"context"
	"strings"
	"time"

	"mertflix/internal/dto"
	"mertflix/internal/entity"
	"mertflix/internal/repository"
	"mertflix/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// dummyPasswordHash is only used when the configured hasher cannot produce its own.
const dummyPasswordHash = "$2a$12$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type AuthService struct {
	users   repository.UserRepository
	pending repository.PendingRegistrationRepository
	codes   repository.OneTimeCodeRepository
	tx      repository.Transactor
	audit   auditTrail

	issuer       codeIssuer
	passwordHash PasswordHasher
	dummyHash    string
	codeHash     CodeHasher
	newCode      CodeGenerator
	accessTokens AccessTokenIssuer
	clock        Clock
	config       AuthConfig
	log          logrus.FieldLogger
}

func NewAuthService(
	users repository.UserRepository,
	pending repository.PendingRegistrationRepository,
	codes repository.OneTimeCodeRepository,
	securityLogs repository.SecurityLogRepository,
	tx repository.Transactor,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	codeHash CodeHasher,
	newCode CodeGenerator,
	accessTokens AccessTokenIssuer,
	clock Clock,
	config AuthConfig,
	log logrus.FieldLogger,
) *AuthService {
	if log == nil {
		log = nopLogger()
	}
	if newCode == nil {
		newCode = utils.RandomCode6
	}
	if clock == nil {
		clock = RealClock{}
	}
	// Unknown-email logins verify against a hash of the configured cost so they take as
	// long as wrong-password ones.
	dummyHash := dummyPasswordHash
	if passwordHash != nil {
		if hash, err := passwordHash.Hash(uuid.NewString()); err == nil {
			dummyHash = hash
		} else {
			log.WithError(err).Warn("falling back to the built-in dummy password hash")
		}
	}
	return &AuthService{
		users:        users,
		pending:      pending,
		codes:        codes,
		tx:           tx,
		audit:        auditTrail{logs: securityLogs, log: log},
		issuer: codeIssuer{
			codes:    codes,
			hasher:   codeHash,
			generate: newCode,
			clock:    clock,
			sender:   emailSender,
			log:      log,
		},
		passwordHash: passwordHash,
		dummyHash:    dummyHash,
		codeHash:     codeHash,
		newCode:      newCode,
		accessTokens: accessTokens,
		clock:        clock,
		config:       config,
		log:          log,
	}
}

// Register stores (or overwrites) a pending registration and mails its code. No user row
// exists until the code is confirmed.
func (s *AuthService) Register(ctx context.Context, input dto.RegisterRequest, ipAddress *string) error {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}
	if len(input.Password) < MinPasswordLength {
		return ErrWeakPassword
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsEmailVerified {
			return ErrEmailAlreadyRegistered
		}
		if err := s.users.DeleteUnverifiedByEmail(ctx, email); err != nil {
			return err
		}
	}

	passwordHash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return err
	}
	code, err := s.newCode()
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if swept, err := s.pending.DeleteExpired(ctx, now); err != nil {
		s.log.WithError(err).Warn("expired pending registration sweep failed")
	} else if swept > 0 {
		s.log.WithField("count", swept).Debug("expired pending registrations removed")
	}

	ttl := s.registrationCodeTTL()
	pending := &entity.PendingRegistration{
		Email:        email,
		PasswordHash: passwordHash,
		CodeHash:     s.codeHash.Hash(code),
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.pending.Upsert(ctx, pending); err != nil {
		return err
	}

	if err := s.issuer.deliver(ctx, email, verificationMail(code, ttl)); err != nil {
		if delErr := s.pending.DeleteByEmail(ctx, email); delErr != nil {
			s.log.WithError(delErr).WithField("email", email).Error("pending registration rollback failed")
		}
		return err
	}

	s.audit.record(ctx, nil, ipAddress, entity.RegisterRequested, map[string]any{"email": email})
	return nil
}

// VerifyEmail confirms a registration code. Unknown email, wrong code and expired code are
// all reported as ErrInvalidCode.
func (s *AuthService) VerifyEmail(ctx context.Context, input dto.VerifyEmailRequest, ipAddress *string) error {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return ErrInvalidCode
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user != nil && user.IsEmailVerified {
		return nil
	}

	codeHash := s.codeHash.Hash(code)
	now := s.clock.Now()

	promoted := false
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.pending.Consume(ctx, email, codeHash, now)
		if err != nil || pending == nil {
			return err
		}
		if err := s.users.Promote(ctx, email, pending.PasswordHash); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	if err != nil {
		return err
	}
	if promoted {
		s.recordVerified(ctx, email, ipAddress, "pending")
		return nil
	}

	if user == nil {
		return ErrInvalidCode
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		used, err := s.codes.Consume(ctx, entity.EmailVerificationCode, entity.CodeMatch{
			UserID:   user.ID,
			CodeHash: codeHash,
		}, now)
		if err != nil {
			return err
		}
		if used == nil {
			return ErrInvalidCode
		}
		return s.users.MarkEmailVerified(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	s.recordVerified(ctx, email, ipAddress, "legacy")
	return nil
}

func (s *AuthService) recordVerified(ctx context.Context, email string, ipAddress *string, path string) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		s.audit.record(ctx, nil, ipAddress, entity.EmailVerified, map[string]any{"email": email, "path": path})
		return
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.EmailVerified, map[string]any{"path": path})
}

// Login returns a token, or a challenge when the account has a second factor enabled.
func (s *AuthService) Login(ctx context.Context, input dto.LoginRequest, ipAddress *string) (*dto.LoginResponse, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.passwordHash.Verify(s.dummyHash, input.Password)
		s.audit.record(ctx, nil, ipAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		s.audit.record(ctx, &user.ID, ipAddress, entity.LoginFailed, nil)
		return nil, ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	if user.TwoFactorEnabled {
		challenge, err := s.issuer.issue(ctx, user, entity.LoginTwoFactorCode, nil, s.loginCodeTTL(), loginCodeMail)
		if err != nil {
			return nil, err
		}
		s.audit.record(ctx, &user.ID, ipAddress, entity.LoginTwoFactorSent, nil)
		return &dto.LoginResponse{Requires2FA: true, ChallengeID: challenge.String()}, nil
	}

	return s.issueSession(ctx, user, ipAddress, false)
}

// LoginWithTwoFactor completes a challenge started by Login. The account state is checked
// again because it may have changed since the challenge was issued.
func (s *AuthService) LoginWithTwoFactor(ctx context.Context, input dto.LoginTwoFactorRequest, ipAddress *string) (*dto.LoginResponse, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	challengeID, err := uuid.Parse(strings.TrimSpace(input.ChallengeID))
	if err != nil {
		return nil, ErrInvalidCode
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !user.TwoFactorEnabled {
		return nil, ErrTwoFactorNotEnabled
	}

	used, err := s.codes.Consume(ctx, entity.LoginTwoFactorCode, entity.CodeMatch{
		ID:       &challengeID,
		UserID:   user.ID,
		CodeHash: s.codeHash.Hash(code),
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if used == nil {
		s.audit.record(ctx, &user.ID, ipAddress, entity.LoginTwoFactorFailed, nil)
		return nil, ErrInvalidCode
	}

	return s.issueSession(ctx, user, ipAddress, true)
}

// RequestPasswordReset reports success for unknown emails too. Delivery failures for an
// existing account are still returned to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, input dto.PasswordResetRequestRequest, ipAddress *string) error {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if _, err := s.issuer.issue(ctx, user, entity.PasswordResetCode, nil, s.resetCodeTTL(), resetMail); err != nil {
		return err
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.PasswordResetRequested, nil)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, input dto.ResetPasswordRequest, ipAddress *string) error {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return ErrInvalidCode
	}
	if len(input.NewPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCode
	}

	passwordHash, err := s.passwordHash.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		used, err := s.codes.Consume(ctx, entity.PasswordResetCode, entity.CodeMatch{
			UserID:   user.ID,
			CodeHash: s.codeHash.Hash(code),
		}, s.clock.Now())
		if err != nil {
			return err
		}
		if used == nil {
			return ErrInvalidCode
		}
		return s.users.UpdatePassword(ctx, user.ID, passwordHash)
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, &user.ID, ipAddress, entity.PasswordReset, nil)
	return nil
}

// Authenticate resolves a bearer token to a live account. Every token failure and a
// missing account collapse into ErrUnauthorized; a deactivated account is ErrAccountDeactivated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	userID, err := s.accessTokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *entity.User, ipAddress *string, twoFactor bool) (*dto.LoginResponse, error) {
	token, err := s.accessTokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.LoginSuccess, map[string]any{"2fa": twoFactor})
	return &dto.LoginResponse{Token: token}, nil
}

func (s *AuthService) registrationCodeTTL() time.Duration {
	if s.config.RegistrationCodeTTL > 0 {
		return s.config.RegistrationCodeTTL
	}
	return 15 * time.Minute
}

func (s *AuthService) loginCodeTTL() time.Duration {
	if s.config.LoginCodeTTL > 0 {
		return s.config.LoginCodeTTL
	}
	return 10 * time.Minute
}

func (s *AuthService) resetCodeTTL() time.Duration {
	if s.config.ResetCodeTTL > 0 {
		return s.config.ResetCodeTTL
	}
	return 15 * time.Minute
}

func normalizeEmail(raw string) (string, error) {
	email := utils.NormalizeEmail(raw)
	if !utils.LooksLikeEmail(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}
