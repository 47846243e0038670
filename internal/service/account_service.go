package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"mertflix/internal/dto"
	"mertflix/internal/entity"
	"mertflix/internal/repository"
	"mertflix/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxBioLength        = 280
	maxAvatarSeedLength = 80
	minUsernameLength   = 3
	maxUsernameLength   = 20
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.]+$`)

	avatarStyles = map[string]struct{}{
		"pixel-art": {},
		"bottts":    {},
		"avataaars": {},
		"identicon": {},
		"thumbs":    {},
		"lorelei":   {},
	}
)

// AccountService covers the signed-in user's own settings.
type AccountService struct {
	users  repository.UserRepository
	codes  repository.OneTimeCodeRepository
	tx     repository.Transactor
	audit  auditTrail
	issuer codeIssuer

	passwordHash PasswordHasher
	codeHash     CodeHasher
	clock        Clock
	config       AuthConfig
	log          logrus.FieldLogger
}

func NewAccountService(
	users repository.UserRepository,
	codes repository.OneTimeCodeRepository,
	securityLogs repository.SecurityLogRepository,
	tx repository.Transactor,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	codeHash CodeHasher,
	newCode CodeGenerator,
	clock Clock,
	config AuthConfig,
	log logrus.FieldLogger,
) *AccountService {
	if log == nil {
		log = nopLogger()
	}
	if newCode == nil {
		newCode = utils.RandomCode6
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &AccountService{
		users: users,
		codes: codes,
		tx:    tx,
		audit: auditTrail{logs: securityLogs, log: log},
		issuer: codeIssuer{
			codes:    codes,
			hasher:   codeHash,
			generate: newCode,
			clock:    clock,
			sender:   emailSender,
			log:      log,
		},
		passwordHash: passwordHash,
		codeHash:     codeHash,
		clock:        clock,
		config:       config,
		log:          log,
	}
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.currentUser(ctx, userID)
}

func (s *AccountService) Security(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.currentUser(ctx, userID)
}

// UpdateProfile replaces bio and avatar and sets the username if none is set yet.
// Resubmitting the stored username is accepted as a no-op.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest) error {
	update := entity.ProfileUpdate{
		Bio:         truncate(deref(input.Bio), maxBioLength),
		AvatarStyle: strings.TrimSpace(deref(input.AvatarStyle)),
		AvatarSeed:  truncate(strings.TrimSpace(deref(input.AvatarSeed)), maxAvatarSeedLength),
	}
	if update.AvatarStyle == "" {
		update.AvatarStyle = entity.DefaultAvatarStyle
	}
	if _, ok := avatarStyles[update.AvatarStyle]; !ok {
		return ErrInvalidAvatarStyle
	}

	current, err := s.currentUser(ctx, userID)
	if err != nil {
		return err
	}

	desired := strings.ToLower(strings.TrimSpace(deref(input.Username)))
	if desired != "" {
		if len(desired) < minUsernameLength || len(desired) > maxUsernameLength || !usernamePattern.MatchString(desired) {
			return ErrInvalidUsername
		}
		if current.Username != nil {
			if desired != strings.ToLower(*current.Username) {
				return ErrUsernameLocked
			}
		} else {
			owner, err := s.users.FindByUsername(ctx, desired)
			if err != nil {
				return err
			}
			if owner != nil && owner.ID != userID {
				return ErrUsernameTaken
			}
			update.Username = &desired
		}
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		if update.Username == nil {
			return nil
		}

		// A concurrent request may have claimed a different name first; failing here
		// rolls the bio and avatar back with it.
		stored, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if stored == nil || stored.Username == nil || *stored.Username != desired {
			return ErrUsernameLocked
		}
		return nil
	})
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordRequest, ipAddress *string) error {
	if len(input.NewPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.verifyPassword(ctx, userID, input.OldPassword)
	if err != nil {
		return err
	}
	passwordHash, err := s.passwordHash.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.PasswordChanged, nil)
	return nil
}

// RequestEmailChange mails a code to the new address and returns the request id the
// confirmation must quote.
func (s *AccountService) RequestEmailChange(ctx context.Context, userID uuid.UUID, input dto.EmailChangeRequest, ipAddress *string) (uuid.UUID, error) {
	newEmail, err := normalizeEmail(input.NewEmail)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.ensureEmailFree(ctx, newEmail); err != nil {
		return uuid.Nil, err
	}
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}

	requestID, err := s.issuer.issue(ctx, user, entity.EmailChangeCode, &newEmail, s.emailChangeCodeTTL(), emailChangeMail)
	if err != nil {
		return uuid.Nil, err
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.EmailChangeRequested, map[string]any{"new_email": newEmail})
	return requestID, nil
}

// ConfirmEmailChange consumes the code and rewrites the email in one transaction. If the
// address was claimed in the meantime the unique index rejects the write and the code
// stays unused.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, userID uuid.UUID, input dto.EmailChangeConfirmRequest, ipAddress *string) (string, error) {
	requestID, err := uuid.Parse(strings.TrimSpace(input.RequestID))
	if err != nil {
		return "", ErrInvalidCode
	}
	newEmail, err := normalizeEmail(input.NewEmail)
	if err != nil {
		return "", err
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return "", ErrInvalidCode
	}
	// A repeated confirmation finds the caller already owning the address and fails on the
	// used code instead.
	owner, err := s.users.FindByEmail(ctx, newEmail)
	if err != nil {
		return "", err
	}
	if owner != nil && owner.ID != userID {
		return "", ErrEmailAlreadyRegistered
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		used, err := s.codes.Consume(ctx, entity.EmailChangeCode, entity.CodeMatch{
			ID:       &requestID,
			UserID:   userID,
			CodeHash: s.codeHash.Hash(code),
			NewEmail: &newEmail,
		}, s.clock.Now())
		if err != nil {
			return err
		}
		if used == nil {
			return ErrInvalidCode
		}
		if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.audit.record(ctx, &userID, ipAddress, entity.EmailChanged, map[string]any{"new_email": newEmail})
	return newEmail, nil
}

func (s *AccountService) SetTwoFactor(ctx context.Context, userID uuid.UUID, enabled bool, ipAddress *string) (bool, error) {
	if err := s.users.SetTwoFactor(ctx, userID, enabled); err != nil {
		return false, err
	}
	s.audit.record(ctx, &userID, ipAddress, entity.TwoFactorToggled, map[string]any{"enabled": enabled})
	return enabled, nil
}

// Deactivate keeps the row but blocks every later authenticated request.
func (s *AccountService) Deactivate(ctx context.Context, userID uuid.UUID, password string, ipAddress *string) error {
	user, err := s.verifyPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, user.ID); err != nil {
		return err
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.AccountDeactivated, nil)
	return nil
}

// Delete removes the account; owned rows go with it through foreign key cascades.
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID, password string, ipAddress *string) error {
	user, err := s.verifyPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.audit.record(ctx, nil, ipAddress, entity.AccountDeleted, map[string]any{"user_id": user.ID.String()})
	return nil
}

func (s *AccountService) currentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *AccountService) verifyPassword(ctx context.Context, userID uuid.UUID, password string) (*entity.User, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.passwordHash.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	owner, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if owner != nil {
		return ErrEmailAlreadyRegistered
	}
	return nil
}

func (s *AccountService) emailChangeCodeTTL() time.Duration {
	if s.config.EmailChangeCodeTTL > 0 {
		return s.config.EmailChangeCodeTTL
	}
	return 15 * time.Minute
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
