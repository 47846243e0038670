package service

import (
	"context"
	"fmt"
	"time"

	"mertflix/internal/entity"
	"mertflix/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// codeIssuer stores hashed one-time codes and mails the plaintext to the user.
type codeIssuer struct {
	codes    repository.OneTimeCodeRepository
	hasher   CodeHasher
	generate CodeGenerator
	clock    Clock
	sender   EmailSender
	log      logrus.FieldLogger
}

// issue does not roll back the stored code when delivery fails; earlier unused codes of
// the same kind also stay valid.
func (i codeIssuer) issue(
	ctx context.Context,
	user *entity.User,
	kind entity.CodeKind,
	newEmail *string,
	ttl time.Duration,
	compose func(code string, ttl time.Duration) mailMessage,
) (uuid.UUID, error) {
	code, err := i.generate()
	if err != nil {
		return uuid.Nil, err
	}
	now := i.clock.Now()
	row := &entity.OneTimeCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  i.hasher.Hash(code),
		NewEmail:  newEmail,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := i.codes.Issue(ctx, kind, row); err != nil {
		return uuid.Nil, err
	}

	to := user.Email
	if newEmail != nil {
		to = *newEmail
	}
	if err := i.deliver(ctx, to, compose(code, ttl)); err != nil {
		return uuid.Nil, err
	}
	i.log.WithFields(logrus.Fields{"user_id": user.ID, "kind": kind}).Info("one-time code issued")
	return row.ID, nil
}

func (i codeIssuer) deliver(ctx context.Context, to string, message mailMessage) error {
	if i.sender == nil {
		return fmt.Errorf("%w: no mail sender configured", ErrDeliveryFailed)
	}
	if err := i.sender.Send(ctx, to, message.Subject, message.Text); err != nil {
		i.log.WithError(err).WithField("subject", message.Subject).Error("mail delivery failed")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
