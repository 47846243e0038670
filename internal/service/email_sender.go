package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const DefaultMailTimeout = 15 * time.Second

// LogEmailSender prints messages instead of delivering them. Used when no provider is configured.
type LogEmailSender struct {
	Log logrus.FieldLogger
}

func (s LogEmailSender) Send(_ context.Context, to string, subject string, text string) error {
	if s.Log == nil {
		return errors.New("log email sender has no logger")
	}
	s.Log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"text":    text,
	}).Info("mail (dev)")
	return nil
}

// TimeoutEmailSender bounds every delivery with its own deadline, separate from the request's.
type TimeoutEmailSender struct {
	Next    EmailSender
	Timeout time.Duration
}

func (s TimeoutEmailSender) Send(ctx context.Context, to string, subject string, text string) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultMailTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Next.Send(ctx, to, subject, text); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("mail timed out after %s: %w", timeout, err)
		}
		return err
	}
	return nil
}

// PacedEmailSender keeps outgoing mail under the provider's send quota.
type PacedEmailSender struct {
	Next    EmailSender
	Limiter *rate.Limiter
}

func NewPacedEmailSender(next EmailSender, perSecond float64) *PacedEmailSender {
	if perSecond <= 0 {
		perSecond = 2
	}
	return &PacedEmailSender{
		Next:    next,
		Limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (s *PacedEmailSender) Send(ctx context.Context, to string, subject string, text string) error {
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	return s.Next.Send(ctx, to, subject, text)
}
