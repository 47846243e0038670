package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const resendMaxAttempts = 3

type ResendEmailSender struct {
	from   string
	client *resend.Client
}

func NewResendEmailSender(apiKey string, from string) (*ResendEmailSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail from is required")
	}
	return &ResendEmailSender{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailSender) Send(ctx context.Context, to string, subject string, text string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}

	var lastErr error
	for attempt := 0; attempt < resendMaxAttempts; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, &resend.SendEmailOptions{})
		if err == nil {
			return nil
		}
		lastErr = err

		wait, ok := resendRetryDelay(err, attempt)
		if !ok {
			return fmt.Errorf("resend send failed: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 10 {
				seconds = 10
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}
	return 0, false
}
