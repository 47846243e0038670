package service

import (
	"context"
	"encoding/json"
	"io"

	"mertflix/internal/entity"
	"mertflix/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// auditTrail records security events. Failures are logged and swallowed.
type auditTrail struct {
	logs repository.SecurityLogRepository
	log  logrus.FieldLogger
}

func (a auditTrail) record(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if a.logs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			a.log.WithError(err).WithField("action", action).Warn("audit metadata not encodable")
			return
		}
		payload = datatypes.JSON(bytes)
	}

	entry := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := a.logs.Log(ctx, entry); err != nil {
		a.log.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}

func nopLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
