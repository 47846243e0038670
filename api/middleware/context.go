package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextUserIDKey = "auth_user_id"
	contextEmailKey  = "auth_email"
)

func SetAuthContext(c echo.Context, userID uuid.UUID, email string) {
	c.Set(contextUserIDKey, userID)
	c.Set(contextEmailKey, email)
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func EmailFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextEmailKey)
	email, ok := value.(string)
	return email, ok
}

// ViewerFromContext returns the caller's id when OptionalViewer resolved one.
func ViewerFromContext(c echo.Context) *uuid.UUID {
	userID, ok := UserIDFromContext(c)
	if !ok {
		return nil
	}
	return &userID
}
