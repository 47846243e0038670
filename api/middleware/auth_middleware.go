package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mertflix/internal/entity"
	"mertflix/internal/service"

	"github.com/labstack/echo/v4"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// AuthMiddleware checks the bearer token and reloads the account on every request, so a
// deactivation takes effect before the token expires.
type AuthMiddleware struct {
	Auth Authenticator
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.Auth == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		user, err := m.Auth.Authenticate(c.Request().Context(), token)
		switch {
		case errors.Is(err, service.ErrAccountDeactivated):
			return echo.NewHTTPError(http.StatusForbidden, "Account deactivated")
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		case err != nil:
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
		}
		SetAuthContext(c, user.ID, user.Email)
		return next(c)
	}
}

// OptionalViewer attaches the caller when a valid token for an active account is present
// and otherwise continues anonymously.
func (m AuthMiddleware) OptionalViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractBearerToken(c.Request())
		if token == "" || m.Auth == nil {
			return next(c)
		}
		user, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err == nil && user != nil {
			SetAuthContext(c, user.ID, user.Email)
		}
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
