package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"mertflix/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody    = "Invalid JSON body"
	msgInternal       = "Internal server error"
	msgPasswordLength = "Password must be at least 6 chars"
)

type serviceErrorMapping struct {
	err     error
	status  int
	message string
}

// Security-sensitive entries use one fixed message regardless of the underlying cause.
var serviceErrors = []serviceErrorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Invalid email"},
	{service.ErrWeakPassword, http.StatusBadRequest, msgPasswordLength},
	{service.ErrInvalidCode, http.StatusBadRequest, "Invalid code"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrAccountDeactivated, http.StatusForbidden, "Account deactivated"},
	{service.ErrEmailNotVerified, http.StatusForbidden, "Email not verified"},
	{service.ErrTwoFactorNotEnabled, http.StatusForbidden, "2FA not enabled"},
	{service.ErrEmailAlreadyRegistered, http.StatusConflict, "Email already registered"},
	{service.ErrDeliveryFailed, http.StatusInternalServerError, "Email could not be sent"},
	{service.ErrInvalidUsername, http.StatusBadRequest, "Invalid username"},
	{service.ErrUsernameLocked, http.StatusBadRequest, "Username cannot be changed"},
	{service.ErrUsernameTaken, http.StatusConflict, "Username already taken"},
	{service.ErrInvalidAvatarStyle, http.StatusBadRequest, "Invalid avatarStyle"},
	{service.ErrInvalidMediaType, http.StatusBadRequest, "Invalid mediaType"},
	{service.ErrInvalidTMDBID, http.StatusBadRequest, "Invalid tmdbId"},
	{service.ErrCommentTooShort, http.StatusBadRequest, "Comment too short"},
	{service.ErrCommentTooLong, http.StatusBadRequest, "Comment too long"},
	{service.ErrInvalidVote, http.StatusBadRequest, "Invalid vote"},
	{service.ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrForbidden, http.StatusForbidden, "Forbidden"},
}

// fieldMessages overrides the generic "Invalid <field>" text for a few request fields.
var fieldMessages = map[string]string{
	"newEmail": "Invalid email",
	"value":    "Invalid vote",
}

func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

func validateRequest(validate *validator.Validate, payload any) error {
	if validate == nil {
		return nil
	}
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.New(msgInvalidBody)
	}
	first := fieldErrors[0]
	field := first.Field()
	if first.Tag() == "min" && (field == "password" || field == "newPassword") {
		return errors.New(msgPasswordLength)
	}
	if message, ok := fieldMessages[field]; ok {
		return errors.New(message)
	}
	return errors.New("Invalid " + field)
}

// decodeJSON treats an empty body as an empty object.
func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return errors.New(msgInvalidBody)
	}
	return nil
}

// bindRequest decodes and validates a JSON body. The returned error is ready to be
// returned from the handler.
func bindRequest(c echo.Context, validate *validator.Validate, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validateRequest(validate, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bindQuery is bindRequest for query parameters. A non-numeric tmdbId is the only
// possible parse failure.
func bindQuery(c echo.Context, validate *validator.Validate, target any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tmdbId")
	}
	if err := validateRequest(validate, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func writeServiceError(c echo.Context, err error) error {
	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.err) {
			if mapping.status >= http.StatusInternalServerError {
				return echo.NewHTTPError(mapping.status, mapping.message).SetInternal(err)
			}
			return writeError(c, mapping.status, errors.New(mapping.message))
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
}

// HTTPErrorHandler renders every framework and handler error as {"error": message} and
// logs server-side failures with their cause.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := msgInternal

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if text, ok := httpErr.Message.(string); ok && text != "" {
				message = text
			} else if status < http.StatusInternalServerError {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": message})
	}
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
