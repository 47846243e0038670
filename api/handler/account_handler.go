package handler

import (
	"net/http"

	"mertflix/api/middleware"
	"mertflix/internal/dto"
	"mertflix/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	Service  *service.AccountService
	Validate *validator.Validate
}

func NewAccountHandler(svc *service.AccountService, validate *validator.Validate) *AccountHandler {
	return &AccountHandler{Service: svc, Validate: validate}
}

func (h *AccountHandler) Profile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Service.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponseFromEntity(user))
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.UpdateProfile(c.Request().Context(), userID, req); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AccountHandler) Security(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Service.Security(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SecurityResponseFromEntity(user))
}

func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.ChangePassword(c.Request().Context(), userID, req, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AccountHandler) RequestEmailChange(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.EmailChangeRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	requestID, err := h.Service.RequestEmailChange(c.Request().Context(), userID, req, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.EmailChangeResponse{OK: true, RequestID: requestID.String()})
}

func (h *AccountHandler) ConfirmEmailChange(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.EmailChangeConfirmRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	email, err := h.Service.ConfirmEmailChange(c.Request().Context(), userID, req, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.EmailChangeConfirmResponse{OK: true, Email: email})
}

func (h *AccountHandler) SetTwoFactor(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.TwoFactorRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	enabled, err := h.Service.SetTwoFactor(c.Request().Context(), userID, req.Enabled, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TwoFactorResponse{OK: true, TwoFactorEnabled: enabled})
}

func (h *AccountHandler) Deactivate(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.PasswordConfirmRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.Deactivate(c.Request().Context(), userID, req.Password, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AccountHandler) Delete(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.PasswordConfirmRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.Delete(c.Request().Context(), userID, req.Password, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func requireUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return userID, nil
}
