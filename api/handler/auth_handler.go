package handler

import (
	"net/http"

	"mertflix/internal/dto"
	"mertflix/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.Register(c.Request().Context(), req, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OKResponse{OK: true, Message: "Verification code sent"})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.VerifyEmail(c.Request().Context(), req, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	result, err := h.Service.Login(c.Request().Context(), req, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) LoginWithTwoFactor(c echo.Context) error {
	var req dto.LoginTwoFactorRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	result, err := h.Service.LoginWithTwoFactor(c.Request().Context(), req, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequestRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true, Message: "If the email exists, a reset code was sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	if err := h.Service.ResetPassword(c.Request().Context(), req, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}
