package handler

import (
	"net/http"

	"mertflix/internal/dto"
	"mertflix/internal/entity"
	"mertflix/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// LibraryHandler serves both shelves; routes pick the shelf when registering.
type LibraryHandler struct {
	Service  *service.LibraryService
	Validate *validator.Validate
}

func NewLibraryHandler(svc *service.LibraryService, validate *validator.Validate) *LibraryHandler {
	return &LibraryHandler{Service: svc, Validate: validate}
}

func (h *LibraryHandler) List(shelf entity.Shelf) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		items, err := h.Service.List(c.Request().Context(), shelf, userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, dto.LibraryListFromEntities(items))
	}
}

func (h *LibraryHandler) Add(shelf entity.Shelf) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		var req dto.LibraryItemRequest
		if err := bindRequest(c, h.Validate, &req); err != nil {
			return err
		}
		if err := h.Service.Add(c.Request().Context(), shelf, userID, req); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.OKResponse{OK: true})
	}
}

func (h *LibraryHandler) Remove(shelf entity.Shelf) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		var query dto.LibraryItemQuery
		if err := bindQuery(c, h.Validate, &query); err != nil {
			return err
		}
		if err := h.Service.Remove(c.Request().Context(), shelf, userID, query); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
	}
}
