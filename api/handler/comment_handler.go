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

type CommentHandler struct {
	Service  *service.CommentService
	Validate *validator.Validate
}

func NewCommentHandler(svc *service.CommentService, validate *validator.Validate) *CommentHandler {
	return &CommentHandler{Service: svc, Validate: validate}
}

func (h *CommentHandler) List(c echo.Context) error {
	var query dto.CommentQuery
	if err := bindQuery(c, h.Validate, &query); err != nil {
		return err
	}
	views, err := h.Service.List(c.Request().Context(), query, middleware.ViewerFromContext(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.CommentListFromViews(views))
}

func (h *CommentHandler) Create(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	id, err := h.Service.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.CreateCommentResponse{OK: true, ID: id.String()})
}

func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	commentID, err := commentIDParam(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Request().Context(), userID, commentID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *CommentHandler) Vote(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	commentID, err := commentIDParam(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := bindRequest(c, h.Validate, &req); err != nil {
		return err
	}
	value, err := h.Service.Vote(c.Request().Context(), userID, commentID, *req.Value)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VoteResponse{OK: true, Value: value})
}

func commentIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}
