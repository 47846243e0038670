package routes

import (
	"net/http"

	"mertflix/api/handler"
	"mertflix/api/middleware"
	"mertflix/internal/entity"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Account        *handler.AccountHandler
	Library        *handler.LibraryHandler
	Comments       *handler.CommentHandler
	AuthMiddleware middleware.AuthMiddleware
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	libraryHandler *handler.LibraryHandler,
	commentHandler *handler.CommentHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Account:        accountHandler,
		Library:        libraryHandler,
		Comments:       commentHandler,
		AuthMiddleware: authMiddleware,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	e.POST("/auth/register", r.Auth.Register)
	e.POST("/auth/verify-email", r.Auth.VerifyEmail)
	e.POST("/auth/login", r.Auth.Login)
	e.POST("/auth/login-2fa", r.Auth.LoginWithTwoFactor)
	e.POST("/auth/request-password-reset", r.Auth.RequestPasswordReset)
	e.POST("/auth/reset-password", r.Auth.ResetPassword)

	me := e.Group("/me", requireAuth)
	me.GET("/profile", r.Account.Profile)
	me.PUT("/profile", r.Account.UpdateProfile)
	me.GET("/security", r.Account.Security)
	me.POST("/password", r.Account.ChangePassword)
	me.POST("/email-change/request", r.Account.RequestEmailChange)
	me.POST("/email-change/confirm", r.Account.ConfirmEmailChange)
	me.POST("/2fa", r.Account.SetTwoFactor)
	me.POST("/deactivate", r.Account.Deactivate)
	me.POST("/delete", r.Account.Delete)

	for _, shelf := range []entity.Shelf{entity.MyList, entity.Watched} {
		path := "/" + string(shelf)
		me.GET(path, r.Library.List(shelf))
		me.POST(path, r.Library.Add(shelf))
		me.DELETE(path, r.Library.Remove(shelf))
	}

	e.GET("/comments", r.Comments.List, r.AuthMiddleware.OptionalViewer)
	e.POST("/comments", r.Comments.Create, requireAuth)
	e.DELETE("/comments/:id", r.Comments.Delete, requireAuth)
	e.POST("/comments/:id/vote", r.Comments.Vote, requireAuth)
}
