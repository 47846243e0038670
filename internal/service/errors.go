package service

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrWeakPassword           = errors.New("password too short")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidCode            = errors.New("invalid code")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAccountDeactivated     = errors.New("account deactivated")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrTwoFactorNotEnabled    = errors.New("two factor not enabled")
	ErrDeliveryFailed         = errors.New("email could not be sent")
	ErrInvalidUsername        = errors.New("invalid username")
	ErrUsernameLocked         = errors.New("username cannot be changed")
	ErrUsernameTaken          = errors.New("username already taken")
	ErrInvalidAvatarStyle     = errors.New("invalid avatar style")
	ErrInvalidMediaType       = errors.New("invalid media type")
	ErrInvalidTMDBID          = errors.New("invalid tmdb id")
	ErrCommentTooShort        = errors.New("comment too short")
	ErrCommentTooLong         = errors.New("comment too long")
	ErrInvalidVote            = errors.New("invalid vote")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
)
