package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=6,max=200"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,max=255"`
	Code  string `json:"code" validate:"required,max=16"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"max=200"`
}

type LoginTwoFactorRequest struct {
	Email       string `json:"email" validate:"required,max=255"`
	ChallengeID string `json:"challengeId" validate:"required,uuid"`
	Code        string `json:"code" validate:"required,max=16"`
}

// LoginResponse carries either a session token or a second-factor challenge, never both.
type LoginResponse struct {
	Token       string `json:"token,omitempty"`
	Requires2FA bool   `json:"requires2fa,omitempty"`
	ChallengeID string `json:"challengeId,omitempty"`
}

type PasswordResetRequestRequest struct {
	Email string `json:"email" validate:"required,max=255"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,max=255"`
	Code        string `json:"code" validate:"required,max=16"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=200"`
}

type OKResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
