package dto

import "mertflix/internal/entity"

type ProfileResponse struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Bio         string `json:"bio"`
	AvatarStyle string `json:"avatarStyle"`
	AvatarSeed  string `json:"avatarSeed"`
}

func ProfileResponseFromEntity(user *entity.User) ProfileResponse {
	response := ProfileResponse{
		Email:       user.Email,
		Bio:         user.Bio,
		AvatarStyle: entity.DefaultAvatarStyle,
	}
	if user.Username != nil {
		response.Username = *user.Username
	}
	if user.AvatarStyle != nil && *user.AvatarStyle != "" {
		response.AvatarStyle = *user.AvatarStyle
	}
	if user.AvatarSeed != nil {
		response.AvatarSeed = *user.AvatarSeed
	}
	return response
}

// UpdateProfileRequest fields are optional; absent values fall back to defaults, not to stored values.
type UpdateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,max=64"`
	Bio         *string `json:"bio"`
	AvatarStyle *string `json:"avatarStyle" validate:"omitempty,max=64"`
	AvatarSeed  *string `json:"avatarSeed"`
}

type SecurityResponse struct {
	Email            string `json:"email"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	IsActive         bool   `json:"isActive"`
}

func SecurityResponseFromEntity(user *entity.User) SecurityResponse {
	return SecurityResponse{
		Email:            user.Email,
		TwoFactorEnabled: user.TwoFactorEnabled,
		IsActive:         user.IsActive,
	}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,max=200"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=200"`
}

type EmailChangeRequest struct {
	NewEmail string `json:"newEmail" validate:"required,max=255"`
}

type EmailChangeResponse struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"requestId"`
}

type EmailChangeConfirmRequest struct {
	RequestID string `json:"requestId" validate:"required,uuid"`
	NewEmail  string `json:"newEmail" validate:"required,max=255"`
	Code      string `json:"code" validate:"required,max=16"`
}

type EmailChangeConfirmResponse struct {
	OK    bool   `json:"ok"`
	Email string `json:"email"`
}

type TwoFactorRequest struct {
	Enabled bool `json:"enabled"`
}

type TwoFactorResponse struct {
	OK               bool `json:"ok"`
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
}

type PasswordConfirmRequest struct {
	Password string `json:"password" validate:"max=200"`
}
