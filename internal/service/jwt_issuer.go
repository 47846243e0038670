package service

import (
	"mertflix/internal/utils"

	"github.com/google/uuid"
)

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(userID uuid.UUID, email string) (string, error) {
	if j.Manager == nil {
		return "", utils.ErrInvalidToken
	}
	token, _, err := j.Manager.IssueAccessToken(userID.String(), email)
	return token, err
}

func (j JWTAccessIssuer) ParseAccessToken(token string) (uuid.UUID, error) {
	if j.Manager == nil {
		return uuid.Nil, utils.ErrInvalidToken
	}
	claims, err := j.Manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, utils.ErrInvalidToken
	}
	return userID, nil
}
