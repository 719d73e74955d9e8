package auth

import "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"

// TokenResponse carries the session tokens issued on register, login and refresh
type TokenResponse struct {
	User         *entities.PublicUser `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
}
