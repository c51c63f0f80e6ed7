package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims for a signed-in player.
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// SignInRequest is the request body for anonymous player sign-in.
type SignInRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// SignInResponse is returned after successful sign-in.
type SignInResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}
