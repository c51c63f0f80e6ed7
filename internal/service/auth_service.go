package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"promptparty/internal/model"
	"promptparty/internal/repository"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates player identity tokens. Sign-in is
// anonymous: a name is all a player needs to get an identity.
type AuthService struct {
	users     repository.UserRepo
	jwtSecret []byte
}

func NewAuthService(users repository.UserRepo, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: []byte(jwtSecret)}
}

// SignIn creates a user record and returns a signed token for it.
func (s *AuthService) SignIn(ctx context.Context, name, avatarURL string) (*model.SignInResponse, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	playerID := "u_" + uuid.New().String()[:8]
	user := &model.User{
		ID:        playerID,
		Name:      name,
		AvatarURL: avatarURL,
		UpdatedAt: time.Now(),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	claims := &model.PlayerClaims{
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.SignInResponse{Token: signed, PlayerID: playerID}, nil
}

// ValidateToken parses a player token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
