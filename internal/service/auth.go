package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/repository"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/config"
	"github.com/rifat-hossain/bidhaus/pkg/jwt"
	"github.com/rifat-hossain/bidhaus/pkg/utils"
)

type AuthServicer interface {
	Register(ctx context.Context, name, email, password, role string) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (jwt.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (jwt.Tokens, error)
	ValidateAccessToken(tokenString string) (*config.UserClaims, error)
	ValidateRefreshToken(tokenString string) (*config.RefreshClaims, error)
}

type AuthService struct {
	users UserStore
	JM    *jwt.JwtManager
}

func NewAuthService(users UserStore) (*AuthService, error) {
	jm, err := jwt.NewJwtManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AuthService: %w", err)
	}
	return &AuthService{users: users, JM: jm}, nil
}

// Register creates a user account. Admin accounts are provisioned out of
// band, never through this endpoint.
func (as *AuthService) Register(ctx context.Context, name, email, password, role string) (uuid.UUID, error) {
	if role != config.RoleUser && role != config.RoleMerchant {
		role = config.RoleUser
	}

	if existing, err := as.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return uuid.Nil, ErrUserExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	u := &types.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := as.users.Create(ctx, u); err != nil {
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

func (as *AuthService) Login(ctx context.Context, email, password string) (jwt.Tokens, error) {
	u, err := as.users.GetByEmail(ctx, email)
	if err != nil {
		return jwt.Tokens{}, ErrInvalidCredentials
	}
	if err := utils.ComparePassword(password, u.Password); err != nil {
		return jwt.Tokens{}, ErrInvalidCredentials
	}

	tokens, err := as.JM.GenerateTokenPair(jwt.TokenUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
	if err != nil {
		return jwt.Tokens{}, fmt.Errorf("generate tokens: %w", err)
	}
	return tokens, nil
}

func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (jwt.Tokens, error) {
	claims, err := as.JM.ValidateRefreshToken(refreshToken)
	if err != nil {
		return jwt.Tokens{}, ErrInvalidCredentials
	}

	u, err := as.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return jwt.Tokens{}, ErrUserNotFound
	}

	tokens, err := as.JM.GenerateTokenPair(jwt.TokenUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
	if err != nil {
		return jwt.Tokens{}, fmt.Errorf("generate tokens: %w", err)
	}
	return tokens, nil
}

func (as *AuthService) ValidateAccessToken(tokenString string) (*config.UserClaims, error) {
	return as.JM.ValidateAccessToken(tokenString)
}

func (as *AuthService) ValidateRefreshToken(tokenString string) (*config.RefreshClaims, error) {
	return as.JM.ValidateRefreshToken(tokenString)
}
