package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"
	"nutrition-tracker/utils"

	"gorm.io/gorm"
)

type AuthService struct {
	users  repositories.UserRepository
	secret []byte
}

func NewAuthService(users repositories.UserRepository, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret)}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"max=255"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user registered", "userID", user.ID, "username", user.Username)

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrBadCredentials
	}
	return s.issue(user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return ErrBadCredentials
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed
	return s.users.Save(ctx, user)
}

// Authenticate validates a bearer token and returns the user ID it carries.
func (s *AuthService) Authenticate(token string) (uint, error) {
	claims, err := utils.ParseJWT(s.secret, token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(s.secret, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}
	return &AuthResponse{Token: token, ID: user.ID, Username: user.Username, Email: user.Email}, nil
}
