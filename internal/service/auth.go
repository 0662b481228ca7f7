package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

var (
	// Какой именно фактор не сошелся - наружу не говорим
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
)

type AuthService struct {
	users     repo.UserRepository
	tokens    *auth.TokenManager
	blacklist *auth.Blacklist
}

func NewAuthService(users repo.UserRepository, tokens *auth.TokenManager, blacklist *auth.Blacklist) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || !strings.Contains(email, "@") || password == "" {
		return model.User{}, ErrValidation
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	// Дубликат email/username всплывет как repo.ErrorConflict
	return s.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// Logout вносит токен в черный список до его естественного истечения.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	s.blacklist.Add(token, claims.ExpiresAt.Time)
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}
