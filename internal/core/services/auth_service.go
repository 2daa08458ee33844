package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/google/uuid"
)

type AuthService struct {
	repo      domain.UserRepository
	summaries domain.SummaryRepository
	tokens    *TokenService
}

func NewAuthService(repo domain.UserRepository, summaries domain.SummaryRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		repo:      repo,
		summaries: summaries,
		tokens:    tokens,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(uuid.NewString(), input.Email, input.Username)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, *domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// DeleteAccount removes the user together with the stats summary and its ngram records.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.summaries.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, domain.ErrSummaryNotFound) {
		return fmt.Errorf("auth service: failed to delete summary: %w", err)
	}
	return s.repo.Delete(ctx, userID)
}
