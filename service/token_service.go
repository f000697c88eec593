package service

import (
	"context"
	"errors"

	"deelaw-backend/models"
	"deelaw-backend/repository"

	"github.com/google/uuid"
)

// TokenService is the quota ledger. It holds no state of its own: counters
// live on the user row and every mutation overwrites the whole four-field
// structure, so concurrent exchanges are last-write-wins.
type TokenService struct {
	users repository.UserStore
}

// NewTokenService creates a new token service
func NewTokenService(users repository.UserStore) *TokenService {
	return &TokenService{users: users}
}

// Balance returns the current counters for display.
func (s *TokenService) Balance(ctx context.Context, userID uuid.UUID) (*models.Tokens, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Tokens, nil
}

// Decrement subtracts amount from the named counter and persists the result.
// No floor is applied: a counter may go negative, and no minimum balance is
// checked before an exchange is admitted.
func (s *TokenService) Decrement(ctx context.Context, user *models.User, kind models.TokenKind, amount int) error {
	if s.users == nil {
		return errors.New("user store not set")
	}

	adjust(&user.Tokens, kind, -amount)
	return s.users.UpdateTokens(ctx, user.ID, user.Tokens)
}

// Grant adds purchased counters. Only the billing callback calls this; the
// chat flow never replenishes.
func (s *TokenService) Grant(ctx context.Context, userID uuid.UUID, grants models.Tokens) (*models.Tokens, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Tokens.Words += grants.Words
	user.Tokens.Images += grants.Images
	user.Tokens.Minutes += grants.Minutes
	user.Tokens.Characters += grants.Characters

	if err := s.users.UpdateTokens(ctx, userID, user.Tokens); err != nil {
		return nil, err
	}
	return &user.Tokens, nil
}

func adjust(t *models.Tokens, kind models.TokenKind, delta int) {
	switch kind {
	case models.TokenKindWords:
		t.Words += delta
	case models.TokenKindImages:
		t.Images += delta
	case models.TokenKindMinutes:
		t.Minutes += delta
	case models.TokenKindCharacters:
		t.Characters += delta
	}
}
