package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"deelaw-backend/models"
	"deelaw-backend/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrCredentialsIncorrect = errors.New("the provided credentials are incorrect")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrVerificationInvalid  = errors.New("invalid verification token")
)

// AuthService handles registration, login, and bearer session resolution.
// Bearer tokens are opaque random strings stored hashed; one session row per
// device, each independently revocable.
type AuthService struct {
	users    repository.UserStore
	sessions repository.SessionStore
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// AuthWithUserStore sets the user store
func AuthWithUserStore(users repository.UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.users = users
	}
}

// AuthWithSessionStore sets the session store
func AuthWithSessionStore(sessions repository.SessionStore) AuthServiceOption {
	return func(s *AuthService) {
		s.sessions = sessions
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult bundles the user record with a freshly issued bearer token
type AuthResult struct {
	User  *models.User
	Token string
}

// Register creates a user with the default token allowance and issues the
// first bearer session.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.sessions == nil {
		return nil, errors.New("session store not set")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return nil, ErrInvalidInput
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: string(hash),
		Tokens:       models.DefaultTokens(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	verification, err := generateToken()
	if err == nil {
		if err := s.users.SetVerificationToken(ctx, user.ID, verification); err != nil {
			log.Printf("Warning: failed to store verification token for %s: %v", user.Email, err)
		} else {
			// Mail delivery is handled by an external collaborator; the token
			// is logged so local setups can complete the flow.
			log.Printf("Verification token issued for %s: %s", user.Email, verification)
		}
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a new bearer session. The failure is
// deliberately generic: a missing user and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.sessions == nil {
		return nil, errors.New("session store not set")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrCredentialsIncorrect
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredentialsIncorrect
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes exactly the presented token; other sessions of the same user
// stay valid.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil {
		return errors.New("session store not set")
	}
	return s.sessions.DeleteByTokenHash(ctx, hashToken(token))
}

// UserByToken resolves a bearer token to its user, or fails closed with
// ErrUnauthenticated. Read-only apart from the last-used timestamp.
func (s *AuthService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	if s.users == nil || s.sessions == nil {
		return nil, errors.New("auth service not configured")
	}

	tokenHash := hashToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if err := s.sessions.Touch(ctx, tokenHash); err != nil {
		log.Printf("Warning: failed to touch session for user %s: %v", user.ID, err)
	}

	return user, nil
}

// VerifyEmail completes the email confirmation step for the matching token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if token == "" {
		return nil, ErrVerificationInvalid
	}

	user, err := s.users.VerifyByToken(ctx, token)
	if err != nil {
		return nil, ErrVerificationInvalid
	}
	return user, nil
}

// ResendVerification issues a fresh verification token for an unverified user.
func (s *AuthService) ResendVerification(ctx context.Context, user *models.User) error {
	if s.users == nil {
		return errors.New("user store not set")
	}
	if user.EmailVerified() {
		return nil
	}

	verification, err := generateToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, verification); err != nil {
		return err
	}
	log.Printf("Verification token reissued for %s: %s", user.Email, verification)
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	session := &models.Session{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		Name:      "auth_token",
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// generateToken returns a 40-byte random hex string
func generateToken() (string, error) {
	buf := make([]byte, 40)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashToken returns the hex SHA-256 of a bearer token. Only hashes are stored.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
