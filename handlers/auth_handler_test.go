package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deelaw-backend/auth"
	"deelaw-backend/models"
	"deelaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserStore struct {
	users map[uuid.UUID]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *stubUserStore) Create(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubUserStore) UpdateTokens(ctx context.Context, id uuid.UUID, tokens models.Tokens) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Tokens = tokens
	return nil
}

func (s *stubUserStore) UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Plan = plan
	return nil
}

func (s *stubUserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	u.EmailVerifiedAt = &now
	return nil
}

func (s *stubUserStore) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	if _, ok := s.users[id]; !ok {
		return errors.New("not found")
	}
	return nil
}

func (s *stubUserStore) VerifyByToken(ctx context.Context, token string) (*models.User, error) {
	return nil, errors.New("not found")
}

type stubSessionStore struct {
	sessions map[string]*models.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*models.Session)}
}

func (s *stubSessionStore) Create(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	s.sessions[session.TokenHash] = session
	return nil
}

func (s *stubSessionStore) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, errors.New("not found")
	}
	return session, nil
}

func (s *stubSessionStore) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	return nil
}

func (s *stubSessionStore) Touch(ctx context.Context, tokenHash string) error {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	session.LastUsedAt = &now
	return nil
}

func newAuthTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)

	authService := service.NewAuthService(
		service.AuthWithUserStore(newStubUserStore()),
		service.AuthWithSessionStore(newStubSessionStore()),
	)
	handler := NewAuthHandler(authService)
	requireAuth := auth.Middleware(authService)

	r := gin.New()
	group := r.Group("/api/auth")
	group.POST("/register", handler.Register)
	group.POST("/login", handler.Login)
	group.POST("/logout", requireAuth, handler.Logout)
	group.GET("/user", requireAuth, handler.User)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func registerPayload() map[string]string {
	return map[string]string{
		"email":     "ada@example.com",
		"password":  "correct-horse-battery",
		"firstName": "Ada",
		"lastName":  "Okafor",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, 5000, resp.User.Tokens.Words)
	assert.Len(t, resp.Token, 80)

	// The password hash never leaves the server
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpointValidation(t *testing.T) {
	r := newAuthTestServer()

	payload := registerPayload()
	payload["password"] = "short"
	w := postJSON(t, r, "/api/auth/register", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = registerPayload()
	payload["email"] = "not-an-email"
	w = postJSON(t, r, "/api/auth/register", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_TAKEN")
}

func TestLoginEndpoint(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginEndpointGenericFailure(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Wrong password and unknown account produce the exact same response body.
	wrongPassword := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "not-the-password",
	}, nil)
	unknownEmail := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse-battery",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Contains(t, wrongPassword.Body.String(), "The provided credentials are incorrect.")
}

func TestLogoutEndpointRevokesSession(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	authHeader := map[string]string{"Authorization": "Bearer " + reg.Token}

	w = postJSON(t, r, "/api/auth/logout", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer resolves
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestUserEndpointReturnsProfile(t *testing.T) {
	r := newAuthTestServer()

	w := postJSON(t, r, "/api/auth/register", registerPayload(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	r.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.Tokens{Words: 5000, Images: 0, Minutes: 5, Characters: 1000}, user.Tokens)
}
