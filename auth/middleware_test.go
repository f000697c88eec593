package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"deelaw-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	tokens map[string]*models.User
}

func (f *fakeResolver) UserByToken(ctx context.Context, token string) (*models.User, error) {
	user, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("unauthenticated")
	}
	return user, nil
}

func newTestRouter(resolver UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", Middleware(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestMiddlewareMissingHeader(t *testing.T) {
	r := newTestRouter(&fakeResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
}

func TestMiddlewareMalformedHeader(t *testing.T) {
	r := newTestRouter(&fakeResolver{})

	for _, header := range []string{"token-without-scheme", "Basic dXNlcjpwYXNz", "Bearer ", "Bearer"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestMiddlewareUnknownToken(t *testing.T) {
	r := newTestRouter(&fakeResolver{tokens: map[string]*models.User{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareValidToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com"}
	resolver := &fakeResolver{tokens: map[string]*models.User{"valid-token": user}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(resolver), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, user.ID, current.ID)

		token, ok := BearerToken(c)
		require.True(t, ok)
		assert.Equal(t, "valid-token", token)

		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareBearerSchemeCaseInsensitive(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	resolver := &fakeResolver{tokens: map[string]*models.User{"valid-token": user}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
