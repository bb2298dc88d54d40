package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"votebox/internal/response"
	"votebox/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(tokens *token.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Authenticate(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": c.GetString(RoleKey)})
	})
	r.GET("/admin", Authenticate(tokens), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func do(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) response.Base {
	t.Helper()
	var body response.Base
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticateMissingHeader(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	r := newRouter(tokens)

	w := do(r, "/protected", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, envelope(t, w).Code)
}

func TestAuthenticateBadScheme(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	r := newRouter(tokens)

	tok, err := tokens.Issue(1, "user")
	require.NoError(t, err)

	w := do(r, "/protected", "Basic "+tok)
	assert.Equal(t, http.StatusUnauthorized, envelope(t, w).Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	r := newRouter(tokens)

	w := do(r, "/protected", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, envelope(t, w).Code)
	assert.Equal(t, "Invalid Token", envelope(t, w).Message)
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	r := newRouter(tokens)

	tok, err := tokens.Issue(7, "user")
	require.NoError(t, err)

	w := do(r, "/protected", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, "user", body["role"])
}

func TestRequireAdmin(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	r := newRouter(tokens)

	userTok, err := tokens.Issue(1, "user")
	require.NoError(t, err)
	adminTok, err := tokens.Issue(2, "admin")
	require.NoError(t, err)

	w := do(r, "/admin", "Bearer "+userTok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusInternalServerError, envelope(t, w).Code)
	assert.Equal(t, "Unauthorized", envelope(t, w).Message)

	w = do(r, "/admin", "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
}
