package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"votebox/internal/auth"
	"votebox/internal/ledger"
	"votebox/internal/response"
	"votebox/internal/router"
	"votebox/internal/store"
	"votebox/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	mem := store.NewMemStore()
	tokens := token.NewService("test-secret", time.Hour)
	authService := auth.NewService(mem.Users(), tokens)
	voteLedger := ledger.New(mem.Users(), mem.Options(), nil)

	r := gin.New()
	router.RegisterRoutes(r, authService, voteLedger, tokens)
	return r
}

func request(r *gin.Engine, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Base {
	t.Helper()
	var body response.Base
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := request(r, "POST", "/api/v1/auth/register", "", gin.H{
		"username": username, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.Equal(t, http.StatusOK, body.Code)
	data := body.Data.(map[string]interface{})
	return data["token"].(string)
}

func TestRegisterReturnsToken(t *testing.T) {
	r := newServer()
	tok := registerUser(t, r, "alice")
	assert.NotEmpty(t, tok)
}

func TestRegisterValidationErrorsInBody(t *testing.T) {
	r := newServer()

	// business errors ride in the body with HTTP 200
	w := request(r, "POST", "/api/v1/auth/register", "", gin.H{
		"username": "ab", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "Username must be between 3 and 20 characters", body.Message)

	w = request(r, "POST", "/api/v1/auth/register", "", gin.H{
		"username": "validname", "password": "short",
	})
	body = decode(t, w)
	assert.Equal(t, "Password must be at least 8 characters", body.Message)

	w = request(r, "POST", "/api/v1/auth/register", "", gin.H{"password": "password123"})
	body = decode(t, w)
	assert.Equal(t, "Missing username", body.Message)
}

func TestLogin(t *testing.T) {
	r := newServer()
	registerUser(t, r, "alice")

	w := request(r, "POST", "/api/v1/auth/login", "", gin.H{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, http.StatusOK, body.Code)
	assert.NotEmpty(t, body.Data.(map[string]interface{})["token"])

	w = request(r, "POST", "/api/v1/auth/login", "", gin.H{
		"username": "alice", "password": "wrongpassword",
	})
	body = decode(t, w)
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "Username or password not found", body.Message)
}

func TestRoutesRequireToken(t *testing.T) {
	r := newServer()

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/users"},
		{"GET", "/api/v1/users/me"},
		{"DELETE", "/api/v1/users?id=1"},
		{"GET", "/api/v1/votings"},
		{"POST", "/api/v1/votings"},
		{"GET", "/api/v1/votings/vote?id=1"},
		{"DELETE", "/api/v1/votings?id=1"},
	} {
		w := request(r, route.method, route.path, "", nil)
		body := decode(t, w)
		assert.Equal(t, http.StatusUnauthorized, body.Code, "%s %s", route.method, route.path)
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	r := newServer()
	userTok := registerUser(t, r, "plainuser")

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/users"},
		{"DELETE", "/api/v1/users?id=1"},
		{"GET", "/api/v1/votings"},
		{"DELETE", "/api/v1/votings?id=1"},
	} {
		w := request(r, route.method, route.path, userTok, nil)
		body := decode(t, w)
		assert.Equal(t, http.StatusInternalServerError, body.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Unauthorized", body.Message)
	}
}

func TestVotingLifecycle(t *testing.T) {
	r := newServer()
	adminTok := registerUser(t, r, "admin")
	creatorTok := registerUser(t, r, "creator")
	voterTok := registerUser(t, r, "voter")

	// creator submits option "A" and auto-votes
	w := request(r, "POST", "/api/v1/votings", creatorTok, gin.H{
		"name": "A", "description": "the first option",
	})
	require.Equal(t, http.StatusOK, decode(t, w).Code)

	// admin sees it with one vote
	w = request(r, "GET", "/api/v1/votings", adminTok, nil)
	body := decode(t, w)
	require.Equal(t, http.StatusOK, body.Code)
	list := body.Data.([]interface{})
	require.Len(t, list, 1)
	optA := list[0].(map[string]interface{})
	assert.Equal(t, float64(1), optA["voteCount"])
	optID := fmt.Sprintf("%.0f", optA["id"].(float64))

	// voter votes for it
	w = request(r, "GET", "/api/v1/votings/vote?id="+optID, voterTok, nil)
	require.Equal(t, http.StatusOK, decode(t, w).Code)

	// voting twice fails
	w = request(r, "GET", "/api/v1/votings/vote?id="+optID, voterTok, nil)
	assert.Equal(t, "This user already voted", decode(t, w).Message)

	// count is now 2
	w = request(r, "GET", "/api/v1/votings", adminTok, nil)
	list = decode(t, w).Data.([]interface{})
	assert.Equal(t, float64(2), list[0].(map[string]interface{})["voteCount"])

	// voter's own record shows the pointer
	w = request(r, "GET", "/api/v1/users/me", voterTok, nil)
	me := decode(t, w).Data.(map[string]interface{})
	assert.NotNil(t, me["votedFor"])

	// admin deletes the option; everyone returns to NotVoted
	w = request(r, "DELETE", "/api/v1/votings?id="+optID, adminTok, nil)
	require.Equal(t, http.StatusOK, decode(t, w).Code)

	w = request(r, "GET", "/api/v1/users/me", voterTok, nil)
	me = decode(t, w).Data.(map[string]interface{})
	assert.Nil(t, me["votedFor"])

	// and may vote again
	w = request(r, "POST", "/api/v1/votings", voterTok, gin.H{
		"name": "B", "description": "a fresh start",
	})
	assert.Equal(t, http.StatusOK, decode(t, w).Code)
}

func TestAdminDeleteUser(t *testing.T) {
	r := newServer()
	adminTok := registerUser(t, r, "Admin")
	registerUser(t, r, "target")

	// find target's id
	w := request(r, "GET", "/api/v1/users", adminTok, nil)
	body := decode(t, w)
	require.Equal(t, http.StatusOK, body.Code)

	var targetID string
	for _, raw := range body.Data.([]interface{}) {
		u := raw.(map[string]interface{})
		if u["username"] == "target" {
			targetID = fmt.Sprintf("%.0f", u["id"].(float64))
		}
	}
	require.NotEmpty(t, targetID)

	w = request(r, "DELETE", "/api/v1/users?id="+targetID, adminTok, nil)
	require.Equal(t, http.StatusOK, decode(t, w).Code)

	// deleted user no longer listed
	w = request(r, "GET", "/api/v1/users", adminTok, nil)
	for _, raw := range decode(t, w).Data.([]interface{}) {
		assert.NotEqual(t, "target", raw.(map[string]interface{})["username"])
	}

	// second delete is NotFound
	w = request(r, "DELETE", "/api/v1/users?id="+targetID, adminTok, nil)
	assert.Equal(t, "User with that ID does not exist", decode(t, w).Message)
}

func TestMissingID(t *testing.T) {
	r := newServer()
	adminTok := registerUser(t, r, "admin")

	w := request(r, "DELETE", "/api/v1/users", adminTok, nil)
	assert.Equal(t, "ID missing", decode(t, w).Message)

	w = request(r, "DELETE", "/api/v1/votings", adminTok, nil)
	assert.Equal(t, "ID missing", decode(t, w).Message)
}

func TestUnknownRoute(t *testing.T) {
	r := newServer()
	w := request(r, "GET", "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decode(t, w).Code)
}
