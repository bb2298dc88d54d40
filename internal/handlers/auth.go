package handlers

import (
	"votebox/internal/apperr"
	"votebox/internal/auth"
	"votebox/internal/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bindCredentials reads the request body by hand so absent fields report the
// same messages the API has always used.
func bindCredentials(c *gin.Context) (credentialsRequest, error) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, apperr.E(apperr.KindValidation, "Missing body")
	}
	if req.Username == "" {
		return req, apperr.E(apperr.KindValidation, "Missing username")
	}
	if req.Password == "" {
		return req, apperr.E(apperr.KindValidation, "Missing password")
	}
	return req, nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	tok, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, gin.H{"token": tok})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	tok, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{"token": tok})
}
