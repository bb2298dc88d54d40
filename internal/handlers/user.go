package handlers

import (
	"votebox/internal/ledger"
	"votebox/internal/middleware"
	"votebox/internal/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	ledger *ledger.Ledger
}

func NewUserHandler(l *ledger.Ledger) *UserHandler {
	return &UserHandler{ledger: l}
}

// List handles GET /users (admin only).
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.ledger.ListUsers(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":        u.ID,
			"role":      u.Role,
			"votedFor":  u.VotedFor,
			"username":  u.Username,
			"createdAt": u.CreatedAt,
			"updatedAt": u.UpdatedAt,
		})
	}
	response.OK(c, out)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.ledger.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"role":      user.Role,
		"userId":    user.ID,
		"votedFor":  user.VotedFor,
		"username":  user.Username,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	})
}

// Delete handles DELETE /users?id= (admin only).
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := queryID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if err := h.ledger.DeleteUser(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}
