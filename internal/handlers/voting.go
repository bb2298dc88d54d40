package handlers

import (
	"strconv"

	"votebox/internal/apperr"
	"votebox/internal/ledger"
	"votebox/internal/middleware"
	"votebox/internal/response"

	"github.com/gin-gonic/gin"
)

type VotingHandler struct {
	ledger *ledger.Ledger
}

func NewVotingHandler(l *ledger.Ledger) *VotingHandler {
	return &VotingHandler{ledger: l}
}

// List handles GET /votings (admin only): non-deleted options, ascending
// vote count.
func (h *VotingHandler) List(c *gin.Context) {
	options, err := h.ledger.ListOptions(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(options))
	for _, o := range options {
		out = append(out, gin.H{
			"id":          o.ID,
			"name":        o.Name,
			"voteCount":   o.VoteCount,
			"createdAt":   o.CreatedAt,
			"updatedAt":   o.UpdatedAt,
			"description": o.Description,
		})
	}
	response.OK(c, out)
}

type createVotingRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /votings. Creating an option consumes the caller's
// vote.
func (h *VotingHandler) Create(c *gin.Context) {
	var req createVotingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.E(apperr.KindValidation, "Missing body"))
		return
	}

	if _, err := h.ledger.CreateOption(c.Request.Context(), middleware.UserID(c), req.Name, req.Description); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

// Vote handles GET /votings/vote?id=.
func (h *VotingHandler) Vote(c *gin.Context) {
	id, err := queryID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if err := h.ledger.Vote(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

// Delete handles DELETE /votings?id= (admin only).
func (h *VotingHandler) Delete(c *gin.Context) {
	id, err := queryID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if err := h.ledger.DeleteOption(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

// queryID parses the ?id= query parameter shared by the delete and vote
// routes.
func queryID(c *gin.Context) (uint, error) {
	raw := c.Query("id")
	if raw == "" {
		return 0, apperr.E(apperr.KindValidation, "ID missing")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.E(apperr.KindValidation, "ID missing")
	}
	return uint(id), nil
}
