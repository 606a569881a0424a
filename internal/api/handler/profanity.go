package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/service"
)

// ProfanityHandler handles profanity checker endpoints.
type ProfanityHandler struct {
	profanity *service.ProfanityService
}

// NewProfanityHandler creates a new profanity handler.
// Parameters:
//   - profanity: profanity pipeline.
// Returns:
//   - *ProfanityHandler: initialized handler.
func NewProfanityHandler(profanity *service.ProfanityService) *ProfanityHandler {
	return &ProfanityHandler{profanity: profanity}
}

// CheckRequest is the body of POST /api/profanity/check.
type CheckRequest struct {
	Text string `json:"text" binding:"required"`
}

// CheckResponse carries the text, or false when it was blocked.
type CheckResponse struct {
	Result domain.Outcome `json:"result"`
}

// Check handles POST /api/profanity/check.
func (h *ProfanityHandler) Check(c *gin.Context) {
	var req CheckRequest
	if !bindText(c, &req, func() string { return req.Text }, "text") {
		return
	}

	outcome, err := h.profanity.CheckText(c.Request.Context(), req.Text)
	if err != nil {
		serverError(c, err, "Failed to process text")
		return
	}

	c.JSON(http.StatusOK, CheckResponse{Result: outcome})
}

// IsSwearWord handles GET /api/profanity/word/:word.
func (h *ProfanityHandler) IsSwearWord(c *gin.Context) {
	word := c.Param("word")
	if strings.TrimSpace(word) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: word must not be empty"})
		return
	}

	ok, err := h.profanity.IsSwearWord(c.Request.Context(), word)
	if err != nil {
		serverError(c, err, "Failed to check word")
		return
	}

	c.JSON(http.StatusOK, gin.H{"isSwearWord": ok})
}
