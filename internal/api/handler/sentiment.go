package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/service"
)

// SentimentHandler handles sentiment analyzer endpoints.
type SentimentHandler struct {
	moderation *service.ModerationService
}

// NewSentimentHandler creates a new sentiment handler.
func NewSentimentHandler(moderation *service.ModerationService) *SentimentHandler {
	return &SentimentHandler{moderation: moderation}
}

// AnalyzeRequest is the body of POST /api/sentiment/analyze.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze handles POST /api/sentiment/analyze.
func (h *SentimentHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if !bindText(c, &req, func() string { return req.Text }, "text") {
		return
	}

	result, err := h.moderation.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		serverError(c, err, "Failed to analyze text")
		return
	}

	c.JSON(http.StatusOK, result)
}
