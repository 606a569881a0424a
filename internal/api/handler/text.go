package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/logger"
	"github.com/timmy/modguard/internal/service"
)

// TextHandler handles text submission and lexicon maintenance endpoints.
type TextHandler struct {
	moderation *service.ModerationService
	profanity  *service.ProfanityService
}

// NewTextHandler creates a new text handler.
// Parameters:
//   - moderation: submission orchestrator.
//   - profanity: profanity pipeline used for lexicon additions.
// Returns:
//   - *TextHandler: initialized handler.
func NewTextHandler(moderation *service.ModerationService, profanity *service.ProfanityService) *TextHandler {
	return &TextHandler{moderation: moderation, profanity: profanity}
}

// SubmitRequest is the body of POST /api/text/submit.
type SubmitRequest struct {
	Text             string `json:"text" binding:"required"`
	AnalyzeSentiment bool   `json:"analyzeSentiment"`
}

// HistoryResponse wraps the submission history.
type HistoryResponse struct {
	Submissions []service.SubmissionView `json:"submissions"`
}

// AddWordRequest is the body of POST /api/text/word.
type AddWordRequest struct {
	Word string `json:"word" binding:"required"`
}

// Submit handles POST /api/text/submit.
func (h *TextHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if !bindText(c, &req, func() string { return req.Text }, "text") {
		return
	}

	view, err := h.moderation.Submit(c.Request.Context(), req.Text, req.AnalyzeSentiment)
	if err != nil {
		serverError(c, err, "Failed to process submission")
		return
	}

	c.JSON(http.StatusOK, view)
}

// History handles GET /api/text/history?limit=N.
func (h *TextHandler) History(c *gin.Context) {
	limit := service.ParseHistoryLimit(c.Query("limit"))

	views, err := h.moderation.History(c.Request.Context(), limit)
	if err != nil {
		serverError(c, err, "Failed to retrieve submission history")
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Submissions: views})
}

// AddWord handles POST /api/text/word. It answers 201 for a new word and 200
// when the word was already in the lexicon.
func (h *TextHandler) AddWord(c *gin.Context) {
	var req AddWordRequest
	if !bindText(c, &req, func() string { return req.Word }, "word") {
		return
	}

	entry, created, err := h.profanity.AddSwearWord(c.Request.Context(), req.Word)
	if err != nil {
		serverError(c, err, "Failed to add word")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		logger.CtxInfo(c.Request.Context(), "Lexicon word added: %s", entry.Word)
	}
	c.JSON(status, gin.H{"id": entry.ID, "word": entry.Word})
}
