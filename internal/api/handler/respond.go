package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/logger"
)

// bindText decodes a JSON body into req and rejects blank values of the
// required field. It writes the 400 response itself.
func bindText(c *gin.Context, req interface{}, value func() string, field string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + field + " is required"})
		return false
	}
	if strings.TrimSpace(value()) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + field + " must not be empty"})
		return false
	}
	return true
}

// serverError logs err with request context and answers with a generic message.
func serverError(c *gin.Context, err error, message string) {
	logger.FromContext(c.Request.Context()).WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
