package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crisis-response-service/config"
	"crisis-response-service/models"
)

// Translate translates emergency text to the requested target language.
// The translation is total; an unreachable model echoes the text back with
// zero confidence.
func (h *Handlers) Translate(c *gin.Context) {
	var req models.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	target := req.TargetLanguage
	if target == "" {
		target = "en"
	}

	result := h.analyzer.Translate(req.Text, config.LanguageName(target))
	c.JSON(http.StatusOK, result)
}
