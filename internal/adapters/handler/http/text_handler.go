package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
)

type TextHandler struct {
	svc *services.TextService
}

func NewTextHandler(svc *services.TextService) *TextHandler {
	return &TextHandler{svc: svc}
}

func (h *TextHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/text/generate", h.Generate)
}

// Omitted or zero fields fall back to the server defaults.
type generateTextRequest struct {
	WordLimit *int `json:"word_limit" binding:"omitempty,min=1,max=500"`
	MinLen    *int `json:"min_len" binding:"omitempty,min=0,max=64"`
	MaxLen    *int `json:"max_len" binding:"omitempty,min=0,max=64"`
}

type generateTextResponse struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Generate godoc
// @Summary   Build a practice text weighted toward the caller's weak keys
// @Tags      text
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      generateTextRequest  false  "Generation bounds"
// @Success   200   {object}  generateTextResponse
// @Failure   400   {object}  errorResponse
// @Router    /text/generate [post]
func (h *TextHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req generateTextRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	text, err := h.svc.Generate(c.Request.Context(), services.GenerateTextInput{
		UserID:    userID,
		WordLimit: req.WordLimit,
		MinLen:    req.MinLen,
		MaxLen:    req.MaxLen,
	})
	if err != nil {
		if errors.Is(err, textgen.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate text"})
		return
	}

	c.JSON(http.StatusOK, generateTextResponse{
		Text:      text,
		WordCount: len(strings.Fields(text)),
	})
}
