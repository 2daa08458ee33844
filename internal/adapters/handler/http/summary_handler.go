package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
)

type SummaryHandler struct {
	svc *services.SummaryService
}

func NewSummaryHandler(svc *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

func (h *SummaryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/summary", h.Get)
}

// Get godoc
// @Summary   Aggregated statistics of the caller
// @Tags      stats
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  summaryResponse
// @Failure   404  {object}  errorResponse
// @Router    /stats/summary [get]
func (h *SummaryHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no practice sessions recorded yet"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(summary))
}
