package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
)

const (
	dateLayout   = "2006-01-02"
	maxDaysRange = 366
)

type SessionHandler struct {
	svc *services.SummaryService
}

func NewSessionHandler(svc *services.SummaryService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/sessions", h.Submit)
	r.GET("/sessions", h.List)
}

// Submit godoc
// @Summary   Record a finished practice session
// @Tags      sessions
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      domain.SessionResult  true  "Session telemetry"
// @Success   201   {object}  summaryResponse
// @Failure   400   {object}  errorResponse
// @Failure   409   {object}  errorResponse
// @Router    /sessions [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var result domain.SessionResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.svc.SubmitSession(c.Request.Context(), services.SubmitSessionInput{
		UserID: userID,
		Result: result,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSummaryConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "summary is being updated, retry the submission"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record session"})
		}
		return
	}

	c.JSON(http.StatusCreated, toSummaryResponse(summary))
}

// List godoc
// @Summary   List practice sessions in a date range
// @Tags      sessions
// @Produce   json
// @Security  BearerAuth
// @Param     start_date  query     string  false  "YYYY-MM-DD, defaults to six days before end_date"
// @Param     end_date    query     string  false  "YYYY-MM-DD, defaults to today"
// @Success   200         {object}  sessionListResponse
// @Failure   400         {object}  errorResponse
// @Router    /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	startDate, endDate, err := parseDateRange(c.Query("start_date"), c.Query("end_date"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// end_date covers its whole day.
	to := endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)

	sessions, err := h.svc.ListSessions(c.Request.Context(), userID, startDate, to)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve sessions"})
		return
	}
	if sessions == nil {
		sessions = []*domain.PracticeSession{}
	}

	c.JSON(http.StatusOK, sessionListResponse{Sessions: sessions, Count: len(sessions)})
}

func parseDateRange(startStr, endStr string, today time.Time) (time.Time, time.Time, error) {
	var startDate, endDate time.Time
	var err error

	if endStr == "" {
		endDate = today.Truncate(24 * time.Hour)
	} else {
		endDate, err = time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end_date format, expected YYYY-MM-DD")
		}
	}

	if startStr == "" {
		startDate = endDate.AddDate(0, 0, -6)
	} else {
		startDate, err = time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start_date format, expected YYYY-MM-DD")
		}
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, errors.New("start_date cannot be after end_date")
	}
	if endDate.Sub(startDate).Hours()/24 > maxDaysRange {
		return time.Time{}, time.Time{}, errors.New("date range too large, max 1 year allowed")
	}

	return startDate, endDate, nil
}
