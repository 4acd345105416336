package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the per-user side features: preferences,
// feedback and data export.
type AccountHandler struct {
	preferencesService service.PreferencesService
	feedbackService    service.FeedbackService
	exportService      service.ExportService
}

func NewAccountHandler(
	preferencesService service.PreferencesService,
	feedbackService service.FeedbackService,
	exportService service.ExportService,
) *AccountHandler {
	return &AccountHandler{
		preferencesService: preferencesService,
		feedbackService:    feedbackService,
		exportService:      exportService,
	}
}

// GET /preferences
func (h *AccountHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferencesService.GetPreferences(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PATCH /preferences
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	prefs, err := h.preferencesService.UpdatePreferences(c.Request.Context(), userIDFromContext(c), req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// CreateFeedback fills in the user agent from the request when the body has none.
// POST /feedback
func (h *AccountHandler) CreateFeedback(c *gin.Context) {
	var req service.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.UserAgent == nil {
		if ua := c.Request.UserAgent(); ua != "" {
			req.UserAgent = &ua
		}
	}
	id, err := h.feedbackService.CreateFeedback(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// POST /export
func (h *AccountHandler) ExportWorkouts(c *gin.Context) {
	res, err := h.exportService.ExportWorkouts(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{URL: res.URL, ExpiresAt: toMillis(res.ExpiresAt)})
}
