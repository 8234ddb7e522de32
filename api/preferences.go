package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infurnex/product-chat-connect/services"
	"github.com/infurnex/product-chat-connect/utils"
)

// UpdatePreferencesRequest is the body of a preference upsert. Absent fields
// leave the stored values untouched.
type UpdatePreferencesRequest struct {
	UserID string `json:"user_id" binding:"required"`
	services.PreferencePatch
}

// GetPreferencesHandler returns the user's preferences, falling back to
// defaults when no record exists.
func (h *APIHandler) GetPreferencesHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	prefs, err := h.preferenceService.Get(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to load preferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferencesHandler upserts the user's preference record.
func (h *APIHandler) UpdatePreferencesHandler(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), err)
		return
	}

	prefs, err := h.preferenceService.Update(req.UserID, req.PreferencePatch)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to update preferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
