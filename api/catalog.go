package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infurnex/product-chat-connect/services"
	"github.com/infurnex/product-chat-connect/utils"
)

// IngestCatalogRequest is the agent's catalog payload for one chat.
type IngestCatalogRequest struct {
	Categories []services.IngestCategory `json:"categories" binding:"required"`
}

// ListCategoriesHandler returns the categories of a chat.
func (h *APIHandler) ListCategoriesHandler(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "chat_id query parameter is required", nil)
		return
	}

	categories, err := h.catalogService.Categories(chatID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListProductsHandler returns the products of a chat, optionally narrowed to
// one category ("all" or absent means every category).
func (h *APIHandler) ListProductsHandler(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "chat_id query parameter is required", nil)
		return
	}

	products, err := h.catalogService.Products(chatID, c.Query("category_id"))
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// IngestCatalogHandler accepts the external agent's catalog write for a chat
// and fans out change events to realtime subscribers.
func (h *APIHandler) IngestCatalogHandler(c *gin.Context) {
	chatID := c.Param("chatID")
	var req IngestCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid catalog payload: "+err.Error(), err)
		return
	}

	if err := h.catalogService.IngestCatalog(chatID, req.Categories); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "failed to ingest catalog: "+err.Error(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ingested", "chat_id": chatID})
}
