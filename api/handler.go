package api

import (
	"github.com/infurnex/product-chat-connect/events"
	"github.com/infurnex/product-chat-connect/services"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	chatService       services.ChatService
	catalogService    services.CatalogService
	preferenceService services.PreferenceService
	bus               *events.Bus
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	chatService services.ChatService,
	catalogService services.CatalogService,
	preferenceService services.PreferenceService,
	bus *events.Bus,
) *APIHandler {
	return &APIHandler{
		chatService:       chatService,
		catalogService:    catalogService,
		preferenceService: preferenceService,
		bus:               bus,
	}
}
