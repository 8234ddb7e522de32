package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/infurnex/product-chat-connect/api"
	"github.com/infurnex/product-chat-connect/config"
	"github.com/infurnex/product-chat-connect/database"
	"github.com/infurnex/product-chat-connect/events"
	"github.com/infurnex/product-chat-connect/middleware"
	"github.com/infurnex/product-chat-connect/models"
	"github.com/infurnex/product-chat-connect/repository"
	"github.com/infurnex/product-chat-connect/services"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Change-event bus for the realtime catalog feed
	bus := events.NewBus()

	// Initialize Repositories
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize Services
	agentClient := services.NewWebhookAgentClient(config.AppConfig.Agent.WebhookURL)
	chatService := services.NewChatService(chatRepo, messageRepo, agentClient)
	catalogService := services.NewCatalogService(catalogRepo, bus)
	preferenceService := services.NewPreferenceService(preferenceRepo)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(chatService, catalogService, preferenceService, bus)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.Chat{},
		&models.Message{},
		&models.Category{},
		&models.Product{},
		&models.UserPreferences{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	apiGroup := r.Group("/api")
	{
		chatGroup := apiGroup.Group("/chats")
		{
			chatGroup.GET("", handler.ListChatsHandler)
			chatGroup.POST("", handler.CreateChatHandler)
			chatGroup.PATCH("/:chatID", handler.RenameChatHandler)
			chatGroup.GET("/:chatID/messages", handler.GetMessagesHandler)
			chatGroup.POST("/:chatID/messages", handler.SendMessageHandler)
		}

		// A send without an existing chat creates one from the message text.
		apiGroup.POST("/messages", handler.SendMessageHandler)

		apiGroup.GET("/categories", handler.ListCategoriesHandler)
		apiGroup.GET("/products", handler.ListProductsHandler)

		apiGroup.GET("/preferences", handler.GetPreferencesHandler)
		apiGroup.PUT("/preferences", handler.UpdatePreferencesHandler)

		// Agent-facing catalog write path
		apiGroup.POST("/agent/chats/:chatID/catalog", handler.IngestCatalogHandler)

		// Realtime change feed for categories/products
		apiGroup.GET("/realtime", handler.RealtimeHandler)
	}
}
