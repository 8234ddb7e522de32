package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/infurnex/product-chat-connect/models"
)

// ChatRepository defines the interface for interacting with chat data.
type ChatRepository interface {
	CreateChat(chat *models.Chat) error
	GetChatByID(chatID string) (*models.Chat, error)
	GetChatsByUserID(userID string) ([]*models.Chat, error)
	UpdateChatTitle(chatID string, title string) (*models.Chat, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateChat creates a new chat row for its owning user.
func (r *chatRepository) CreateChat(chat *models.Chat) error {
	if chat == nil {
		log.Printf("ERROR: [ChatRepository] CreateChat: chat cannot be nil")
		return errors.New("chat cannot be nil")
	}
	if chat.UserID == "" {
		log.Printf("ERROR: [ChatRepository] CreateChat: chat must have an owning UserID")
		return errors.New("chat must have an owning user ID")
	}
	if err := r.db.Create(chat).Error; err != nil {
		log.Printf("ERROR: [ChatRepository] Failed to create chat for userID %s: %v", chat.UserID, err)
		return fmt.Errorf("failed to create chat for userID %s: %w", chat.UserID, err)
	}
	log.Printf("INFO: [ChatRepository] Successfully created chat %s ('%s') for userID %s.", chat.ID, chat.Title, chat.UserID)
	return nil
}

// GetChatByID retrieves a chat by its ID. Returns (nil, nil) when not found.
func (r *chatRepository) GetChatByID(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.First(&chat, "id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ChatRepository] Chat with ID %s not found.", chatID)
			return nil, nil
		}
		log.Printf("ERROR: [ChatRepository] Failed to retrieve chat %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to retrieve chat %s: %w", chatID, err)
	}
	return &chat, nil
}

// GetChatsByUserID retrieves all chats owned by a user, newest first.
func (r *chatRepository) GetChatsByUserID(userID string) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: [ChatRepository] Failed to retrieve chats for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve chats for userID %s: %w", userID, err)
	}
	log.Printf("INFO: [ChatRepository] Retrieved %d chats for userID %s.", len(chats), userID)
	return chats, nil
}

// UpdateChatTitle sets a chat's title and returns the updated row.
func (r *chatRepository) UpdateChatTitle(chatID string, title string) (*models.Chat, error) {
	if chatID == "" {
		log.Printf("ERROR: [ChatRepository] UpdateChatTitle: chat ID must be provided")
		return nil, errors.New("chat ID must be provided")
	}
	res := r.db.Model(&models.Chat{}).Where("id = ?", chatID).Update("title", title)
	if res.Error != nil {
		log.Printf("ERROR: [ChatRepository] Failed to update title of chat %s: %v", chatID, res.Error)
		return nil, fmt.Errorf("failed to update title of chat %s: %w", chatID, res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("INFO: [ChatRepository] UpdateChatTitle: chat %s not found.", chatID)
		return nil, nil
	}
	log.Printf("INFO: [ChatRepository] Successfully updated title of chat %s to '%s'.", chatID, title)
	return r.GetChatByID(chatID)
}
