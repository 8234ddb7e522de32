package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/infurnex/product-chat-connect/models"
)

// MessageRepository defines the interface for interacting with message data.
// Messages are append-only; there is deliberately no update or delete.
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetMessagesByChatID(chatID string) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateMessage appends a message to its chat's transcript.
func (r *messageRepository) CreateMessage(message *models.Message) error {
	if message == nil {
		log.Printf("ERROR: [MessageRepository] CreateMessage: message cannot be nil")
		return errors.New("message cannot be nil")
	}
	if message.ChatID == "" {
		log.Printf("ERROR: [MessageRepository] CreateMessage: message must belong to a chat")
		return errors.New("message must belong to a chat")
	}
	if message.Role != models.RoleUser && message.Role != models.RoleAssistant {
		log.Printf("ERROR: [MessageRepository] CreateMessage: invalid role '%s'", message.Role)
		return fmt.Errorf("invalid message role %q", message.Role)
	}
	if err := r.db.Create(message).Error; err != nil {
		log.Printf("ERROR: [MessageRepository] Failed to create %s message for chat %s: %v", message.Role, message.ChatID, err)
		return fmt.Errorf("failed to create message for chat %s: %w", message.ChatID, err)
	}
	log.Printf("INFO: [MessageRepository] Saved %s message %s for chat %s (content '%.30s...').", message.Role, message.ID, message.ChatID, message.Content)
	return nil
}

// GetMessagesByChatID retrieves all messages of one chat, ascending by
// timestamp.
func (r *messageRepository) GetMessagesByChatID(chatID string) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.Where("chat_id = ?", chatID).Order("timestamp asc").Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: [MessageRepository] Failed to retrieve messages for chat %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to retrieve messages for chat %s: %w", chatID, err)
	}
	log.Printf("INFO: [MessageRepository] Retrieved %d messages for chat %s.", len(messages), chatID)
	return messages, nil
}
