package models

import (
	"time"
)

// MessageRole is the author of a message. Only "user" and "assistant" exist;
// the application never writes any other role.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Chat represents one shopping-assistant conversation owned by a user.
type Chat struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Chat model.
func (Chat) TableName() string {
	return "chats"
}

// Message is a single transcript entry. Rows are append-only: messages are
// never updated or deleted, and retrieval is always ascending by timestamp
// within a chat.
type Message struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	ChatID    string      `json:"chat_id" gorm:"index;not null"`
	Role      MessageRole `json:"role" gorm:"type:varchar(20);not null"`
	Content   string      `json:"content" gorm:"type:text"`
	Timestamp time.Time   `json:"timestamp" gorm:"index"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}
