package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/infurnex/product-chat-connect/models"
	"github.com/infurnex/product-chat-connect/repository"
	"github.com/infurnex/product-chat-connect/utils"
)

// ImageMarkerSuffix is appended to the filename of an attached image to form
// the content of its transcript message. Kept for compatibility with existing
// transcripts; SendResult also exposes the filename as a typed field so
// callers do not have to parse the glyph back out.
const ImageMarkerSuffix = "📷"

// chatTitleMaxRunes bounds the chat title derived from the first message.
const chatTitleMaxRunes = 50

// ErrEmptySend is returned when a send carries neither text nor an image.
var ErrEmptySend = errors.New("message must carry text or an image")

// ErrChatNotFound is returned when a referenced chat does not exist.
var ErrChatNotFound = errors.New("chat not found")

// ErrAgentFailure wraps any failure of the external agent call so handlers
// can map it to an upstream-failure status.
var ErrAgentFailure = errors.New("agent call failed")

// SendInput describes one user send. An empty ChatID means "create a new
// chat titled from the message text and adopt it".
type SendInput struct {
	UserID string
	ChatID string
	Text   string
	Image  *ImageAttachment
}

// SendResult reports everything the send workflow persisted.
type SendResult struct {
	Chat             *models.Chat      `json:"chat"`
	CreatedChat      bool              `json:"created_chat"`
	UserMessages     []*models.Message `json:"user_messages"`
	AssistantMessage *models.Message   `json:"assistant_message"`
	ImageFilename    string            `json:"image_filename,omitempty"`
}

// Transcript is a chat's full ordered message history plus its live send
// state.
type Transcript struct {
	Chat          *models.Chat      `json:"chat"`
	Messages      []*models.Message `json:"messages"`
	AwaitingReply bool              `json:"awaiting_reply"`
}

// ChatService orchestrates the send-message workflow and transcript reads.
type ChatService interface {
	SendMessage(ctx context.Context, input SendInput) (*SendResult, error)
	GetTranscript(chatID string) (*Transcript, error)
	ListChats(userID string) ([]*models.Chat, error)
	StartChat(userID string, title string) (*models.Chat, error)
	RenameChat(chatID string, title string) (*models.Chat, error)
	IsAwaitingReply(chatID string) bool
}

type chatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	agent       AgentClient

	mu       sync.Mutex
	awaiting map[string]bool
	now      func() time.Time
}

// NewChatService creates a ChatService backed by the given repositories and
// agent client.
func NewChatService(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository, agent AgentClient) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		agent:       agent,
		awaiting:    make(map[string]bool),
		now:         time.Now,
	}
}

// SendMessage runs the full send workflow, in order: resolve or create the
// target chat, persist the user message(s), mark the chat awaiting a reply,
// call the agent once, and persist the reply on success. User-message
// persistence is at-least-once; the assistant message is at-most-once and
// only written after a confirmed success response. Failures are returned
// without retry; the user resends manually.
func (s *chatService) SendMessage(ctx context.Context, input SendInput) (*SendResult, error) {
	if input.Text == "" && input.Image == nil {
		return nil, ErrEmptySend
	}
	if input.UserID == "" {
		return nil, errors.New("user ID must be provided")
	}

	result := &SendResult{}

	chat, err := s.resolveChat(input)
	if err != nil {
		return nil, err
	}
	result.Chat = chat
	result.CreatedChat = chat.ID != input.ChatID

	// Image message first, then the text message of the same send.
	if input.Image != nil {
		imageMsg := &models.Message{
			ID:        uuid.NewString(),
			ChatID:    chat.ID,
			Role:      models.RoleUser,
			Content:   input.Image.Filename + ImageMarkerSuffix,
			Timestamp: s.now(),
		}
		if err := s.messageRepo.CreateMessage(imageMsg); err != nil {
			return nil, fmt.Errorf("failed to persist image message: %w", err)
		}
		result.UserMessages = append(result.UserMessages, imageMsg)
		result.ImageFilename = input.Image.Filename
	}
	if input.Text != "" {
		textMsg := &models.Message{
			ID:        uuid.NewString(),
			ChatID:    chat.ID,
			Role:      models.RoleUser,
			Content:   input.Text,
			Timestamp: s.now(),
		}
		if err := s.messageRepo.CreateMessage(textMsg); err != nil {
			return nil, fmt.Errorf("failed to persist user message: %w", err)
		}
		result.UserMessages = append(result.UserMessages, textMsg)
	}

	s.setAwaiting(chat.ID, true)
	defer s.setAwaiting(chat.ID, false)

	reply, err := s.agent.Ask(ctx, chat.ID, input.Text, input.Image)
	if err != nil {
		log.Printf("ERROR: [ChatService] Agent call failed for chat %s: %v", chat.ID, err)
		return nil, fmt.Errorf("%w for chat %s: %v", ErrAgentFailure, chat.ID, err)
	}

	assistantMsg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	}
	if err := s.messageRepo.CreateMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	result.AssistantMessage = assistantMsg

	log.Printf("INFO: [ChatService] Completed send for chat %s (%d user messages, assistant replied).", chat.ID, len(result.UserMessages))
	return result, nil
}

// resolveChat loads the target chat, or creates one titled from the message
// text when no target is given.
func (s *chatService) resolveChat(input SendInput) (*models.Chat, error) {
	if input.ChatID != "" {
		chat, err := s.chatRepo.GetChatByID(input.ChatID)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			return nil, fmt.Errorf("%w: %s", ErrChatNotFound, input.ChatID)
		}
		return chat, nil
	}

	title := utils.TruncateRunes(input.Text, chatTitleMaxRunes)
	if title == "" && input.Image != nil {
		title = input.Image.Filename
	}
	chat := &models.Chat{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Title:     title,
		CreatedAt: s.now(),
	}
	if err := s.chatRepo.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetTranscript returns the chat's messages sorted ascending by timestamp,
// regardless of store return order, plus the awaiting flag.
func (s *chatService) GetTranscript(chatID string) (*Transcript, error) {
	chat, err := s.chatRepo.GetChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	messages, err := s.messageRepo.GetMessagesByChatID(chatID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return &Transcript{
		Chat:          chat,
		Messages:      messages,
		AwaitingReply: s.IsAwaitingReply(chatID),
	}, nil
}

// ListChats returns the user's chats, newest first.
func (s *chatService) ListChats(userID string) ([]*models.Chat, error) {
	return s.chatRepo.GetChatsByUserID(userID)
}

// StartChat creates an empty chat for the explicit "new chat" action.
func (s *chatService) StartChat(userID string, title string) (*models.Chat, error) {
	if userID == "" {
		return nil, errors.New("user ID must be provided")
	}
	chat := &models.Chat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     utils.TruncateRunes(title, chatTitleMaxRunes),
		CreatedAt: s.now(),
	}
	if err := s.chatRepo.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// RenameChat updates a chat's title.
func (s *chatService) RenameChat(chatID string, title string) (*models.Chat, error) {
	return s.chatRepo.UpdateChatTitle(chatID, utils.TruncateRunes(title, chatTitleMaxRunes))
}

// IsAwaitingReply reports whether a send for this chat is between the agent
// call and its resolution.
func (s *chatService) IsAwaitingReply(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting[chatID]
}

func (s *chatService) setAwaiting(chatID string, waiting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if waiting {
		s.awaiting[chatID] = true
	} else {
		delete(s.awaiting, chatID)
	}
}
