package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infurnex/product-chat-connect/services"
	"github.com/infurnex/product-chat-connect/utils"
)

// CreateChatRequest is the body of the explicit "new chat" action.
type CreateChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Title  string `json:"title"`
}

// RenameChatRequest is the body of a chat title edit.
type RenameChatRequest struct {
	Title string `json:"title" binding:"required"`
}

// ListChatsHandler returns the user's chats, newest first.
func (h *APIHandler) ListChatsHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	chats, err := h.chatService.ListChats(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to list chats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// CreateChatHandler creates an empty chat for the explicit "new chat" action.
func (h *APIHandler) CreateChatHandler(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), err)
		return
	}

	chat, err := h.chatService.StartChat(req.UserID, req.Title)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to create chat", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// RenameChatHandler updates a chat's title.
func (h *APIHandler) RenameChatHandler(c *gin.Context) {
	chatID := c.Param("chatID")
	var req RenameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), err)
		return
	}

	chat, err := h.chatService.RenameChat(chatID, req.Title)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to rename chat", err)
		return
	}
	if chat == nil {
		utils.SendJSONError(c, http.StatusNotFound, "chat not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// GetMessagesHandler returns a chat's transcript in ascending timestamp
// order plus the awaiting-reply flag.
func (h *APIHandler) GetMessagesHandler(c *gin.Context) {
	chatID := c.Param("chatID")

	transcript, err := h.chatService.GetTranscript(chatID)
	if err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			utils.SendJSONError(c, http.StatusNotFound, "chat not found", err)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to load transcript", err)
		return
	}
	c.JSON(http.StatusOK, transcript)
}

// SendMessageHandler drives the send workflow. The request is a multipart
// form with fields user_id, text and an optional file part image. The chat
// comes from the route when present; a request without one creates a new
// chat titled from the message text.
func (h *APIHandler) SendMessageHandler(c *gin.Context) {
	input := services.SendInput{
		UserID: c.PostForm("user_id"),
		ChatID: c.Param("chatID"),
		Text:   c.PostForm("text"),
	}
	if input.UserID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id form field is required", nil)
		return
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			utils.SendJSONError(c, http.StatusBadRequest, "failed to open uploaded image", openErr)
			return
		}
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			utils.SendJSONError(c, http.StatusBadRequest, "failed to read uploaded image", readErr)
			return
		}
		input.Image = &services.ImageAttachment{
			Filename: fileHeader.Filename,
			Data:     data,
		}
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySend):
			utils.SendJSONError(c, http.StatusBadRequest, "message must carry text or an image", err)
		case errors.Is(err, services.ErrChatNotFound):
			utils.SendJSONError(c, http.StatusNotFound, "chat not found", err)
		case errors.Is(err, services.ErrAgentFailure):
			utils.SendJSONError(c, http.StatusBadGateway, "the assistant did not respond, please resend", err)
		default:
			utils.SendJSONError(c, http.StatusInternalServerError, "failed to send message", err)
		}
		return
	}

	log.Printf("INFO: [API] Send completed for chat %s (user %s).", result.Chat.ID, input.UserID)
	c.JSON(http.StatusOK, result)
}
