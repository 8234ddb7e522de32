package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
)

// ImageAttachment carries the raw bytes of an image the user attached to a
// send, plus the filename they attached it under.
type ImageAttachment struct {
	Filename string
	Data     []byte
}

// AgentClient delegates a chat turn to the external AI agent. It is the only
// component that crosses the network boundary to the agent.
type AgentClient interface {
	// Ask issues one request for the given chat and returns the agent's reply
	// text verbatim. A nil image means no attachment.
	Ask(ctx context.Context, chatID string, text string, image *ImageAttachment) (string, error)
}

type webhookAgentClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookAgentClient creates an AgentClient that posts to the agent's
// webhook endpoint. The underlying client applies no timeout: the call runs
// to completion or transport failure, and there is no retry.
func NewWebhookAgentClient(webhookURL string) AgentClient {
	return &webhookAgentClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{},
	}
}

// Ask sends one multipart POST carrying the chat identity, the raw text, and
// the raw image bytes, and reads the full response body as plain text. A
// non-2xx status is an error and the body is discarded.
func (c *webhookAgentClient) Ask(ctx context.Context, chatID string, text string, image *ImageAttachment) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chatId", chatID); err != nil {
		return "", fmt.Errorf("failed to encode chatId field: %w", err)
	}
	if err := writer.WriteField("text", text); err != nil {
		return "", fmt.Errorf("failed to encode text field: %w", err)
	}
	attached := "false"
	if image != nil {
		attached = "true"
	}
	if err := writer.WriteField("imageAttached", attached); err != nil {
		return "", fmt.Errorf("failed to encode imageAttached field: %w", err)
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", image.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return "", fmt.Errorf("failed to write image bytes: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("INFO: [AgentClient] Calling agent webhook for chat %s (imageAttached=%s).", chatID, attached)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("ERROR: [AgentClient] Agent webhook call failed for chat %s: %v", chatID, err)
		return "", fmt.Errorf("agent webhook call failed for chat %s: %w", chatID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("ERROR: [AgentClient] Agent webhook returned status %d for chat %s.", resp.StatusCode, chatID)
		return "", fmt.Errorf("agent webhook returned status %d for chat %s", resp.StatusCode, chatID)
	}

	replyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("ERROR: [AgentClient] Failed to read agent reply for chat %s: %v", chatID, err)
		return "", fmt.Errorf("failed to read agent reply for chat %s: %w", chatID, err)
	}

	reply := string(replyBytes)
	log.Printf("INFO: [AgentClient] Agent replied for chat %s (content '%.50s...').", chatID, reply)
	return reply, nil
}
