package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier defines the interface for posting messages to a team channel
type Notifier interface {
	// PostMessage posts one message to the configured channel.
	// Returns the message timestamp identifier and an error if the post failed.
	PostMessage(ctx context.Context, msg Message) (string, error)

	// GetName returns the name of the notifier implementation
	GetName() string
}

// Message is a chat.postMessage payload without the channel field
type Message struct {
	Text        string       `json:"text"`
	Blocks      []Block      `json:"blocks,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Block is one Block Kit layout block
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Fields   []Text `json:"fields,omitempty"`
	Elements []Text `json:"elements,omitempty"`
	BlockID  string `json:"block_id,omitempty"`
}

// Text is a Block Kit text object
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Attachment carries the legacy color bar used for status messages
type Attachment struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// HeaderBlock builds a header block with plain text
func HeaderBlock(text string) Block {
	return Block{
		Type: "header",
		Text: &Text{Type: "plain_text", Text: text, Emoji: true},
	}
}

// SectionBlock builds a section block with markdown text
func SectionBlock(text string) Block {
	return Block{
		Type: "section",
		Text: &Text{Type: "mrkdwn", Text: text},
	}
}

// FieldsBlock builds a section block with a two-column field grid
func FieldsBlock(fields ...string) Block {
	texts := make([]Text, 0, len(fields))
	for _, f := range fields {
		texts = append(texts, Text{Type: "mrkdwn", Text: f})
	}
	return Block{Type: "section", Fields: texts}
}

// ContextBlock builds a context block with markdown elements
func ContextBlock(elements ...string) Block {
	texts := make([]Text, 0, len(elements))
	for _, e := range elements {
		texts = append(texts, Text{Type: "mrkdwn", Text: e})
	}
	return Block{Type: "context", Elements: texts}
}

// WebClient implements Notifier against the Slack Web API
type WebClient struct {
	apiURL    string
	botToken  string
	channelID string
	client    *http.Client
}

// Config holds configuration for the Slack Web API client
type Config struct {
	APIURL    string
	BotToken  string
	ChannelID string
}

// NewWebClient creates a new Slack Web API client
func NewWebClient(config Config) *WebClient {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://slack.com/api"
	}

	return &WebClient{
		apiURL:    apiURL,
		botToken:  config.BotToken,
		channelID: config.ChannelID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// postMessageRequest is the chat.postMessage wire payload
type postMessageRequest struct {
	Channel string `json:"channel"`
	Message
}

// postMessageResponse is the chat.postMessage wire response
type postMessageResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

// PostMessage posts one message to the configured channel
func (c *WebClient) PostMessage(ctx context.Context, msg Message) (string, error) {
	payload := postMessageRequest{Channel: c.channelID, Message: msg}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat.postMessage", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create Slack request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send Slack request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Slack response: %w", err)
	}

	var postResp postMessageResponse
	if err := json.Unmarshal(body, &postResp); err != nil {
		return "", fmt.Errorf("failed to parse Slack response: %w", err)
	}

	if !postResp.OK {
		return "", fmt.Errorf("Slack message failed: %s", postResp.Error)
	}

	return postResp.TS, nil
}

// GetName returns the name of this notifier
func (c *WebClient) GetName() string {
	return "Slack Web API"
}
