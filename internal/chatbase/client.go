// Package chatbase wraps the Chatbase chat REST endpoint.
package chatbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

const defaultTimeout = 30 * time.Second

// APIError reports a non-2xx response from the Chatbase endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chatbase API returned an error: %d %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Response is one answered exchange.
type Response struct {
	AnswerText     string
	ConversationID string
	Raw            json.RawMessage
}

// Client calls the Chatbase chat endpoint for a single bot.
type Client struct {
	apiURL string
	apiKey string
	botID  string
	hc     *http.Client
	logger *zap.SugaredLogger
}

// NewClient builds a client for one bot. logger may be nil.
func NewClient(apiURL, apiKey, botID string, logger *zap.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		botID:  botID,
		hc:     &http.Client{Timeout: defaultTimeout},
		logger: logging.OrNop(logger).Sugar(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type askRequest struct {
	ChatbotID      string        `json:"chatbotId"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ConversationID string        `json:"conversationId,omitempty"`
}

// Ask sends one user utterance and returns the bot's answer. Pass a
// conversationID from an earlier Response to continue a session.
func (c *Client) Ask(ctx context.Context, question, conversationID string) (Response, error) {
	body, err := json.Marshal(askRequest{
		ChatbotID:      c.botID,
		Messages:       []chatMessage{{Role: "user", Content: question}},
		Temperature:    0.1,
		ConversationID: conversationID,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding chatbase request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("building chatbase request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("network error calling chatbase: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading chatbase response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Response{}, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var payload struct {
		Answer           string `json:"answer"`
		Text             string `json:"text"`
		AnswerText       string `json:"answer_text"`
		Reply            string `json:"reply"`
		ConversationID   string `json:"conversationId"`
		ConversationalID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Response{}, fmt.Errorf("failed to parse chatbase response as JSON: %w", err)
	}

	answer := firstNonEmpty(payload.Answer, payload.Text, payload.AnswerText, payload.Reply)
	if strings.TrimSpace(answer) == "" {
		return Response{}, fmt.Errorf("chatbase response did not include an answer text field")
	}

	conversation := firstNonEmpty(payload.ConversationID, payload.ConversationalID)
	c.logger.Debugf("chatbase answered %d chars (conversation=%s)", len(answer), conversation)

	return Response{
		AnswerText:     strings.TrimSpace(answer),
		ConversationID: conversation,
		Raw:            json.RawMessage(raw),
	}, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, s := range candidates {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
