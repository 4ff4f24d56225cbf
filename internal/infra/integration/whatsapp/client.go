package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

var ErrNotConfigured = errors.New("whatsapp: access token or phone id not configured")

type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	http        *http.Client
	logger      *zap.Logger
}

func NewClient(baseURL, accessToken, phoneID string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// SendMessage sends an approved template message.
func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	lang := input.Language
	if lang == "" {
		lang = "en_US"
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(input.PhoneNumber, "+"),
		"type":              "template",
		"template": map[string]any{
			"name":     input.TemplateName,
			"language": map[string]string{"code": lang},
			"components": []map[string]any{
				{
					"type":       "body",
					"parameters": textParameters(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var result SendMessageResponse
	_ = json.Unmarshal(raw, &result)

	if result.Error != nil {
		return "", fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("whatsapp api status %d", resp.StatusCode)
	}

	var id string
	if len(result.Messages) > 0 {
		id = result.Messages[0].ID
	}
	c.logger.Info("whatsapp message sent", zap.String("template", input.TemplateName), zap.String("message_id", id))
	return id, nil
}

func textParameters(params []string) []map[string]string {
	out := make([]map[string]string, 0, len(params))
	for _, p := range params {
		out = append(out, map[string]string{"type": "text", "text": p})
	}
	return out
}
