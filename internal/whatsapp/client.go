// Package whatsapp talks to the Meta WhatsApp Business Cloud API: outbound
// sends, webhook payload parsing, signature verification, and normalization
// of inbound events.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lumacrm/wabridge/internal/config"
)

// APIError is a non-success response from the Graph API.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp api error (http %d)", e.StatusCode)
	}
	return e.Message
}

// Client issues authenticated requests against the Graph API messages endpoint.
type Client struct {
	httpClient    *http.Client
	logger        *slog.Logger
	baseURL       string
	accessToken   string
	phoneNumberID string
}

// NewClient creates a Graph API client from config. The send timeout bounds
// every outbound call.
func NewClient(log *slog.Logger, cfg config.WhatsAppConfig) *Client {
	if log == nil {
		log = slog.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultGraphBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = config.DefaultGraphVersion
	}
	timeout := time.Duration(cfg.SendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultSendTimeoutSeconds) * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		logger:        log.With(slog.String("component", "whatsapp_client")),
		baseURL:       fmt.Sprintf("%s/%s/%s", baseURL, version, cfg.PhoneNumberID),
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText dispatches one text message to the given bare-digit phone
// identifier and returns the provider-assigned message id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             sendText{Body: body},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.decodeAPIError(resp)
	}

	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	if len(decoded.Messages) == 0 || decoded.Messages[0].ID == "" {
		return "", fmt.Errorf("whatsapp send response missing message id")
	}
	return decoded.Messages[0].ID, nil
}

func (c *Client) decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var decoded errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
		apiErr.Message = decoded.Error.Message
		apiErr.Type = decoded.Error.Type
		apiErr.Code = decoded.Error.Code
	}
	c.logger.Error("graph api error",
		slog.Int("status", resp.StatusCode),
		slog.String("message", apiErr.Message),
		slog.Int("code", apiErr.Code),
	)
	return apiErr
}
