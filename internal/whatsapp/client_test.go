package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumacrm/wabridge/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(nil, config.WhatsAppConfig{
		BaseURL:            server.URL,
		APIVersion:         "v19.0",
		PhoneNumberID:      "10001",
		AccessToken:        "token-123",
		SendTimeoutSeconds: 5,
	})
	return client, server
}

func TestSendTextSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "wamid.sent-1"}},
		})
	})

	id, err := client.SendText(context.Background(), "37369123456", "Salut")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if id != "wamid.sent-1" {
		t.Errorf("message id = %q, want wamid.sent-1", id)
	}
	if gotPath != "/v19.0/10001/messages" {
		t.Errorf("path = %q, want /v19.0/10001/messages", gotPath)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "37369123456" {
		t.Errorf("unexpected request body: %v", gotBody)
	}
	text, ok := gotBody["text"].(map[string]any)
	if !ok || text["body"] != "Salut" {
		t.Errorf("unexpected text payload: %v", gotBody["text"])
	}
}

func TestSendTextAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Recipient phone number not in allowed list",
				"type":    "OAuthException",
				"code":    131030,
			},
		})
	})

	_, err := client.SendText(context.Background(), "000", "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "Recipient phone number not in allowed list" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Code != 131030 {
		t.Errorf("code = %d", apiErr.Code)
	}
}

func TestSendTextUnparseableError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.SendText(context.Background(), "000", "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "" {
		t.Errorf("expected empty message for unparseable body, got %q", apiErr.Message)
	}
	if apiErr.Error() != "whatsapp api error (http 502)" {
		t.Errorf("fallback error string = %q", apiErr.Error())
	}
}

func TestSendTextMissingMessageID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{}})
	})

	if _, err := client.SendText(context.Background(), "000", "hi"); err == nil {
		t.Fatal("expected error for response without message id")
	}
}
