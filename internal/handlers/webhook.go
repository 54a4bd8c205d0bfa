package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumacrm/wabridge/internal/config"
	"github.com/lumacrm/wabridge/internal/messaging"
	"github.com/lumacrm/wabridge/internal/whatsapp"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// WebhookHandler receives Meta webhook callbacks: the GET verification
// handshake and POST message/status deliveries.
type WebhookHandler struct {
	service     *messaging.Service
	verifyToken string
	appSecret   string
	logger      *slog.Logger
}

// NewWebhookHandler creates the public webhook handler.
func NewWebhookHandler(log *slog.Logger, service *messaging.Service, cfg config.WhatsAppConfig) *WebhookHandler {
	return &WebhookHandler{
		service:     service,
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		logger:      log.With(slog.String("handler", "whatsapp_webhook")),
	}
}

// Register mounts the webhook routes. These are outside JWT auth; the POST
// route is authenticated by the provider signature instead.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhooks/whatsapp", h.Verify)
	e.POST("/webhooks/whatsapp", h.Receive)
}

// Verify answers Meta's subscription handshake: echo hub.challenge iff the
// mode is "subscribe" and the verify token matches.
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		h.logger.Info("webhook verified")
		return c.String(http.StatusOK, challenge)
	}
	return echo.NewHTTPError(http.StatusForbidden, "invalid verify token")
}

// Receive processes one webhook delivery. The provider retries on non-2xx,
// so anything understood returns 200 even when individual events are skipped;
// only a bad signature (401) or a store outage (500) is worth a retry.
func (h *WebhookHandler) Receive(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "messaging service not configured")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	signature := c.Request().Header.Get(whatsapp.SignatureHeader)
	if err := whatsapp.VerifySignature(h.appSecret, body, signature); err != nil {
		h.logger.Warn("webhook signature rejected", slog.String("remote_ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	env, err := whatsapp.ParseEnvelope(body)
	if err != nil {
		// Unparseable payloads will not improve on retry.
		h.logger.Warn("webhook payload not json", slog.Any("error", err))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	ctx := c.Request().Context()
	batches, statuses := env.Events()

	var total, failed int
	for _, batch := range batches {
		total += len(batch.Messages)
		for _, msg := range batch.Messages {
			normalized, err := whatsapp.Normalize(msg, batch.Contact)
			if err != nil {
				// Malformed event; dropping it is the only way to stop redelivery.
				h.logger.Warn("dropping inbound event", slog.Any("error", err))
				continue
			}
			if err := h.service.ProcessInbound(ctx, normalized); err != nil {
				failed++
				h.logger.Error("process inbound message",
					slog.String("wa_message_id", normalized.MessageID),
					slog.Any("error", err),
				)
			}
		}
	}
	for _, ev := range statuses {
		if err := h.service.ApplyStatus(ctx, ev); err != nil {
			failed++
			h.logger.Error("apply status update",
				slog.String("wa_message_id", ev.ID),
				slog.Any("error", err),
			)
		}
	}

	total += len(statuses)
	if total > 0 && failed == total {
		// Nothing was processed; let the provider retry the whole batch.
		return echo.NewHTTPError(http.StatusInternalServerError, "event processing failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
