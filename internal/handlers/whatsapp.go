package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumacrm/wabridge/internal/auth"
	"github.com/lumacrm/wabridge/internal/conversations"
	"github.com/lumacrm/wabridge/internal/messaging"
	"github.com/lumacrm/wabridge/internal/whatsapp"
)

// WhatsAppHandler serves the internal messaging API: outbound send,
// conversation linking, listing, history, and mark-read.
type WhatsAppHandler struct {
	messagingService    *messaging.Service
	conversationService *conversations.Service
	logger              *slog.Logger
}

// NewWhatsAppHandler creates the internal messaging API handler.
func NewWhatsAppHandler(log *slog.Logger, messagingService *messaging.Service, conversationService *conversations.Service) *WhatsAppHandler {
	return &WhatsAppHandler{
		messagingService:    messagingService,
		conversationService: conversationService,
		logger:              log.With(slog.String("handler", "whatsapp")),
	}
}

// Register mounts the messaging API routes (JWT-protected).
func (h *WhatsAppHandler) Register(e *echo.Echo) {
	e.POST("/whatsapp/send", h.Send)
	e.POST("/whatsapp/conversations", h.Link)
	e.GET("/whatsapp/conversations", h.List)
	e.GET("/whatsapp/conversations/:id/messages", h.Messages)
	e.POST("/whatsapp/conversations/:id/read", h.MarkRead)
}

// SendRequest is the body for POST /whatsapp/send.
type SendRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

// SendResponse is the success body for POST /whatsapp/send.
type SendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// Send dispatches a text message to the conversation's phone number.
// The provider call happens before any local write; provider errors reach
// the caller verbatim and leave no local trace.
func (h *WhatsAppHandler) Send(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}

	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id is required")
	}

	msg, err := h.messagingService.Send(c.Request().Context(), req.ConversationID, req.Message, userID)
	if err != nil {
		if errors.Is(err, messaging.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, "message is required")
		}
		if errors.Is(err, conversations.ErrConversationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			return echo.NewHTTPError(status, apiErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, SendResponse{Success: true, MessageID: msg.WaMessageID})
}

// LinkRequest is the body for POST /whatsapp/conversations.
type LinkRequest struct {
	LeadID string `json:"leadId"`
	Phone  string `json:"phone"`
	Name   string `json:"name"`
}

// LinkResponse returns the conversation id for a link request.
type LinkResponse struct {
	ConversationID string `json:"conversationId"`
}

// Link finds or creates the conversation for a phone number, optionally
// attaching a CRM lead. Used when an agent opens a thread from a lead card.
func (h *WhatsAppHandler) Link(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}

	var req LinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Phone) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "phone is required")
	}

	conv, err := h.conversationService.EnsureForPhone(c.Request().Context(), conversations.LinkRequest{
		LeadID: strings.TrimSpace(req.LeadID),
		Phone:  req.Phone,
		Name:   req.Name,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, LinkResponse{ConversationID: conv.ID})
}

// List returns all conversations, most recently active first.
func (h *WhatsAppHandler) List(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	items, err := h.conversationService.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Messages returns a conversation's message history in creation order.
func (h *WhatsAppHandler) Messages(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id is required")
	}
	if _, err := h.conversationService.GetByID(c.Request().Context(), conversationID); err != nil {
		if errors.Is(err, conversations.ErrConversationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items, err := h.messagingService.ListByConversation(c.Request().Context(), conversationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// MarkRead resets the conversation's unread counter.
func (h *WhatsAppHandler) MarkRead(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id is required")
	}
	if err := h.conversationService.MarkRead(c.Request().Context(), conversationID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
