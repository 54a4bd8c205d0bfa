package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lumacrm/wabridge/internal/conversations"
	dbpkg "github.com/lumacrm/wabridge/internal/db"
	"github.com/lumacrm/wabridge/internal/db/sqlc"
	"github.com/lumacrm/wabridge/internal/whatsapp"
)

// ErrEmptyMessage is returned when an outbound send has no body.
var ErrEmptyMessage = errors.New("message body is empty")

// Sender dispatches one text message to the provider and returns the
// provider-assigned message id.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Service is the message store and outbound send orchestrator.
type Service struct {
	queries       *sqlc.Queries
	conversations *conversations.Service
	sender        Sender
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates a messaging service.
func NewService(log *slog.Logger, queries *sqlc.Queries, conversationService *conversations.Service, sender Sender) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries:       queries,
		conversations: conversationService,
		sender:        sender,
		logger:        log.With(slog.String("service", "messaging")),
		now:           time.Now,
	}
}

// ProcessInbound resolves the conversation for one normalized inbound message
// and records it. The provider redelivers webhook events, so the insert is
// keyed on the provider message id; a redelivered event changes nothing. The
// conversation aggregate (preview, timestamp, unread, display name) moves
// only when the insert actually lands, keeping it exactly in step with the
// stored messages even across redeliveries.
func (s *Service) ProcessInbound(ctx context.Context, msg whatsapp.NormalizedMessage) error {
	if s.queries == nil {
		return fmt.Errorf("messaging queries not configured")
	}
	receivedAt := s.now().UTC()

	conv, err := s.conversations.ResolveInbound(ctx, msg.Phone, msg.DisplayName)
	if err != nil {
		return fmt.Errorf("resolve conversation: %w", err)
	}

	pgConvID, err := dbpkg.ParseUUID(conv.ID)
	if err != nil {
		return err
	}
	inserted, err := s.queries.InsertInboundMessage(ctx, sqlc.InsertInboundMessageParams{
		ConversationID: pgConvID,
		WaMessageID:    dbpkg.ToPgText(msg.MessageID),
		MessageType:    msg.Type,
		Body:           msg.Body,
		MediaRef:       dbpkg.ToPgText(msg.MediaRef),
		MediaMimeType:  dbpkg.ToPgText(msg.MediaMime),
	})
	if err != nil {
		return fmt.Errorf("insert inbound message: %w", err)
	}
	if inserted == 0 {
		s.logger.Debug("duplicate inbound event suppressed",
			slog.String("wa_message_id", msg.MessageID),
		)
		return nil
	}

	err = s.queries.RecordConversationInbound(ctx, sqlc.RecordConversationInboundParams{
		ID:            pgConvID,
		LastMessage:   dbpkg.ToPgText(msg.Body),
		LastMessageAt: pgtype.Timestamptz{Time: receivedAt, Valid: true},
		WaName:        msg.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("update conversation aggregate: %w", err)
	}
	return nil
}

// ApplyStatus updates the delivery status of the message the provider event
// references. Status events can outrun the message insert or reference
// messages this system never tracked; both are benign no-ops.
func (s *Service) ApplyStatus(ctx context.Context, ev whatsapp.StatusEvent) error {
	if s.queries == nil {
		return fmt.Errorf("messaging queries not configured")
	}
	if ev.ID == "" {
		s.logger.Warn("status event missing message id, dropping")
		return nil
	}
	updated, err := s.queries.UpdateMessageStatus(ctx, sqlc.UpdateMessageStatusParams{
		WaMessageID: dbpkg.ToPgText(ev.ID),
		Status:      ev.Status,
	})
	if err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	if updated == 0 {
		s.logger.Debug("status event for untracked message",
			slog.String("wa_message_id", ev.ID),
			slog.String("status", ev.Status),
		)
	}
	return nil
}

// Send dispatches body to the conversation's phone via the provider, then
// records the sent message and refreshes the conversation preview. The
// provider call must succeed before anything local changes; a failed or
// timed-out call leaves no trace and is not retried here.
func (s *Service) Send(ctx context.Context, conversationID, body, sentBy string) (Message, error) {
	if s.queries == nil || s.sender == nil {
		return Message{}, fmt.Errorf("messaging service not configured")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, ErrEmptyMessage
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return Message{}, err
	}

	waMessageID, err := s.sender.SendText(ctx, conv.WaPhone, body)
	if err != nil {
		return Message{}, err
	}

	pgConvID, err := dbpkg.ParseUUID(conv.ID)
	if err != nil {
		return Message{}, err
	}
	sentByID := pgtype.UUID{}
	if sentBy != "" {
		sentByID, err = dbpkg.ParseUUID(sentBy)
		if err != nil {
			return Message{}, err
		}
	}

	row, err := s.queries.InsertOutboundMessage(ctx, sqlc.InsertOutboundMessageParams{
		ConversationID: pgConvID,
		WaMessageID:    dbpkg.ToPgText(waMessageID),
		Body:           body,
		SentBy:         sentByID,
	})
	if err != nil {
		// The provider accepted the message; the local record is gone.
		// Surface loudly so the audit trail gap is visible.
		s.logger.Error("outbound message sent but not persisted",
			slog.String("wa_message_id", waMessageID),
			slog.Any("error", err),
		)
		return Message{}, fmt.Errorf("persist outbound message: %w", err)
	}

	err = s.queries.RecordConversationOutbound(ctx, sqlc.RecordConversationOutboundParams{
		ID:            pgConvID,
		LastMessage:   dbpkg.ToPgText(body),
		LastMessageAt: pgtype.Timestamptz{Time: s.now().UTC(), Valid: true},
	})
	if err != nil {
		return Message{}, fmt.Errorf("update conversation aggregate: %w", err)
	}
	return normalizeMessage(row), nil
}

// ListByConversation returns a conversation's messages in creation order.
func (s *Service) ListByConversation(ctx context.Context, conversationID string) ([]Message, error) {
	if s.queries == nil {
		return nil, fmt.Errorf("messaging queries not configured")
	}
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListMessagesByConversation(ctx, pgID)
	if err != nil {
		return nil, err
	}
	items := make([]Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeMessage(row))
	}
	return items, nil
}

func normalizeMessage(row sqlc.WhatsappMessage) Message {
	return Message{
		ID:             dbpkg.UUIDToString(row.ID),
		ConversationID: dbpkg.UUIDToString(row.ConversationID),
		WaMessageID:    dbpkg.TextToString(row.WaMessageID),
		Direction:      row.Direction,
		MessageType:    row.MessageType,
		Body:           row.Body,
		MediaRef:       dbpkg.TextToString(row.MediaRef),
		MediaMimeType:  dbpkg.TextToString(row.MediaMimeType),
		Status:         row.Status,
		SentBy:         dbpkg.UUIDToString(row.SentBy),
		CreatedAt:      dbpkg.TimeFromPg(row.CreatedAt),
	}
}
