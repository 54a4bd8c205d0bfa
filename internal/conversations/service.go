package conversations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbpkg "github.com/lumacrm/wabridge/internal/db"
	"github.com/lumacrm/wabridge/internal/db/sqlc"
	"github.com/lumacrm/wabridge/internal/leads"
)

// ErrConversationNotFound is returned when no conversation matches the id.
var ErrConversationNotFound = errors.New("conversation not found")

// Service finds, creates, and links conversations.
type Service struct {
	queries *sqlc.Queries
	leads   *leads.Service
	logger  *slog.Logger
}

// NewService creates a conversations service.
func NewService(log *slog.Logger, queries *sqlc.Queries, leadService *leads.Service) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		leads:   leadService,
		logger:  log.With(slog.String("service", "conversations")),
	}
}

// ResolveInbound returns the conversation for an inbound message from the
// given phone, creating it (and, when needed, a CRM lead) on first contact.
// A fresh conversation starts with no preview and no unread messages: the
// caller moves the aggregates only once the message row actually lands, so a
// create whose message insert then fails (and is redelivered) cannot leave a
// dangling preview or double-count the unread counter.
//
// Concurrent first deliveries for the same number race on the wa_phone unique
// constraint; the loser re-fetches the winner's row instead of failing.
func (s *Service) ResolveInbound(ctx context.Context, phone, displayName string) (Conversation, error) {
	if s.queries == nil {
		return Conversation{}, fmt.Errorf("conversations queries not configured")
	}

	row, err := s.queries.GetConversationByPhone(ctx, phone)
	if err == nil {
		return normalizeConversation(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, fmt.Errorf("lookup conversation: %w", err)
	}

	leadID := pgtype.UUID{}
	existingLead := true
	lead, err := s.leads.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		leadID, err = dbpkg.ParseUUID(lead.ID)
		if err != nil {
			return Conversation{}, err
		}
	case errors.Is(err, leads.ErrLeadNotFound):
		existingLead = false
	default:
		return Conversation{}, fmt.Errorf("lookup lead: %w", err)
	}

	created, err := s.queries.CreateConversation(ctx, sqlc.CreateConversationParams{
		WaPhone: phone,
		WaName:  displayName,
		LeadID:  leadID,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err) {
			// Another delivery created it first; use theirs.
			row, err := s.queries.GetConversationByPhone(ctx, phone)
			if err != nil {
				return Conversation{}, fmt.Errorf("re-fetch conversation: %w", err)
			}
			return normalizeConversation(row), nil
		}
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	if !existingLead {
		newLead, err := s.leads.CreateFromWhatsApp(ctx, displayName, phone)
		if err != nil {
			// The conversation stands; the lead link can be added by hand.
			s.logger.Error("auto-create lead failed",
				slog.String("phone", phone),
				slog.Any("error", err),
			)
			return normalizeConversation(created), nil
		}
		pgLeadID, err := dbpkg.ParseUUID(newLead.ID)
		if err != nil {
			return Conversation{}, err
		}
		linked, err := s.queries.LinkConversationLead(ctx, sqlc.LinkConversationLeadParams{
			ID:     created.ID,
			LeadID: pgLeadID,
		})
		if err != nil {
			return Conversation{}, fmt.Errorf("link lead: %w", err)
		}
		return normalizeConversation(linked), nil
	}

	return normalizeConversation(created), nil
}

// EnsureForPhone finds or creates a conversation for an outbound thread
// started from the CRM, optionally attaching/refreshing the lead link.
// New conversations start with no unread messages.
func (s *Service) EnsureForPhone(ctx context.Context, req LinkRequest) (Conversation, error) {
	if s.queries == nil {
		return Conversation{}, fmt.Errorf("conversations queries not configured")
	}
	phone := digitsOnly(req.Phone)
	if phone == "" {
		return Conversation{}, fmt.Errorf("phone is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = phone
	}

	row, err := s.queries.GetConversationByPhone(ctx, phone)
	if err == nil {
		if req.LeadID == "" {
			return normalizeConversation(row), nil
		}
		return s.link(ctx, row.ID, req.LeadID, req.Name)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, fmt.Errorf("lookup conversation: %w", err)
	}

	leadID := pgtype.UUID{}
	if req.LeadID != "" {
		leadID, err = dbpkg.ParseUUID(req.LeadID)
		if err != nil {
			return Conversation{}, err
		}
	}

	created, err := s.queries.CreateConversation(ctx, sqlc.CreateConversationParams{
		WaPhone:     phone,
		WaName:      name,
		LeadID:      leadID,
		UnreadCount: 0,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err) {
			row, err := s.queries.GetConversationByPhone(ctx, phone)
			if err != nil {
				return Conversation{}, fmt.Errorf("re-fetch conversation: %w", err)
			}
			if req.LeadID != "" {
				return s.link(ctx, row.ID, req.LeadID, req.Name)
			}
			return normalizeConversation(row), nil
		}
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return normalizeConversation(created), nil
}

func (s *Service) link(ctx context.Context, id pgtype.UUID, leadID, name string) (Conversation, error) {
	pgLeadID, err := dbpkg.ParseUUID(leadID)
	if err != nil {
		return Conversation{}, err
	}
	row, err := s.queries.LinkConversationLead(ctx, sqlc.LinkConversationLeadParams{
		ID:     id,
		LeadID: pgLeadID,
		WaName: dbpkg.ToPgText(name),
	})
	if err != nil {
		return Conversation{}, fmt.Errorf("link lead: %w", err)
	}
	return normalizeConversation(row), nil
}

// GetByID fetches one conversation.
func (s *Service) GetByID(ctx context.Context, conversationID string) (Conversation, error) {
	if s.queries == nil {
		return Conversation{}, fmt.Errorf("conversations queries not configured")
	}
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return Conversation{}, err
	}
	row, err := s.queries.GetConversationByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrConversationNotFound
		}
		return Conversation{}, err
	}
	return normalizeConversation(row), nil
}

// List returns all conversations, most recently active first.
func (s *Service) List(ctx context.Context) ([]Conversation, error) {
	if s.queries == nil {
		return nil, fmt.Errorf("conversations queries not configured")
	}
	rows, err := s.queries.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeConversation(row))
	}
	return items, nil
}

// MarkRead resets the unread counter; called when a human opens the thread.
func (s *Service) MarkRead(ctx context.Context, conversationID string) error {
	if s.queries == nil {
		return fmt.Errorf("conversations queries not configured")
	}
	pgID, err := dbpkg.ParseUUID(conversationID)
	if err != nil {
		return err
	}
	return s.queries.MarkConversationRead(ctx, pgID)
}

func normalizeConversation(row sqlc.WhatsappConversation) Conversation {
	return Conversation{
		ID:            dbpkg.UUIDToString(row.ID),
		WaPhone:       row.WaPhone,
		WaName:        row.WaName,
		LeadID:        dbpkg.UUIDToString(row.LeadID),
		LastMessage:   dbpkg.TextToString(row.LastMessage),
		LastMessageAt: dbpkg.TimeFromPg(row.LastMessageAt),
		UnreadCount:   int(row.UnreadCount),
		CreatedAt:     dbpkg.TimeFromPg(row.CreatedAt),
	}
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
