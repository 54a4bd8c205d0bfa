package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbpkg "github.com/lumacrm/wabridge/internal/db"
	"github.com/lumacrm/wabridge/internal/db/sqlc"
)

// ErrLeadNotFound is returned when no lead matches the lookup.
var ErrLeadNotFound = errors.New("lead not found")

// Service looks up and creates CRM leads.
type Service struct {
	queries *sqlc.Queries
}

// NewService creates a leads service.
func NewService(queries *sqlc.Queries) *Service {
	return &Service{queries: queries}
}

// FindByPhone looks up a lead by a provider bare-digit phone identifier.
// CRM-stored phones are typically "+"-prefixed while provider identifiers
// are bare digits, so both forms are checked.
func (s *Service) FindByPhone(ctx context.Context, barePhone string) (Lead, error) {
	if s.queries == nil {
		return Lead{}, fmt.Errorf("leads queries not configured")
	}
	row, err := s.queries.FindLeadByPhone(ctx, sqlc.FindLeadByPhoneParams{
		Phone:   dbpkg.ToPgText("+" + barePhone),
		Phone_2: dbpkg.ToPgText(barePhone),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrLeadNotFound
		}
		return Lead{}, err
	}
	return normalizeLead(row), nil
}

// CreateFromWhatsApp creates a lead for an unknown inbound phone number with
// the channel's fixed source label and the default pipeline status.
func (s *Service) CreateFromWhatsApp(ctx context.Context, name, barePhone string) (Lead, error) {
	if s.queries == nil {
		return Lead{}, fmt.Errorf("leads queries not configured")
	}
	if name == "" {
		name = barePhone
	}
	row, err := s.queries.CreateLead(ctx, sqlc.CreateLeadParams{
		Name:   name,
		Phone:  dbpkg.ToPgText("+" + barePhone),
		Source: SourceWhatsApp,
		Status: StatusNew,
	})
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return normalizeLead(row), nil
}

func normalizeLead(row sqlc.Lead) Lead {
	return Lead{
		ID:        dbpkg.UUIDToString(row.ID),
		Name:      row.Name,
		Phone:     dbpkg.TextToString(row.Phone),
		Source:    row.Source,
		Status:    row.Status,
		CreatedAt: dbpkg.TimeFromPg(row.CreatedAt),
	}
}
