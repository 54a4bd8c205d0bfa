package conversations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lumacrm/wabridge/internal/db/sqlc"
	"github.com/lumacrm/wabridge/internal/leads"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

type queryCall struct {
	sql  string
	args []any
}

// fakeDBTX implements sqlc.DBTX for unit testing; QueryRow calls are routed
// by SQL text and recorded.
type fakeDBTX struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	calls        []queryCall
}

func (d *fakeDBTX) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	d.calls = append(d.calls, queryCall{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func (d *fakeDBTX) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	d.calls = append(d.calls, queryCall{sql: sql, args: args})
	if d.queryRowFunc != nil {
		return d.queryRowFunc(ctx, sql, args...)
	}
	return makeNoRow()
}

func (d *fakeDBTX) callsMatching(fragment string) []queryCall {
	var out []queryCall
	for _, call := range d.calls {
		if strings.Contains(call.sql, fragment) {
			out = append(out, call)
		}
	}
	return out
}

func makeNoRow() *fakeRow {
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func makeErrRow(err error) *fakeRow {
	return &fakeRow{scanFunc: func(dest ...any) error { return err }}
}

// makeConversationRow creates a fakeRow that populates a
// sqlc.WhatsappConversation via Scan.
func makeConversationRow(id pgtype.UUID, phone, name string, leadID pgtype.UUID, unread int32) *fakeRow {
	return &fakeRow{
		scanFunc: func(dest ...any) error {
			if len(dest) < 8 {
				return pgx.ErrNoRows
			}
			*dest[0].(*pgtype.UUID) = id
			*dest[1].(*string) = phone
			*dest[2].(*string) = name
			*dest[3].(*pgtype.UUID) = leadID
			*dest[4].(*pgtype.Text) = pgtype.Text{String: "hello", Valid: true}
			*dest[5].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Unix(1700000000, 0), Valid: true}
			*dest[6].(*int32) = unread
			*dest[7].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Unix(1700000000, 0), Valid: true}
			return nil
		},
	}
}

// makeLeadRow creates a fakeRow that populates a sqlc.Lead via Scan.
func makeLeadRow(id pgtype.UUID, name, phone string) *fakeRow {
	return &fakeRow{
		scanFunc: func(dest ...any) error {
			if len(dest) < 6 {
				return pgx.ErrNoRows
			}
			*dest[0].(*pgtype.UUID) = id
			*dest[1].(*string) = name
			*dest[2].(*pgtype.Text) = pgtype.Text{String: phone, Valid: true}
			*dest[3].(*string) = leads.SourceWhatsApp
			*dest[4].(*string) = leads.StatusNew
			*dest[5].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Unix(1700000000, 0), Valid: true}
			return nil
		},
	}
}

func mustParseUUID(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	var u pgtype.UUID
	if err := u.Scan(s); err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return u
}

func newTestService(db *fakeDBTX) *Service {
	queries := sqlc.New(db)
	return NewService(nil, queries, leads.NewService(queries))
}

func TestResolveInboundExistingConversation(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")
	db := &fakeDBTX{
		queryRowFunc: func(_ context.Context, sql string, _ ...any) pgx.Row {
			if strings.Contains(sql, "WHERE wa_phone") {
				return makeConversationRow(convUUID, "37360000001", "Ion", pgtype.UUID{}, 3)
			}
			return makeNoRow()
		},
	}
	svc := newTestService(db)

	conv, err := svc.ResolveInbound(context.Background(), "37360000001", "Ion")
	if err != nil {
		t.Fatalf("ResolveInbound: %v", err)
	}
	if conv.WaPhone != "37360000001" {
		t.Fatalf("unexpected phone %q", conv.WaPhone)
	}
	if got := db.callsMatching("INSERT INTO whatsapp_conversations"); len(got) != 0 {
		t.Fatalf("expected no conversation insert, got %d", len(got))
	}
}

func TestResolveInboundNewContactCreatesLead(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")
	leadUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000002")

	db := &fakeDBTX{}
	db.queryRowFunc = func(_ context.Context, sql string, _ ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "WHERE wa_phone"):
			return makeNoRow()
		case strings.Contains(sql, "FROM leads"):
			return makeNoRow()
		case strings.Contains(sql, "INSERT INTO whatsapp_conversations"):
			return makeConversationRow(convUUID, "37360000001", "Maria", pgtype.UUID{}, 1)
		case strings.Contains(sql, "INSERT INTO leads"):
			return makeLeadRow(leadUUID, "Maria", "+37360000001")
		case strings.Contains(sql, "SET lead_id"):
			return makeConversationRow(convUUID, "37360000001", "Maria", leadUUID, 1)
		}
		return makeNoRow()
	}
	svc := newTestService(db)

	conv, err := svc.ResolveInbound(context.Background(), "37360000001", "Maria")
	if err != nil {
		t.Fatalf("ResolveInbound: %v", err)
	}
	if conv.LeadID != leadUUID.String() {
		t.Fatalf("expected lead %s linked, got %q", leadUUID.String(), conv.LeadID)
	}

	// The conversation is created unseeded; aggregates follow the message row.
	convInserts := db.callsMatching("INSERT INTO whatsapp_conversations")
	if len(convInserts) != 1 {
		t.Fatalf("expected 1 conversation insert, got %d", len(convInserts))
	}
	if preview := convInserts[0].args[3].(pgtype.Text); preview.Valid {
		t.Fatalf("fresh conversation must have no preview, got %q", preview.String)
	}
	if unread := convInserts[0].args[5].(int32); unread != 0 {
		t.Fatalf("fresh conversation unread = %d, want 0", unread)
	}

	leadInserts := db.callsMatching("INSERT INTO leads")
	if len(leadInserts) != 1 {
		t.Fatalf("expected 1 lead insert, got %d", len(leadInserts))
	}
	args := leadInserts[0].args
	if args[0].(string) != "Maria" {
		t.Fatalf("lead name = %v", args[0])
	}
	if phone := args[1].(pgtype.Text); phone.String != "+37360000001" {
		t.Fatalf("lead phone = %q, want +37360000001", phone.String)
	}
	if args[2].(string) != leads.SourceWhatsApp || args[3].(string) != leads.StatusNew {
		t.Fatalf("lead source/status = %v/%v", args[2], args[3])
	}
}

func TestResolveInboundExistingLeadLinked(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")
	leadUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000002")

	db := &fakeDBTX{}
	db.queryRowFunc = func(_ context.Context, sql string, _ ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "WHERE wa_phone"):
			return makeNoRow()
		case strings.Contains(sql, "FROM leads"):
			return makeLeadRow(leadUUID, "Ion", "+37360000001")
		case strings.Contains(sql, "INSERT INTO whatsapp_conversations"):
			return makeConversationRow(convUUID, "37360000001", "Ion", leadUUID, 1)
		}
		return makeNoRow()
	}
	svc := newTestService(db)

	conv, err := svc.ResolveInbound(context.Background(), "37360000001", "Ion")
	if err != nil {
		t.Fatalf("ResolveInbound: %v", err)
	}
	if conv.LeadID != leadUUID.String() {
		t.Fatalf("expected existing lead attached, got %q", conv.LeadID)
	}

	inserts := db.callsMatching("INSERT INTO whatsapp_conversations")
	if len(inserts) != 1 {
		t.Fatalf("expected 1 conversation insert, got %d", len(inserts))
	}
	if leadArg := inserts[0].args[2].(pgtype.UUID); !leadArg.Valid || leadArg.String() != leadUUID.String() {
		t.Fatalf("conversation created with lead %v, want %s", leadArg, leadUUID.String())
	}
	if len(db.callsMatching("INSERT INTO leads")) != 0 {
		t.Fatal("expected no lead auto-create when a lead already matches")
	}
	// Dual-form lookup: both "+"-prefixed and bare numbers must be tried.
	leadLookups := db.callsMatching("FROM leads")
	if len(leadLookups) != 1 {
		t.Fatalf("expected 1 lead lookup, got %d", len(leadLookups))
	}
	p1 := leadLookups[0].args[0].(pgtype.Text)
	p2 := leadLookups[0].args[1].(pgtype.Text)
	if p1.String != "+37360000001" || p2.String != "37360000001" {
		t.Fatalf("lead lookup forms = %q/%q", p1.String, p2.String)
	}
}

func TestResolveInboundLostCreateRaceRefetches(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")

	lookups := 0
	db := &fakeDBTX{}
	db.queryRowFunc = func(_ context.Context, sql string, _ ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "WHERE wa_phone"):
			lookups++
			if lookups == 1 {
				return makeNoRow()
			}
			return makeConversationRow(convUUID, "37360000001", "Ion", pgtype.UUID{}, 1)
		case strings.Contains(sql, "INSERT INTO whatsapp_conversations"):
			return makeErrRow(&pgconn.PgError{Code: "23505"})
		}
		return makeNoRow()
	}
	svc := newTestService(db)

	conv, err := svc.ResolveInbound(context.Background(), "37360000001", "Ion")
	if err != nil {
		t.Fatalf("ResolveInbound: %v", err)
	}
	if conv.ID != convUUID.String() {
		t.Fatalf("expected winner's conversation, got %q", conv.ID)
	}
	if lookups != 2 {
		t.Fatalf("expected re-fetch after unique violation, lookups = %d", lookups)
	}
}

func TestEnsureForPhoneNormalizesAndCreates(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")

	db := &fakeDBTX{}
	db.queryRowFunc = func(_ context.Context, sql string, _ ...any) pgx.Row {
		if strings.Contains(sql, "INSERT INTO whatsapp_conversations") {
			return makeConversationRow(convUUID, "37360000001", "Ion", pgtype.UUID{}, 0)
		}
		return makeNoRow()
	}
	svc := newTestService(db)

	conv, err := svc.EnsureForPhone(context.Background(), LinkRequest{
		Phone: "+373 60-000-001",
		Name:  "Ion",
	})
	if err != nil {
		t.Fatalf("EnsureForPhone: %v", err)
	}
	if conv.ID != convUUID.String() {
		t.Fatalf("unexpected conversation %q", conv.ID)
	}

	lookups := db.callsMatching("WHERE wa_phone")
	if len(lookups) != 1 {
		t.Fatalf("expected 1 lookup, got %d", len(lookups))
	}
	if got := lookups[0].args[0].(string); got != "37360000001" {
		t.Fatalf("lookup phone = %q, want digits only", got)
	}
	inserts := db.callsMatching("INSERT INTO whatsapp_conversations")
	if len(inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(inserts))
	}
	if unread := inserts[0].args[5].(int32); unread != 0 {
		t.Fatalf("agent-opened thread starts with unread %d, want 0", unread)
	}
}

func TestEnsureForPhoneLinksExistingConversation(t *testing.T) {
	convUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000001")
	leadUUID := mustParseUUID(t, "00000000-0000-0000-0000-000000000002")

	db := &fakeDBTX{}
	db.queryRowFunc = func(_ context.Context, sql string, _ ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "WHERE wa_phone"):
			return makeConversationRow(convUUID, "37360000001", "37360000001", pgtype.UUID{}, 0)
		case strings.Contains(sql, "SET lead_id"):
			return makeConversationRow(convUUID, "37360000001", "Ion", leadUUID, 0)
		}
		return makeNoRow()
	}
	svc := newTestService(db)

	conv, err := svc.EnsureForPhone(context.Background(), LinkRequest{
		LeadID: leadUUID.String(),
		Phone:  "37360000001",
		Name:   "Ion",
	})
	if err != nil {
		t.Fatalf("EnsureForPhone: %v", err)
	}
	if conv.LeadID != leadUUID.String() {
		t.Fatalf("expected lead linked, got %q", conv.LeadID)
	}
	if len(db.callsMatching("SET lead_id")) != 1 {
		t.Fatal("expected lead link update")
	}
}

func TestEnsureForPhoneEmptyPhone(t *testing.T) {
	svc := newTestService(&fakeDBTX{})
	if _, err := svc.EnsureForPhone(context.Background(), LinkRequest{Phone: "  +- "}); err == nil {
		t.Fatal("expected error for phone with no digits")
	}
}
