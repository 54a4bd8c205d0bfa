// Package accounts manages the local user records behind API authentication.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	dbpkg "github.com/lumacrm/wabridge/internal/db"
	"github.com/lumacrm/wabridge/internal/db/sqlc"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords, and
// deactivated accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an API user able to authenticate and send messages.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Service authenticates and provisions users.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

// NewService creates an accounts service.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "accounts")),
	}
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	if s.queries == nil {
		return User{}, fmt.Errorf("accounts queries not configured")
	}
	row, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !row.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return normalizeUser(row), nil
}

// EnsureAdmin creates the bootstrap admin account when the users table is
// empty. Called once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if s.queries == nil {
		return fmt.Errorf("accounts queries not configured")
	}
	count, err := s.queries.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return fmt.Errorf("admin username/password required in config.toml")
	}
	if password == "change-your-password-here" {
		s.logger.Warn("admin password uses default placeholder; please update config.toml")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.queries.CreateUser(ctx, sqlc.CreateUserParams{
		Username:     username,
		Email:        dbpkg.ToPgText(email),
		PasswordHash: string(hashed),
		Role:         "admin",
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	s.logger.Info("admin user created", slog.String("username", username))
	return nil
}

func normalizeUser(row sqlc.User) User {
	return User{
		ID:        dbpkg.UUIDToString(row.ID),
		Username:  row.Username,
		Email:     dbpkg.TextToString(row.Email),
		Role:      row.Role,
		IsActive:  row.IsActive,
		CreatedAt: dbpkg.TimeFromPg(row.CreatedAt),
	}
}
