package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumacrm/wabridge/db"
	"github.com/lumacrm/wabridge/internal/accounts"
	"github.com/lumacrm/wabridge/internal/config"
	"github.com/lumacrm/wabridge/internal/conversations"
	dbpkg "github.com/lumacrm/wabridge/internal/db"
	dbsqlc "github.com/lumacrm/wabridge/internal/db/sqlc"
	"github.com/lumacrm/wabridge/internal/handlers"
	"github.com/lumacrm/wabridge/internal/leads"
	"github.com/lumacrm/wabridge/internal/logger"
	"github.com/lumacrm/wabridge/internal/messaging"
	"github.com/lumacrm/wabridge/internal/server"
	"github.com/lumacrm/wabridge/internal/version"
	"github.com/lumacrm/wabridge/internal/whatsapp"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,

			provideDBConn,
			provideDBQueries,

			provideWhatsAppClient,
			func(c *whatsapp.Client) messaging.Sender { return c },

			leads.NewService,
			conversations.NewService,
			messaging.NewService,
			accounts.NewService,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(handlers.NewWhatsAppHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx := context.Background()

	conn, err := dbpkg.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries {
	return dbsqlc.New(conn)
}

func provideWhatsAppClient(log *slog.Logger, cfg config.Config) *whatsapp.Client {
	return whatsapp.NewClient(log, cfg.WhatsApp)
}

func provideAuthHandler(log *slog.Logger, accountService *accounts.Service, cfg config.Config) (*handlers.AuthHandler, error) {
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse jwt_expires_in: %w", err)
	}
	return handlers.NewAuthHandler(log, accountService, cfg.Auth.JWTSecret, expiresIn), nil
}

func provideWebhookHandler(log *slog.Logger, messagingService *messaging.Service, cfg config.Config) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, messagingService, cfg.WhatsApp)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	accountService *accounts.Service,
) {
	fmt.Printf("Starting WABridge %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := accountService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown() // shutdown the application if the server fails to start
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			// graceful shutdown
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func runMigrate(args []string) {
	cfg, err := provideConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := provideLogger(cfg)

	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	migrationsFS, err := fs.Sub(db.MigrationsFS, "migrations")
	if err != nil {
		log.Error("migrations fs", slog.Any("error", err))
		os.Exit(1)
	}
	if err := dbpkg.RunMigrate(log, cfg.Postgres, migrationsFS, command, args); err != nil {
		log.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}
}
