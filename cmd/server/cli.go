package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"task_backend/internal/app/config"
	"task_backend/internal/app/di"
	"task_backend/internal/platform/db"
	infraredis "task_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

// options はすべてのサブコマンドで共有されるフラグです。
type options struct {
	envFile string
	port    string
}

// newRootCommand は serve と migrate を持つルートコマンドを生成します。
// サブコマンドを省略した場合は serve として動作します。
func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "server",
		Short: "Users and tasks REST API",
		Long: `Users and tasks REST API backed by PostgreSQL or SQLite.

CONFIGURATION:
  Settings are read from the environment (optionally from a .env file).
    DB_DRIVER                  postgres (default) or sqlite
    DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE
    SQLITE_PATH                SQLite file (default: ./task.db)
    RUN_MIGRATIONS             sync the schema on startup (default: true)
    JWT_SECRET                 token signing secret (required)
    JWT_TTL                    token lifetime (default: 1h)
    PASSWORD_HASH_ALGO         bcrypt (default) or argon2id
    BCRYPT_COST                bcrypt cost (default: 10)
    PORT                       listen port (default: 8080)
    REDIS_HOST, REDIS_PORT, REDIS_PASSWORD   user cache (optional)
    USER_CACHE_TTL             cache lifetime (default: 5m)
    LOGIN_RATE_PER_MIN         login attempts per client IP (default: 20)
    CORS_ALLOW_ORIGINS         comma separated origins (default: "*", any origin)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file")
	flags.StringVar(&opts.port, "port", "", "Listen port (overrides PORT)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Synchronise the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts)
		},
	})

	return root
}

func loadConfig(opts *options) (config.Config, error) {
	config.LoadDotEnv(opts.envFile)
	cfg := config.LoadConfigFromEnv()
	if opts.port != "" {
		cfg.Port = opts.port
	}
	return cfg, cfg.Validate()
}

func runMigrate(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil && !errors.Is(err, config.ErrMissingJWTSecret) {
		return err
	}
	cfg.DB.RunMigrations = true

	conn, err := db.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	slog.Info("schema synchronised", "driver", cfg.DB.Driver)
	return nil
}

func runServe(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// db
	conn, err := db.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	// Redis
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// ルータ生成
	router, err := di.NewRouter(cfg, conn, rdb)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
