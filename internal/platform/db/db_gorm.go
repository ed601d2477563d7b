// Package db はGORMによるデータベース接続、スキーマ同期、トランザクション管理を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	taskentity "task_backend/internal/feature/task/domain/entity"
	userentity "task_backend/internal/feature/user/domain/entity"
)

const (
	// DriverPostgres selects the PostgreSQL dialector.
	DriverPostgres = "postgres"
	// DriverSQLite selects the SQLite dialector (local development and tests).
	DriverSQLite = "sqlite"

	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
	// connectTimeout は起動時の接続リトライを諦めるまでの時間です。
	connectTimeout = 60 * time.Second
)

// Config holds the database connection parameters.
type Config struct {
	Driver        string
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	SQLitePath    string
	RunMigrations bool
}

// Opener opens a gorm connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverPostgres
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./task.db"
	}
	return Config{
		Driver:        driver,
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       sslmode,
		SQLitePath:    path,
		RunMigrations: os.Getenv("RUN_MIGRATIONS") != "false",
	}
}

// BuildDSN は設定からドライバに応じたDSN文字列を生成します。
// SQLiteの場合は外部キー制約を有効にするパラメータを付与します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return sqliteDSN(cfg.SQLitePath)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		path = "file::memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}

// GormConfig returns the gorm settings shared by every connection.
// TranslateError maps driver specific constraint errors onto gorm.ErrDuplicatedKey
// and gorm.ErrForeignKeyViolated.
func GormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// ConnectWithRetry は接続に成功するかtimeoutを超えるまでリトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenDB は設定に従ってデータベースへ接続し、必要であればスキーマを同期します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = OpenSQLite(cfg.SQLitePath)
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), GormConfig())
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// OpenSQLite opens a SQLite database with foreign keys enforced.
// An in-memory database is pinned to a single connection so every query sees the same schema.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate はエンティティ定義からテーブルを同期します（User, Task）。
// tasks.user_id には ON DELETE CASCADE の外部キーが作成されます。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userentity.User{}, &taskentity.Task{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
