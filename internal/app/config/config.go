// Package config はアプリケーション全体の設定を環境変数から組み立てます。
// 設定値はプロセス起動時に一度だけ読み込まれ、各コンポーネントへ明示的に注入されます。
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"task_backend/internal/platform/db"
	"task_backend/internal/platform/redis"
)

const (
	defaultPort          = "8080"
	defaultTokenTTL      = time.Hour
	defaultHashAlgo      = "bcrypt"
	defaultBcryptCost    = 10
	defaultUserCacheTTL  = 5 * time.Minute
	defaultLoginRatePerM = 20
	defaultCORSOrigins   = "*"
)

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// AuthConfig holds settings for password hashing and session tokens.
type AuthConfig struct {
	JWTSecret  string        // HS256 signing secret
	TokenTTL   time.Duration // lifetime of an issued token
	HashAlgo   string        // "bcrypt" or "argon2id"
	BcryptCost int
}

// Config is the root configuration object passed into main's wiring.
type Config struct {
	Port               string
	DB                 db.Config
	Redis              redis.Config
	Auth               AuthConfig
	UserCacheTTL       time.Duration
	LoginRatePerMinute int
	CORSAllowOrigins   []string
}

// LoadDotEnv は.envファイルが存在すれば読み込みます。見つからない場合は環境変数のみを使用します。
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		slog.Info(".env not found; using system environment variables", "path", path)
	}
}

// LoadConfigFromEnv は環境変数から設定を読み込みます。
// 未設定または不正な値はデフォルト値にフォールバックします。
func LoadConfigFromEnv() Config {
	return Config{
		Port:  getEnv("PORT", defaultPort),
		DB:    db.LoadConfigFromEnv(),
		Redis: redis.LoadConfigFromEnv(),
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   getDuration("JWT_TTL", defaultTokenTTL),
			HashAlgo:   strings.ToLower(getEnv("PASSWORD_HASH_ALGO", defaultHashAlgo)),
			BcryptCost: getInt("BCRYPT_COST", defaultBcryptCost),
		},
		UserCacheTTL:       getDuration("USER_CACHE_TTL", defaultUserCacheTTL),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MIN", defaultLoginRatePerM),
		CORSAllowOrigins:   splitList(getEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins)),
	}
}

// Validate は起動に必須の設定が揃っているかを検証します。
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// splitList はカンマ区切りの値を空要素を除いたスライスに変換します。
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
