// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"task_backend/internal/app/config"
	"task_backend/internal/app/router"
	taskadapters "task_backend/internal/feature/task/adapters"
	taskhandler "task_backend/internal/feature/task/transport/handler"
	taskusecase "task_backend/internal/feature/task/usecase"
	useradapters "task_backend/internal/feature/user/adapters"
	userhandler "task_backend/internal/feature/user/transport/handler"
	userusecase "task_backend/internal/feature/user/usecase"
	"task_backend/internal/platform/cache"
	"task_backend/internal/platform/db"
	healthhandler "task_backend/internal/platform/http/handler"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/password"
	"task_backend/internal/shared/ratelimiter"
)

// NewUserRepository creates a UserRepository implementation.
// If Redis is available, the gorm repository is wrapped with a read-through cache.
func NewUserRepository(rdb *redis.Client, conn *gorm.DB, ttl time.Duration) userusecase.UserRepository {
	repo := useradapters.NewUserRepository(conn)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, ttl, repo, "users")
	}
	return repo
}

// NewHasher creates the password hasher selected by configuration.
func NewHasher(cfg config.AuthConfig) (*password.Hasher, error) {
	h, err := password.New(cfg.HashAlgo, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	return h, nil
}

// NewRouter はリポジトリ、ユースケース、ハンドラーを組み立ててルーターを返します。
// rdb はnilでもよく、その場合はキャッシュなしで動作します。
func NewRouter(cfg config.Config, conn *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	hasher, err := NewHasher(cfg.Auth)
	if err != nil {
		return nil, err
	}
	tokens := jwtmw.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tx := db.NewTransactor(conn)

	// Repository
	userRepo := NewUserRepository(rdb, conn, cfg.UserCacheTTL)
	taskRepo := taskadapters.NewTaskRepository(conn)

	// Usecase
	userUC := userusecase.NewUserUsecase(userRepo, hasher, tokens, tx)
	taskUC := taskusecase.NewTaskUsecase(taskRepo, tx)

	deps := router.Deps{
		Auth:   userhandler.NewAuthHandler(userUC),
		Users:  userhandler.NewUserHandler(userUC),
		Tasks:  taskhandler.NewTaskHandler(taskUC),
		Health: healthhandler.Health(pingDB(conn)),
		Guard:  jwtmw.AuthRequired(tokens),

		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}
	if cfg.LoginRatePerMinute > 0 {
		deps.LoginLimiter = ratelimiter.Middleware(ratelimiter.NewRateLimiter(cfg.LoginRatePerMinute, time.Minute))
	}
	return router.NewRouter(deps), nil
}

func pingDB(conn *gorm.DB) healthhandler.Check {
	return func(ctx context.Context) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
