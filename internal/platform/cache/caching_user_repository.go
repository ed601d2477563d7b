// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/user/domain/entity"
	"task_backend/internal/feature/user/usecase"
	"task_backend/internal/platform/db"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "users"
)

// CachingUserRepository decorates a UserRepository with a Redis read-through cache
// for FindByID and List. Lookups by email always go to the database so that login
// compares against the current password hash.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching entirely.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the user and drops the cached list.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey())
	return nil
}

func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

func (c *CachingUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return c.inner.ExistsByEmail(ctx, email)
}

// FindByID checks the cache first and falls back to the database.
// Reads inside a transaction always hit the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.bypass(ctx) {
		return c.inner.FindByID(ctx, id)
	}

	key := c.userKey(id)
	var cached entity.User
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	user, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, user)
	return user, nil
}

// List checks the cache first and falls back to the database.
func (c *CachingUserRepository) List(ctx context.Context) ([]entity.User, error) {
	if c.bypass(ctx) {
		return c.inner.List(ctx)
	}

	key := c.listKey()
	var cached []entity.User
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	users, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, users)
	return users, nil
}

// Update writes the user back and drops both the entry and the list.
func (c *CachingUserRepository) Update(ctx context.Context, user *entity.User) error {
	if err := c.inner.Update(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx, c.userKey(user.ID), c.listKey())
	return nil
}

// Delete removes the user and drops both the entry and the list.
func (c *CachingUserRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, c.userKey(id), c.listKey())
	return nil
}

func (c *CachingUserRepository) bypass(ctx context.Context) bool {
	return c.rdb == nil || db.InTransaction(ctx)
}

// load reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingUserRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store is best effort: a failed write only costs a cache miss later.
func (c *CachingUserRepository) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache users", "key", key, "error", err)
	}
}

// invalidate はキーを削除します。トランザクション中であればコミット後まで遅延させ、
// コミット前に読み込まれた古い行がキャッシュに残らないようにします。
func (c *CachingUserRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	db.AfterCommit(ctx, func() {
		if err := c.rdb.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
			slog.Warn("failed to invalidate user cache", "keys", keys, "error", err)
		}
	})
}

func (c *CachingUserRepository) userKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

func (c *CachingUserRepository) listKey() string {
	return c.namespace + ":list"
}
