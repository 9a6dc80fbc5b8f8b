// Package rolecache provides a Redis-backed read-through cache for roles.
package rolecache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

const (
	idKeyPrefix   = "role:id:"
	nameKeyPrefix = "role:name:"
)

type roleEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Cache caches role records in Redis. Entries carry a TTL so a reseeded
// role store converges without manual flushes; within the TTL roles are
// treated as immutable.
//
// Cache errors degrade to misses so an unavailable Redis never blocks
// authorization, it only loses the lookup shortcut.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Connect dials Redis using a connection URL and verifies the server
// responds before handing back a client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Cache) GetByID(ctx context.Context, id domain.RoleID) (domain.Role, bool) {
	return c.get(ctx, idKeyPrefix+string(id))
}

func (c *Cache) GetByName(ctx context.Context, name domain.RoleName) (domain.Role, bool) {
	return c.get(ctx, nameKeyPrefix+string(name))
}

func (c *Cache) get(ctx context.Context, key string) (domain.Role, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "role cache: get failed", "key", key, "error", err)
		}
		return domain.Role{}, false
	}
	var entry roleEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.WarnContext(ctx, "role cache: corrupt entry", "key", key, "error", err)
		return domain.Role{}, false
	}
	return domain.Role{
		ID:   domain.RoleID(entry.ID),
		Name: domain.RoleName(entry.Name),
	}, true
}

func (c *Cache) Put(ctx context.Context, r domain.Role) {
	raw, err := json.Marshal(roleEntry{ID: string(r.ID), Name: string(r.Name)})
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, idKeyPrefix+string(r.ID), raw, c.ttl)
	pipe.Set(ctx, nameKeyPrefix+string(r.Name), raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "role cache: put failed", "role", string(r.Name), "error", err)
	}
}
