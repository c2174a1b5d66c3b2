package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
)

// Client wraps the Redis connection.
// Used for pending-edit snapshots of grading sessions and for rate limiting.
type Client struct {
	rdb        *goredis.Client
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewClient connects to Redis and pings it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return NewFromClient(rdb, cfg.SessionTTL, logger), nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *goredis.Client, sessionTTL time.Duration, logger *zap.Logger) *Client {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &Client{rdb: rdb, sessionTTL: sessionTTL, logger: logger}
}

// ── pending-edit snapshots ──

const pendingPrefix = "grading:pending:"

// One snapshot per user: a user grades one course at a time, and the payload
// records which course it belongs to.
func pendingKey(userID string) string {
	return pendingPrefix + userID
}

// SavePending stores the serialized pending edits of a user's grading session.
// An empty payload removes the snapshot.
func (c *Client) SavePending(ctx context.Context, userID string, payload []byte) error {
	if len(payload) == 0 {
		return c.DeletePending(ctx, userID)
	}
	return c.rdb.Set(ctx, pendingKey(userID), payload, c.sessionTTL).Err()
}

// LoadPending returns the stored snapshot, or nil when none exists.
func (c *Client) LoadPending(ctx context.Context, userID string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, pendingKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeletePending removes the snapshot.
func (c *Client) DeletePending(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, pendingKey(userID)).Err()
}

// ── rate limiting ──

const rateLimitPrefix = "ratelimit:"

// CheckRateLimit sliding-window limiter backed by a sorted set.
// Returns true when the request is allowed.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitPrefix + key
	now := time.Now()
	min := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", min)
	count := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if count.Val() >= int64(limit) {
		return false, nil
	}

	pipe = c.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
