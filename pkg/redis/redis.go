package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yuva-vikas/backend/config"
)

// Client Redis 客户端封装
// 当前用于写操作限流与结转处理器互斥锁；后续可扩展缓存等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 滑动窗口限流 ──

// CheckRateLimit 滑动窗口限流检查
// 窗口内请求数未超过 limit 时返回 true 并记录本次请求
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := c.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(limit) {
		return false, nil
	}

	pipe = c.rdb.Pipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	return true, err
}

// ── 结转处理器互斥锁 ──

const resolverLockKey = "carry_forward:resolver:lock"

// AcquireResolverLock 获取结转处理互斥锁（SET NX）
// 多实例部署时保证同一时刻只有一个实例执行期末扫描/批量结转
// 返回锁令牌；锁被其他实例持有时 ok=false
func (c *Client) AcquireResolverLock(ctx context.Context, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.New().String()
	ok, err = c.rdb.SetNX(ctx, resolverLockKey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// releaseScript 仅当令牌匹配时删除锁，避免释放他人持有的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseResolverLock 释放结转处理互斥锁
func (c *Client) ReleaseResolverLock(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, c.rdb, []string{resolverLockKey}, token).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
