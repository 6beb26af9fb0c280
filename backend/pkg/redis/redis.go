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

	"github.com/raghava-0650/Attendeese/backend/config"
)

// Client Redis 客户端封装
// 当前用于接口限流与课表读缓存
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
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口计数：窗口内请求数未达 limit 时放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.PExpire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return card.Val() < int64(limit), nil
}

// ── 课表缓存 ──
//
// 缓存值带版本号，只接受更新的版本写入：并发读写下旧数据不会覆盖新数据。

const timetablePrefix = "timetable:"

var setIfNewerScript = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// GetTimetable 读取缓存的课表快照
func (c *Client) GetTimetable(ctx context.Context, ownerID string) (version int, data []byte, ok bool, err error) {
	vals, err := c.rdb.HMGet(ctx, timetablePrefix+ownerID, "version", "data").Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return 0, nil, false, nil
	}
	vs, _ := vals[0].(string)
	ds, _ := vals[1].(string)
	version, err = strconv.Atoi(vs)
	if err != nil {
		return 0, nil, false, nil
	}
	return version, []byte(ds), true, nil
}

// SetTimetable 写入课表快照（仅当 version 大于已缓存版本时生效），ttl <= 0 表示不过期
func (c *Client) SetTimetable(ctx context.Context, ownerID string, version int, data []byte, ttl time.Duration) error {
	return setIfNewerScript.Run(ctx, c.rdb,
		[]string{timetablePrefix + ownerID},
		version, string(data), ttl.Milliseconds(),
	).Err()
}

// DeleteTimetable 删除课表快照，写缓存失败时用于淘汰旧版本
func (c *Client) DeleteTimetable(ctx context.Context, ownerID string) error {
	return c.rdb.Del(ctx, timetablePrefix+ownerID).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
