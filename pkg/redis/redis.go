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

	"github.com/seunghochoi2018/soslab/config"
)

// ErrLockTimeout 컨텍스트가 끝날 때까지 잠금을 얻지 못함
var ErrLockTimeout = errors.New("redis 잠금 획득 시간 초과")

// Client Redis 클라이언트 래퍼
// 토큰 블랙리스트, 웹훅 쓰기 잠금, 이벤트 중복 제거, 요청 빈도 제한에 쓴다.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient Redis 에 연결하고 Ping 으로 확인한다.
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
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	logger.Info("Redis 연결 성공", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 토큰 블랙리스트 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken JWT ID 를 남은 유효기간 동안 블랙리스트에 넣는다.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 이미 만료
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted JWT ID 가 블랙리스트에 있는지
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 분산 잠금 ──

const lockPrefix = "lock:"

var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock SET NX PX 로 잠금을 얻는다. 얻을 때까지 짧게 재시도하며 ctx 가 끝나면 포기한다.
// 반환된 unlock 은 자신이 건 잠금일 때만 해제한다.
func (c *Client) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	fullKey := lockPrefix + key

	backoff := 20 * time.Millisecond
	for {
		ok, err := c.rdb.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis 잠금 실패: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}

	return func() {
		// 요청 컨텍스트가 이미 끝났어도 해제는 시도한다
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, c.rdb, []string{fullKey}, token).Err(); err != nil {
			c.logger.Warn("redis 잠금 해제 실패", zap.String("key", fullKey), zap.Error(err))
		}
	}, nil
}

// ── 이벤트 중복 제거 ──

const seenPrefix = "seen:"

// MarkOnce 처음 보는 키면 true. 같은 키는 ttl 동안 false 를 돌려준다.
func (c *Client) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, seenPrefix+key, "1", ttl).Result()
}

// Forget MarkOnce 로 남긴 표시를 지운다 (처리 실패 시 재시도를 허용하기 위해).
func (c *Client) Forget(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, seenPrefix+key).Err()
}

// ── 빈도 제한 ──

// CheckRateLimit 슬라이딩 윈도우 안의 요청 수가 limit 이하인지 확인하고 이번 요청을 기록한다.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()[:8]
	minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", minScore)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(limit), nil
}

// Close 연결 종료
func (c *Client) Close() error {
	return c.rdb.Close()
}
