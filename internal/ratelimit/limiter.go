package ratelimit

import (
	"context"
	"esign-web-server/internal/util"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter : счетчик запросов в окне
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Limiter : фиксированное окно на счетчиках Redis
type Limiter struct {
	counter  Counter
	requests int
	window   time.Duration
	prefix   string
}

func NewLimiter(counter Counter, requests int, window time.Duration, prefix string) *Limiter {
	return &Limiter{counter: counter, requests: requests, window: window, prefix: prefix}
}

// Allow : возвращает false, если лимит для ключа исчерпан в текущем окне
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.requests <= 0 {
		return true, nil
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	count, err := l.counter.Hit(ctx, redisKey, l.window)
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}

	return count <= int64(l.requests), nil
}

// Middleware : при недоступном Redis запрос пропускается
func (l *Limiter) Middleware(keyFunc func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := l.Allow(r.Context(), keyFunc(r))
			if err != nil {
				zap.L().Warn("[RateLimit] лимитер недоступен, запрос пропущен", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				util.HandleError(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByClientIP : ключ по адресу соединения, X-Forwarded-For не учитывается
func ByClientIP(r *http.Request) string {
	return util.ClientIP(r)
}
