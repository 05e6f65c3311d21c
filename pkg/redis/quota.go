package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// takeQuota checks the backoff key, then admits the request when fewer than
// limit entries fall inside the window. Replies {allowed, remaining, retry_ms}.
var takeQuota = goredis.NewScript(`
	local window_key = KEYS[1]
	local backoff_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])

	local backoff = redis.call("pttl", backoff_key)
	if backoff > 0 then
		return {0, 0, backoff}
	end

	redis.call("zremrangebyscore", window_key, "-inf", now - window_ms)
	local used = redis.call("zcard", window_key)
	if used >= limit then
		local retry = window_ms
		local oldest = redis.call("zrange", window_key, 0, 0, "WITHSCORES")
		if #oldest > 0 then
			retry = tonumber(oldest[2]) + window_ms - now
		end
		return {0, 0, retry}
	end

	redis.call("zadd", window_key, now, now .. "-" .. math.random())
	redis.call("pexpire", window_key, window_ms)
	return {1, limit - used - 1, 0}
`)

type QuotaResult struct {
	Allowed   bool
	Remaining int64
	RetryIn   time.Duration
}

// QuotaWindow counts requests to an upstream in a sliding window shared by
// every replica. A backoff denies the whole quota until it expires.
type QuotaWindow struct {
	client *Client
	prefix string
}

func NewQuotaWindow(client *Client, prefix string) *QuotaWindow {
	if prefix == "" {
		prefix = "quota:"
	}
	return &QuotaWindow{client: client, prefix: prefix}
}

func (w *QuotaWindow) windowKey(name string) string {
	return w.prefix + name
}

func (w *QuotaWindow) backoffKey(name string) string {
	return w.prefix + name + ":backoff"
}

// Allow takes one request from the quota called name.
func (w *QuotaWindow) Allow(ctx context.Context, name string, limit int64, window time.Duration) (*QuotaResult, error) {
	reply, err := takeQuota.Run(ctx, w.client.rdb,
		[]string{w.windowKey(name), w.backoffKey(name)},
		time.Now().UnixMilli(),
		window.Milliseconds(),
		limit,
	).Int64Slice()
	if err != nil {
		return nil, err
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("unexpected quota reply: %v", reply)
	}
	return &QuotaResult{
		Allowed:   reply[0] == 1,
		Remaining: reply[1],
		RetryIn:   time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// BlockFor denies the quota for d, e.g. an upstream Retry-After.
func (w *QuotaWindow) BlockFor(ctx context.Context, name string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return w.client.Set(ctx, w.backoffKey(name), "1", d)
}
