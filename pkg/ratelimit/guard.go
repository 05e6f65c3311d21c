package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/redis"
	"github.com/gNutty/vesselradar/pkg/tracing"
)

// Window is the shared sliding-window store behind a Guard.
type Window interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redis.QuotaResult, error)
	BlockFor(ctx context.Context, key string, d time.Duration) error
}

type Config struct {
	// Name identifies the quota bucket, e.g. the provider host.
	Name     string
	Requests int
	Window   time.Duration
}

// ExceededError is returned by Reserve when the quota is used up.
type ExceededError struct {
	Name    string
	RetryIn time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit %s exceeded, retry in %v", e.Name, e.RetryIn)
}

// Guard protects an upstream quota shared by every replica. It fails open when
// the window store is unavailable.
type Guard struct {
	window Window
	config Config
	logger ectologger.Logger
}

func NewGuard(window Window, config Config, logger ectologger.Logger) *Guard {
	return &Guard{
		window: window,
		config: config,
		logger: logger,
	}
}

// Reserve takes one request from the quota.
func (g *Guard) Reserve(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "RateLimitGuard.Reserve")
	defer span.End()

	if g.config.Requests <= 0 || g.config.Window <= 0 {
		return nil
	}

	result, err := g.window.Allow(ctx, g.config.Name, int64(g.config.Requests), g.config.Window)
	if err != nil {
		g.logger.WithContext(ctx).WithError(err).Errorf("Rate limit check failed for %s", g.config.Name)
		return nil
	}

	if !result.Allowed {
		g.logger.WithContext(ctx).Warnf("Rate limit exceeded for %s: retry in %v", g.config.Name, result.RetryIn)
		metrics.RecordRateLimitHit(g.config.Name)
		return &ExceededError{Name: g.config.Name, RetryIn: result.RetryIn}
	}

	g.logger.WithContext(ctx).Debugf("Rate limit %s: %d remaining", g.config.Name, result.Remaining)
	return nil
}

// Backoff blocks the quota for d, typically the upstream Retry-After.
func (g *Guard) Backoff(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if err := g.window.BlockFor(ctx, g.config.Name, d); err != nil {
		g.logger.WithContext(ctx).WithError(err).Warnf("Failed to block rate limit %s", g.config.Name)
		return
	}
	g.logger.WithContext(ctx).Infof("Rate limit %s blocked for %v", g.config.Name, d)
}

// ParseRetryAfter parses a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(value string, now time.Time) (time.Duration, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		return t.Sub(now), nil
	}
	return 0, fmt.Errorf("invalid Retry-After value: %s", value)
}
