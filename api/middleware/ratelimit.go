package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/voo-ward/voo-citizen-backend/api/responses"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
)

// rateLimiterStore is satisfied by the Redis client: INCR plus EXPIRE on the
// first hit, giving a fixed window per key.
type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// windowCounter is one fixed-window bucket checked for a request.
type windowCounter struct {
	scope string
	key   string
	limit int
}

type rateVerdict struct {
	counter  windowCounter
	attempts int64
}

// checkCounters increments each bucket in order and stops at the first one
// over its limit. A nil verdict means the request may proceed.
func checkCounters(ctx context.Context, store rateLimiterStore, window time.Duration, counters ...windowCounter) (*rateVerdict, error) {
	for _, c := range counters {
		if c.limit <= 0 || c.key == "" {
			continue
		}
		count, err := store.IncrWithTTL(ctx, c.key, window)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting")
		}
		if count > int64(c.limit) {
			return &rateVerdict{counter: c, attempts: count}, nil
		}
	}
	return nil, nil
}

func writeRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, event, policy string, window time.Duration, verdict *rateVerdict, message string) {
	logg.Warn(logg.WithFields(ctx, map[string]any{
		"policy":         policy,
		"scope":          verdict.counter.scope,
		"attempts":       verdict.attempts,
		"limit":          verdict.counter.limit,
		"window_seconds": int(window.Seconds()),
	}), event)

	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(window.Seconds()))))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, message))
}

// clientIP reads the peer address. chi's RealIP middleware has already
// applied any trusted proxy headers to RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
