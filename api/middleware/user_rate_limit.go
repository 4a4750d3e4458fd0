package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/voo-ward/voo-citizen-backend/api/responses"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
)

// UserRateLimitPolicy caps how often one authenticated user may hit a route.
type UserRateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

func NewUserRateLimitPolicy(name string, window time.Duration, limit int) UserRateLimitPolicy {
	return UserRateLimitPolicy{name: strings.ToLower(strings.TrimSpace(name)), window: window, limit: limit}
}

// UserRateLimit must run after Auth. Requests without a user pass through.
func UserRateLimit(policy UserRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.window <= 0 || policy.limit <= 0 || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := UserIDFromContext(ctx)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			verdict, err := checkCounters(ctx, store, policy.window, windowCounter{
				scope: "user",
				key:   "rl:user:" + policy.name + ":" + userID,
				limit: policy.limit,
			})
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if verdict != nil {
				writeRateLimited(ctx, logg, w, "user.rate_limit.blocked", policy.name, policy.window, verdict,
					"Too many requests, please slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
