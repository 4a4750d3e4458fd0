package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voo-ward/voo-citizen-backend/api/responses"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/phone"
)

// AuthRateLimitPolicy throttles an unauthenticated surface by caller IP and
// by the phone number in the request body.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	phoneLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, phoneLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, phoneLimit: phoneLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.phoneLimit > 0)
}

// AuthRateLimit counts attempts per IP and per normalized phone. Phone
// numbers are hashed before they reach Redis keys or logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			counters := []windowCounter{{
				scope: "ip",
				key:   "rl:ip:" + policy.name + ":" + clientIP(r),
				limit: policy.ipLimit,
			}}
			if policy.phoneLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if hash := phoneHash(body); hash != "" {
					counters = append(counters, windowCounter{
						scope: "phone",
						key:   "rl:phone:" + policy.name + ":" + hash,
						limit: policy.phoneLimit,
					})
				}
			}

			verdict, err := checkCounters(ctx, store, policy.window, counters...)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if verdict != nil {
				writeRateLimited(ctx, logg, w, "auth.rate_limit.blocked", policy.name, policy.window, verdict,
					"Too many attempts, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// phoneHash returns the hex SHA-256 of the body's normalized phone, or ""
// when the body carries none.
func phoneHash(body []byte) string {
	var payload struct {
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	number := phone.Normalize(payload.Phone)
	if number == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(number))
	return hex.EncodeToString(sum[:])
}
