package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/types"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRateStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.counts))
	for k := range f.counts {
		out = append(out, k)
	}
	return out
}

func authAttempt(h http.Handler, ip, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.RemoteAddr = ip + ":5678"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRateLimitLimits(t *testing.T) {
	cases := []struct {
		name     string
		ipLimit  int
		phLimit  int
		attempts []struct{ ip, body string }
		want     []int
	}{
		{
			name:    "phone limit",
			phLimit: 2,
			attempts: []struct{ ip, body string }{
				{"1.2.3.4", `{"phone":"+254700000001"}`},
				{"1.2.3.5", `{"phone":"+254700000001"}`},
				{"1.2.3.6", `{"phone":"+254700000001"}`},
			},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:    "ip limit",
			ipLimit: 1,
			attempts: []struct{ ip, body string }{
				{"5.6.7.8", `{"phone":"0711111111"}`},
				{"5.6.7.8", `{"phone":"0722222222"}`},
			},
			want: []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:    "phone spellings share a counter",
			phLimit: 1,
			attempts: []struct{ ip, body string }{
				{"1.1.1.1", `{"phone":"0722000000"}`},
				{"1.1.1.2", `{"phone":"+254 722 000 000"}`},
			},
			want: []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:    "body without phone only counts ip",
			phLimit: 1,
			attempts: []struct{ ip, body string }{
				{"9.9.9.9", `not json`},
				{"9.9.9.9", `{}`},
			},
			want: []int{http.StatusOK, http.StatusOK},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := NewAuthRateLimitPolicy("login", time.Minute, tc.ipLimit, tc.phLimit)
			h := AuthRateLimit(policy, newFakeRateStore(), nil)(okHandler())
			for i, a := range tc.attempts {
				rec := authAttempt(h, a.ip, a.body)
				assert.Equal(t, tc.want[i], rec.Code, "attempt %d", i)
			}
		})
	}
}

func TestAuthRateLimitBlockedEnvelope(t *testing.T) {
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 0), newFakeRateStore(), nil)(okHandler())

	authAttempt(h, "1.2.3.4", `{}`)
	rec := authAttempt(h, "1.2.3.4", `{}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), body.Error.Code)
}

func TestAuthRateLimitReplaysBody(t *testing.T) {
	var seen string
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 5, 5), newFakeRateStore(), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(raw)
		}))

	authAttempt(h, "1.2.3.4", `{"phone":"0712345678","password":"secret"}`)
	assert.Equal(t, `{"phone":"0712345678","password":"secret"}`, seen)
}

func TestAuthRateLimitKeysHidePhone(t *testing.T) {
	store := newFakeRateStore()
	h := AuthRateLimit(NewAuthRateLimitPolicy("Register", time.Minute, 5, 5), store, nil)(okHandler())

	authAttempt(h, "1.2.3.4", `{"phone":"0712345678"}`)
	keys := store.keys()
	require.Len(t, keys, 2)
	assert.Contains(t, keys, "rl:ip:register:1.2.3.4")
	for _, k := range keys {
		assert.NotContains(t, k, "712345678")
	}
}

func TestAuthRateLimitStoreFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 1), store, nil)(okHandler())

	rec := authAttempt(h, "1.2.3.4", `{"phone":"0712345678"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRateLimitDisabledPassesThrough(t *testing.T) {
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), nil, nil)(okHandler())
	assert.Equal(t, http.StatusOK, authAttempt(h, "1.2.3.4", `{}`).Code)
}
