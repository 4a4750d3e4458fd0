package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/auth"
	"github.com/voo-ward/voo-citizen-backend/pkg/auth/session"
	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

var authTestJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, s.err
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Phone:  "+254712345678",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func TestAuthRejections(t *testing.T) {
	valid := mintTestToken(t, authTestJWT, uuid.New(), enums.UserRoleCitizen)
	otherIssuer := authTestJWT
	otherIssuer.Issuer = "someone-else"
	foreign := mintTestToken(t, otherIssuer, uuid.New(), enums.UserRoleCitizen)

	cases := []struct {
		name     string
		header   string
		verifier session.AccessSessionChecker
		status   int
	}{
		{"missing header", "", stubSessionVerifier{ok: true}, http.StatusUnauthorized},
		{"malformed token", "Bearer invalid", stubSessionVerifier{ok: true}, http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + foreign, stubSessionVerifier{ok: true}, http.StatusUnauthorized},
		{"revoked session", "Bearer " + valid, stubSessionVerifier{ok: false}, http.StatusUnauthorized},
		{"session store down", "Bearer " + valid, stubSessionVerifier{err: errors.New("redis down")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			h := Auth(authTestJWT, tc.verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, reached)
		})
	}
}

func TestAuthSeedsPrincipal(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, authTestJWT, userID, enums.UserRoleAdmin)

	var got Principal
	var gotID uuid.UUID
	h := Auth(authTestJWT, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = principalFrom(r.Context())
		gotID, _ = UserUUIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Principal{UserID: userID.String(), Role: string(enums.UserRoleAdmin), Phone: "+254712345678"}, got)
	assert.Equal(t, userID, gotID)
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for role, want := range map[enums.UserRole]int{
		enums.UserRoleCitizen: http.StatusForbidden,
		enums.UserRoleAdmin:   http.StatusOK,
		"":                    http.StatusForbidden,
	} {
		t.Run(string(role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/issues", nil)
			req = req.WithContext(WithRole(req.Context(), string(role)))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code)
		})
	}
}
