package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgAuth "github.com/voo-ward/voo-citizen-backend/pkg/auth"
	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "voo-citizen",
	ExpirationMinutes: 30,
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func seededCitizen(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		FullName:     "Achieng Otieno",
		Phone:        "+254712345678",
		IDNumber:     "12345678",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleCitizen,
		IsActive:     true,
	}
}

func buildTestService(t *testing.T, repo *stubUserRepository) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func TestServiceLoginAcceptsLocalAndInternationalPhone(t *testing.T) {
	user := seededCitizen(t, "secret123")
	svc, sessions := buildTestService(t, newStubUserRepository(user))

	for _, input := range []string{"0712345678", "+254712345678", "254712345678"} {
		resp, err := svc.Login(context.Background(), LoginRequest{Phone: input, Password: "secret123"})
		if err != nil {
			t.Fatalf("login with %q: %v", input, err)
		}
		claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
		if err != nil {
			t.Fatalf("parse access token: %v", err)
		}
		if claims.UserID != user.ID || claims.Phone != user.Phone || claims.Role != enums.UserRoleCitizen {
			t.Fatalf("unexpected claims %+v", claims)
		}
		if claims.ID != sessions.accessID {
			t.Fatalf("token jti %q not bound to session %q", claims.ID, sessions.accessID)
		}
		if resp.RefreshToken != "refresh-"+sessions.accessID {
			t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
		}
		if !resp.Success || resp.User == nil || resp.User.Phone != user.Phone {
			t.Fatalf("unexpected response %+v", resp)
		}
	}
}

func TestServiceLoginRecordsLoginAndDeviceToken(t *testing.T) {
	user := seededCitizen(t, "secret123")
	repo := newStubUserRepository(user)
	svc, _ := buildTestService(t, repo)

	token := "  fcm-abc  "
	if _, err := svc.Login(context.Background(), LoginRequest{Phone: "0712345678", Password: "secret123", FCMToken: &token}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.lastLoginAt == nil {
		t.Fatal("expected last login to be stamped")
	}
	if user.FCMToken == nil || *user.FCMToken != "fcm-abc" {
		t.Fatalf("expected trimmed device token, got %v", user.FCMToken)
	}
}

func TestServiceSignInIssuesTokensForNewAccount(t *testing.T) {
	user := seededCitizen(t, "secret123")
	repo := newStubUserRepository(user)
	svc, sessions := buildTestService(t, repo)

	resp, err := svc.SignIn(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if resp.RefreshToken != "refresh-"+sessions.accessID || sessions.userID != user.ID {
		t.Fatalf("unexpected session binding %+v", resp)
	}
	if repo.lastLoginAt == nil {
		t.Fatal("expected last login to be stamped")
	}

	if _, err := svc.SignIn(context.Background(), uuid.New()); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}

	sessions.err = errors.New("redis down")
	if _, err := svc.SignIn(context.Background(), user.ID); !pkgerrors.Is(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error when session store fails, got %v", err)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := seededCitizen(t, "secret123")
	inactive := seededCitizen(t, "secret123")
	inactive.Phone = "+254700000001"
	inactive.IsActive = false
	svc, _ := buildTestService(t, newStubUserRepository(user, inactive))

	cases := []LoginRequest{
		{Phone: "0712345678", Password: "wrong"},
		{Phone: "0799999999", Password: "secret123"},
		{Phone: "   ", Password: "secret123"},
		{Phone: "0700000001", Password: "secret123"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
	}
}

func TestServiceLoginUpgradesWeakHash(t *testing.T) {
	user := seededCitizen(t, "secret123")
	repo := newStubUserRepository(user)
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Phone: "0712345678", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed == "" {
		t.Fatal("expected the hash to be upgraded")
	}
	ok, err := security.VerifyPassword("secret123", repo.rehashed)
	if err != nil || !ok {
		t.Fatalf("rehashed password does not verify: ok=%v err=%v", ok, err)
	}
}

func TestServiceProfileAndDeviceToken(t *testing.T) {
	user := seededCitizen(t, "secret123")
	svc, _ := buildTestService(t, newStubUserRepository(user))
	ctx := context.Background()

	profile, err := svc.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.ID != user.ID || profile.FullName != user.FullName {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := svc.Profile(ctx, uuid.New()); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	token := "device"
	if err := svc.UpdateDeviceToken(ctx, user.ID, &token); err != nil {
		t.Fatalf("update token: %v", err)
	}
	if !user.HasDeviceToken() {
		t.Fatal("expected device token to be stored")
	}
	blank := " "
	if err := svc.UpdateDeviceToken(ctx, user.ID, &blank); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if user.HasDeviceToken() {
		t.Fatal("expected blank token to clear the device token")
	}
	if err := svc.UpdateDeviceToken(ctx, uuid.Nil, &token); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
