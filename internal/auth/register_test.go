package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/security"
)

func newRegisterTestService(t *testing.T, repo *stubUserRepository) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner:       stubTxRunner{},
		UserRepo:       repo,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func sampleRegisterRequest(phone, idNumber string) RegisterRequest {
	return RegisterRequest{
		FullName: " Kevin Mwangi ",
		Phone:    phone,
		IDNumber: idNumber,
		Password: "secret123",
	}
}

func TestRegisterNormalizesPhoneAndHashesPassword(t *testing.T) {
	repo := newStubUserRepository()
	svc := newRegisterTestService(t, repo)

	user, err := svc.Register(context.Background(), sampleRegisterRequest("0712 345 678", "30111222"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Phone != "+254712345678" {
		t.Fatalf("expected normalized phone, got %q", user.Phone)
	}
	if user.FullName != "Kevin Mwangi" || user.Role != enums.UserRoleCitizen {
		t.Fatalf("unexpected user %+v", user)
	}
	stored := repo.created
	if stored == nil || stored.PasswordHash == "secret123" {
		t.Fatal("expected a hashed password to be stored")
	}
	ok, err := security.VerifyPassword("secret123", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterRejectsDuplicatePhoneInEitherForm(t *testing.T) {
	repo := newStubUserRepository()
	svc := newRegisterTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, sampleRegisterRequest("0712345678", "30111222")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	for _, candidate := range []string{"0712345678", "+254712345678"} {
		_, err := svc.Register(ctx, sampleRegisterRequest(candidate, "99999999"))
		if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
			t.Fatalf("expected conflict for %q, got %v", candidate, err)
		}
	}
}

func TestRegisterRejectsDuplicateIDNumber(t *testing.T) {
	repo := newStubUserRepository()
	svc := newRegisterTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, sampleRegisterRequest("0712345678", "30111222")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, sampleRegisterRequest("0722000000", "30111222"))
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	repo := newStubUserRepository()
	repo.createErr = errors.New("UNIQUE constraint failed: users.phone")
	svc := newRegisterTestService(t, repo)

	_, err := svc.Register(context.Background(), sampleRegisterRequest("0712345678", "30111222"))
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newRegisterTestService(t, newStubUserRepository())
	cases := []RegisterRequest{
		{FullName: "", Phone: "0712345678", IDNumber: "1", Password: "secret123"},
		{FullName: "A", Phone: "0712345678", IDNumber: " ", Password: "secret123"},
		{FullName: "A", Phone: "12", IDNumber: "1", Password: "secret123"},
		{FullName: "A", Phone: "0712345678", IDNumber: "1", Password: ""},
	}
	for _, req := range cases {
		if _, err := svc.Register(context.Background(), req); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestAdminRegisterAssignsAdminRole(t *testing.T) {
	repo := newStubUserRepository()
	svc, err := NewAdminRegisterService(RegisterServiceParams{TxRunner: stubTxRunner{}, UserRepo: repo})
	if err != nil {
		t.Fatalf("new admin register service: %v", err)
	}
	user, err := svc.Register(context.Background(), AdminRegisterRequest{
		FullName: "Ward Admin",
		Phone:    "0700111222",
		IDNumber: "20000001",
		Password: "admin-secret",
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if user.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestNewRegisterServiceRequiresDependencies(t *testing.T) {
	if _, err := NewRegisterService(RegisterServiceParams{UserRepo: newStubUserRepository()}); err == nil {
		t.Fatal("expected error without tx runner")
	}
	if _, err := NewRegisterService(RegisterServiceParams{TxRunner: stubTxRunner{}}); err == nil {
		t.Fatal("expected error without user repo")
	}
}
