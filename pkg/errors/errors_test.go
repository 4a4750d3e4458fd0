package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusBadRequest, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsMatchesWrappedCode(t *testing.T) {
	base := New(CodeNotFound, "issue not found")
	wrapped := fmt.Errorf("load issue: %w", base)
	if !Is(wrapped, CodeNotFound) {
		t.Fatalf("expected wrapped error to match not found")
	}
	if Is(wrapped, CodeConflict) {
		t.Fatalf("expected conflict not to match")
	}
	if Is(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDiagnoseCollectsChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(CodeInternal, stdErrors.New("inner"), "persist issue"))
	d := Diagnose(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
	if d.Chain[1] != "*errors.Error" {
		t.Fatalf("unexpected chain %v", d.Chain)
	}
}

func TestDiagnoseReadsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key", TableName: "users"}
	d := Diagnose(fmt.Errorf("insert user: %w", pgErr))
	if d.SQLState != "23505" || d.Constraint != "users_phone_key" {
		t.Fatalf("postgres fields not collected: %+v", d)
	}

	fields := d.Fields()
	if fields["pg_table"] != "users" {
		t.Fatalf("expected pg_table field, got %v", fields)
	}
	if _, ok := fields["pg_column"]; ok {
		t.Fatalf("empty fields should be omitted")
	}
	if fields["error_code"] != string(CodeInternal) {
		t.Fatalf("untyped errors report internal, got %v", fields["error_code"])
	}
}

func TestDiagnoseNil(t *testing.T) {
	if d := Diagnose(nil); d.Message != "" || len(d.Fields()) != 0 {
		t.Fatalf("nil error should produce empty diagnostics, got %+v", d)
	}
}

func TestMetadataClientFault(t *testing.T) {
	if !MetadataFor(CodeNotFound).ClientFault {
		t.Fatalf("not found should be a client fault")
	}
	if MetadataFor(CodeDependency).ClientFault || MetadataFor(CodeInternal).ClientFault {
		t.Fatalf("server codes must not be client faults")
	}
	if MetadataFor(CodeInternal).ExposeMessage {
		t.Fatalf("internal messages must stay hidden")
	}
}

func TestNewfAndCodeOf(t *testing.T) {
	err := Newf(CodeValidation, "limit must be <= %d", 100)
	if err.Message() != "limit must be <= 100" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors map to internal")
	}
	if CodeOf(fmt.Errorf("wrap: %w", err)) != CodeValidation {
		t.Fatalf("wrapped code lost")
	}
}
