package errors

import (
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ColumnName:     col,
		ConstraintName: constraint,
	}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation -> invalid input
		{"23502", ErrorCodeValidation},      // not null
		{"23514", ErrorCodeValidation},      // check
		{"22P02", ErrorCodeInvalidArgument}, // invalid text representation
		{"40P01", ErrorCodeDB},              // deadlock
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code, "", ""))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestIsDuplicateKeyThroughWrap(t *testing.T) {
	// Repos wrap pg errors before bubbling them; detection must survive wrapping
	err := FromPostgres(pg("23505", "", "movies_slug_key"), "insert movie")
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey should see through wrapping")
	}
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("CodeOf = %v", CodeOf(err))
	}
}

func TestAttachFieldFromPg(t *testing.T) {
	withCol := AttachFieldFromPg(Wrap(pg("23502", "slug", ""), ErrorCodeValidation, "oops"))
	e, ok := As(withCol)
	if !ok || e.Field() != "slug" {
		t.Fatalf("AttachFieldFromPg column name failed: %+v", e)
	}

	// fallback to last token of constraint
	wrapped := Wrap(pg("23505", "", "movies_tmdb_id"), ErrorCodeDuplicateKey, "dup")
	e2, ok := As(AttachFieldFromPg(wrapped))
	if !ok || e2.Field() != "id" {
		t.Fatalf("AttachFieldFromPg constraint token failed: %+v", e2)
	}

	// non-pg error returned as-is
	other := Wrap(stderrs.New("x"), ErrorCodeDB, "wrap")
	if out := AttachFieldFromPg(other); out != other {
		t.Fatalf("AttachFieldFromPg changed non-pg error")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(pg("40001", "", "")) {
		t.Fatalf("serialization failure should be retryable")
	}
	if !IsRetryable(pg("40P01", "", "")) {
		t.Fatalf("deadlock should be retryable")
	}
	if IsRetryable(pg("23505", "", "")) {
		t.Fatalf("unique violation should not be retryable")
	}
	if IsRetryable(stderrs.New("nope")) {
		t.Fatalf("plain error should not be retryable")
	}
	if !IsRetryable(stderrs.New("ERROR: deadlock detected")) {
		t.Fatalf("text fallback should match deadlock")
	}
}
