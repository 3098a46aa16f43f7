//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/platform/testkit/pgtest"
	"cartelera/internal/services/negcache/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS unfindable_urls (
    id             uuid PRIMARY KEY,
    url            text NOT NULL UNIQUE,
    title          text NOT NULL DEFAULT '',
    original_title text,
    reason         text NOT NULL,
    attempts       int NOT NULL DEFAULT 1,
    first_seen     timestamptz NOT NULL DEFAULT now(),
    last_seen      timestamptz NOT NULL DEFAULT now()
)`

func TestNegativeCacheRepo_Integration(t *testing.T) {
	dsn, stop := pgtest.StartPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := pgtest.OpenStore(t, ctx, dsn, schema)
	r := repokit.MustBind(NewPG(), st.PG)

	url := "https://src.example/ghost"

	// untouched url is a miss
	found, err := r.Touch(ctx, url)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if found {
		t.Fatalf("touch on unknown url reported found")
	}

	if err := r.Record(ctx, url, "Ghost Movie", "", domain.ReasonNoResults); err != nil {
		t.Fatalf("record: %v", err)
	}

	// concurrent re-records must converge on one row
	errc := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			errc <- r.Record(ctx, url, "Ghost Movie", "", domain.ReasonNoResults)
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-errc; err != nil {
			t.Fatalf("concurrent record: %v", err)
		}
	}

	found, err = r.Touch(ctx, url)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if !found {
		t.Fatalf("touch on recorded url reported missing")
	}

	e, err := r.Get(ctx, url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// 1 record + 4 re-records + 1 touch
	if e.Attempts != 6 {
		t.Fatalf("attempts = %d, want 6", e.Attempts)
	}
	if e.Reason != domain.ReasonNoResults {
		t.Fatalf("reason = %q", e.Reason)
	}

	entries, total, err := r.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("list = %d entries, total %d, want 1/1", len(entries), total)
	}

	if err := r.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, url); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second delete = %v, want not found", err)
	}
	if _, err := r.Get(ctx, url); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("get after delete = %v, want not found", err)
	}
}
