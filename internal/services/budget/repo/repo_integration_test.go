//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"cartelera/internal/modkit/repokit"
	"cartelera/internal/platform/testkit/pgtest"
)

const schema = `
CREATE TABLE IF NOT EXISTS api_call_counters (
    id             uuid PRIMARY KEY,
    service_name   text NOT NULL,
    day            date NOT NULL,
    call_count     bigint NOT NULL DEFAULT 0,
    last_called_at timestamptz NOT NULL DEFAULT now(),
    UNIQUE (service_name, day)
)`

func TestCallCounterRepo_Integration(t *testing.T) {
	dsn, stop := pgtest.StartPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := pgtest.OpenStore(t, ctx, dsn, schema)
	r := repokit.MustBind(NewPG(), st.PG)

	// hammer one counter from many goroutines; the upsert must not lose any
	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				errs <- r.Increment(ctx, "tmdb")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	total, err := r.Total(ctx, "tmdb")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != workers*perWorker {
		t.Fatalf("total = %d, want %d", total, workers*perWorker)
	}

	counters, err := r.DailyCounts(ctx, "tmdb", 7)
	if err != nil {
		t.Fatalf("daily counts: %v", err)
	}
	if len(counters) != 1 {
		t.Fatalf("daily rows = %d, want 1", len(counters))
	}
	if counters[0].CallCount != workers*perWorker {
		t.Fatalf("day count = %d, want %d", counters[0].CallCount, workers*perWorker)
	}

	// an unrelated service stays at zero
	other, err := r.Total(ctx, "elsewhere")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if other != 0 {
		t.Fatalf("unrelated service total = %d, want 0", other)
	}
}
