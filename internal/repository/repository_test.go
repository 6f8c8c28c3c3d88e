package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"stocksync/internal/model"
	"stocksync/internal/syncer"
)

func sampleReport() model.RunReport {
	start := time.Now().UTC().Truncate(time.Millisecond)
	return model.RunReport{
		RunID:       uuid.New().String(),
		Marketplace: "seller",
		Account:     "test-" + uuid.New().String()[:8],
		StartedAt:   start,
		FinishedAt:  start.Add(3 * time.Second),
		Stocks:      10,
		NonEmpty:    4,
		Prices:      6,
	}
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestStatusStoreRoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ctx := context.Background()
	store := &StatusStore{Client: client}

	rep := sampleReport()
	defer client.Del(ctx, statusKey(rep.Marketplace, rep.Account))

	if err := store.Record(ctx, rep); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, ok, err := store.Last(ctx, rep.Marketplace, rep.Account)
	if err != nil || !ok {
		t.Fatalf("Last: ok=%v err=%v", ok, err)
	}
	if got.RunID != rep.RunID || got.Stocks != 10 || !got.StartedAt.Equal(rep.StartedAt) {
		t.Fatalf("got %+v", got)
	}
	if ttl := client.TTL(ctx, statusKey(rep.Marketplace, rep.Account)).Val(); ttl <= 0 {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestStatusStoreMissing(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	_, ok, err := (&StatusStore{Client: client}).Last(context.Background(), "seller", "nobody-"+uuid.New().String())
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestReportRepository(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}

	repo := &ReportRepository{DB: pool}
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	rep := sampleReport()
	rep.ErrorKind, rep.Error = "timeout", "request timed out"
	defer pool.Exec(ctx, "DELETE FROM sync_runs WHERE account = $1", rep.Account)

	if err := repo.Record(ctx, rep); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, ok, err := repo.Last(ctx, rep.Marketplace, rep.Account)
	if err != nil || !ok {
		t.Fatalf("Last: ok=%v err=%v", ok, err)
	}
	if got.RunID != rep.RunID || got.ErrorKind != "timeout" {
		t.Fatalf("got %+v", got)
	}

	_, ok, err = repo.Last(ctx, rep.Marketplace, "nobody-"+uuid.New().String())
	if err != nil || ok {
		t.Fatalf("missing account: ok=%v err=%v", ok, err)
	}
}

var (
	_ syncer.Recorder = (*ReportRepository)(nil)
	_ syncer.History  = (*ReportRepository)(nil)
	_ syncer.Recorder = (*StatusStore)(nil)
	_ syncer.History  = (*StatusStore)(nil)
)
