package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/qleroy/procure/internal/core/domain"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLedger_MarkAndRead(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	p, err := domain.ParsePartition("2099-01-01")
	if err != nil {
		t.Fatal(err)
	}
	key := "pipeline:run:" + p.String()
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	ledger := NewRedisLedger(client)
	if err := ledger.MarkStage(ctx, p, "aggregate", 42); err != nil {
		t.Fatalf("MarkStage: %v", err)
	}

	rows, ok, err := ledger.StageRows(ctx, p, "aggregate")
	if err != nil {
		t.Fatalf("StageRows: %v", err)
	}
	if !ok || rows != 42 {
		t.Errorf("StageRows = %d, %v, want 42, true", rows, ok)
	}

	// Re-running a stage overwrites the marker.
	if err := ledger.MarkStage(ctx, p, "aggregate", 7); err != nil {
		t.Fatalf("MarkStage: %v", err)
	}
	rows, ok, _ = ledger.StageRows(ctx, p, "aggregate")
	if !ok || rows != 7 {
		t.Errorf("StageRows after re-run = %d, %v, want 7, true", rows, ok)
	}

	// Unknown stage reads back as absent, not as an error.
	_, ok, err = ledger.StageRows(ctx, p, "never_ran")
	if err != nil {
		t.Fatalf("StageRows: %v", err)
	}
	if ok {
		t.Error("unknown stage reported present")
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 {
		t.Errorf("ttl = %v, want a positive expiry", ttl)
	}
}
