package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qleroy/procure/internal/core/domain"
)

const (
	runKeyPrefix = "pipeline:run:"
	runKeyTTL    = 30 * 24 * time.Hour
)

// RedisLedger keeps per-partition stage completion markers in one hash per
// date. Re-running a stage overwrites its marker, mirroring the pipeline's
// overwrite semantics.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) MarkStage(ctx context.Context, p domain.Partition, stage string, rows int) error {
	key := runKeyPrefix + p.String()
	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, key, stage, rows, stage+"_at", time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, runKeyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisLedger) StageRows(ctx context.Context, p domain.Partition, stage string) (int, bool, error) {
	rows, err := l.client.HGet(ctx, runKeyPrefix+p.String(), stage).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rows, true, nil
}
