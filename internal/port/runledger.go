package port

import (
	"context"

	"github.com/qleroy/procure/internal/core/domain"
)

// RunLedger records per-partition stage completion so operators can tell
// which dates are fresh. Markers are overwritten on re-runs, matching the
// pipeline's overwrite semantics.
type RunLedger interface {
	// MarkStage records that stage completed for the partition with the given
	// output row count.
	MarkStage(ctx context.Context, p domain.Partition, stage string, rows int) error

	// StageRows returns the recorded row count for a stage, or ok=false if the
	// stage has not completed for the partition.
	StageRows(ctx context.Context, p domain.Partition, stage string) (rows int, ok bool, err error)
}
