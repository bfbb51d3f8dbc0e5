package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
	"github.com/qleroy/procure/internal/port"
)

// Archiver copies one partition's artifacts into the archive through the
// injected storage-transfer capability.
type Archiver struct {
	aggregateRoot      string
	netDemandRoot      string
	supplierOrdersRoot string
	archiveRoot        string
	store              port.FileStore
	log                zerolog.Logger
}

func NewArchiver(aggregateRoot, netDemandRoot, supplierOrdersRoot, archiveRoot string, store port.FileStore, log zerolog.Logger) *Archiver {
	return &Archiver{
		aggregateRoot:      aggregateRoot,
		netDemandRoot:      netDemandRoot,
		supplierOrdersRoot: supplierOrdersRoot,
		archiveRoot:        archiveRoot,
		store:              store,
		log:                log,
	}
}

// Run transfers the date's aggregate, net-demand and supplier-order files
// into <archive>/<date>/, overwriting prior copies. Artifacts that were
// legitimately not produced (no supplier orders) are skipped; a transfer
// failure is fatal for the partition's stage.
func (a *Archiver) Run(ctx context.Context, p domain.Partition) error {
	dest := filepath.Join(a.archiveRoot, p.String())

	locals := []string{
		artifact.AggregatePath(a.aggregateRoot, p),
		artifact.NetDemandPath(a.netDemandRoot, p),
	}
	orderDir := filepath.Join(a.supplierOrdersRoot, p.String())
	entries, err := os.ReadDir(orderDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("archive %s: %w", p, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			locals = append(locals, filepath.Join(orderDir, e.Name()))
		}
	}

	archived := 0
	for _, local := range locals {
		if _, err := os.Stat(local); os.IsNotExist(err) {
			continue
		}
		remote := filepath.Join(dest, filepath.Base(local))
		if err := a.store.Put(ctx, local, remote); err != nil {
			return fmt.Errorf("archive %s: put %s: %w", p, filepath.Base(local), err)
		}
		archived++
	}

	a.log.Info().
		Str("date", p.String()).
		Int("files", archived).
		Str("dest", dest).
		Msg("artifacts archived")
	return nil
}
