package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/db"
	"github.com/depotcb/cbagent/internal/importer"
	"github.com/depotcb/cbagent/internal/repository"
)

// WriterFactory binds a snapshot writer to a transaction.
type WriterFactory func(tx db.DBTX) repository.SnapshotWriter

type importService struct {
	uow       db.UnitOfWork
	newWriter WriterFactory
	observer  UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, newWriter WriterFactory, observers ...UseCaseObserver) ImportService {
	if newWriter == nil {
		newWriter = func(tx db.DBTX) repository.SnapshotWriter {
			return repository.NewSQLiteSnapshotRepo(tx)
		}
	}
	return &importService{
		uow:       uow,
		newWriter: newWriter,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *importService) Import(ctx context.Context, filePath string) (*contract.ImportResult, error) {
	schema, err := importer.LoadSnapshotSchema(filePath)
	if err != nil {
		return nil, app.WrapError(app.ErrInvalidArgument, err, "loading snapshot file")
	}
	if schema.Source == "" {
		schema.Source = filepath.Base(filePath)
	}
	if errs := importer.ValidateSnapshotSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	snap, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting snapshot: %w", err)
	}
	return s.ImportSnapshot(ctx, snap)
}

// ImportSnapshot writes every row and bumps the table version in one
// transaction; a failure leaves the store untouched.
func (s *importService) ImportSnapshot(ctx context.Context, snap *importer.Snapshot) (result *contract.ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"snapshot_id":     snap.ID,
		"metric_rows":     len(snap.Metrics),
		"order_rows":      len(snap.Orders),
		"assortment_rows": len(snap.Assortment),
	}
	defer func() { observe(ctx, s.observer, "import", startedAt, fields, err) }()

	var version int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		w := s.newWriter(tx)
		if err := w.UpsertMetrics(ctx, snap.Metrics); err != nil {
			return err
		}
		if err := w.UpsertOrders(ctx, snap.Orders); err != nil {
			return err
		}
		if err := w.UpsertAssortment(ctx, snap.Assortment); err != nil {
			return err
		}
		v, err := w.BumpVersion(ctx)
		if err != nil {
			return err
		}
		version = v
		return w.RecordImport(ctx, repository.ImportRecord{
			ID:             snap.ID,
			Source:         snap.Source,
			TableVersion:   v,
			MetricRows:     len(snap.Metrics),
			OrderRows:      len(snap.Orders),
			AssortmentRows: len(snap.Assortment),
			Depots:         snap.Depots(),
			ImportedAt:     startedAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("importing snapshot %s: %w", snap.ID, err)
	}
	fields["table_version"] = version

	return &contract.ImportResult{
		SnapshotID:     snap.ID,
		TableVersion:   version,
		MetricRows:     len(snap.Metrics),
		OrderRows:      len(snap.Orders),
		AssortmentRows: len(snap.Assortment),
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("snapshot validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return app.NewError(app.ErrInvalidArgument, "%s", msg)
}
