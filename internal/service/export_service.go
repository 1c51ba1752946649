package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"supply-cart/internal/archive"
	"supply-cart/internal/model"

	"github.com/rs/zerolog"
)

// exportService implements ExportService.
type exportService struct {
	history HistoryService
	store   archive.Store // optional
	logger  zerolog.Logger

	seq atomic.Uint64
	now func() time.Time
}

// NewExportService creates a new export service. store may be nil, in which
// case archives are only returned to the caller.
func NewExportService(history HistoryService, store archive.Store, logger zerolog.Logger) ExportService {
	return &exportService{
		history: history,
		store:   store,
		logger:  logger.With().Str("service", "export").Logger(),
		now:     time.Now,
	}
}

// Export packs the selected batches in history order. Selecting a batch more
// than once has no further effect.
func (s *exportService) Export(ctx context.Context, batchIDs []string) (*archive.Archive, error) {
	selected := make(map[string]bool, len(batchIDs))
	for _, id := range batchIDs {
		if id = strings.TrimSpace(id); id != "" {
			selected[id] = false
		}
	}
	if len(selected) == 0 {
		return nil, model.NewValidationError("batchIds", "select at least one batch")
	}

	all, err := s.history.GetAllHistory(ctx)
	if err != nil {
		return nil, err
	}

	batches := make([]model.Batch, 0, len(selected))
	for _, batch := range all {
		if _, ok := selected[batch.BatchID]; ok {
			selected[batch.BatchID] = true
			batches = append(batches, batch)
		}
	}

	for id, found := range selected {
		if !found {
			s.logger.Warn().Str("batch_id", id).Msg("export requested unknown batch")
			return nil, model.ErrBatchNotFound
		}
	}

	result, err := archive.Build(batches)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build export archive")
		return nil, err
	}

	s.logger.Info().
		Int("batch_count", len(batches)).
		Int("record_count", result.Records).
		Msg("export archive built")

	s.persist(ctx, result)

	return result, nil
}

// persist keeps a copy of the archive. Failures never fail the export.
func (s *exportService) persist(ctx context.Context, result *archive.Archive) {
	if s.store == nil {
		return
	}

	name := archive.ObjectName(s.now(), s.seq.Add(1))
	location, err := s.store.Save(ctx, name, result.Data)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to persist export archive")
		return
	}

	s.logger.Info().Str("location", location).Msg("export archive persisted")
}
