package service

import (
	"context"

	"supply-cart/internal/cache"
	"supply-cart/internal/model"
	"supply-cart/internal/repository"

	"github.com/rs/zerolog"
)

// historyService implements HistoryService.
type historyService struct {
	submissionRepo repository.SubmissionRepository
	cache          *cache.ReadThrough
	logger         zerolog.Logger
}

// NewHistoryService creates a new history service.
func NewHistoryService(submissionRepo repository.SubmissionRepository, rt *cache.ReadThrough, logger zerolog.Logger) HistoryService {
	return &historyService{
		submissionRepo: submissionRepo,
		cache:          rt,
		logger:         logger.With().Str("service", "history").Logger(),
	}
}

func (s *historyService) GetHistory(ctx context.Context, username string) ([]model.Batch, error) {
	return s.load(ctx, cache.HistoryKey(username), username)
}

func (s *historyService) GetAllHistory(ctx context.Context) ([]model.Batch, error) {
	return s.load(ctx, cache.AllHistoryKey, "")
}

func (s *historyService) load(ctx context.Context, key, username string) ([]model.Batch, error) {
	batches, err := cache.Load(ctx, s.cache, key, func(ctx context.Context) ([]model.Batch, error) {
		return s.fetch(ctx, username)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to load history")
		return []model.Batch{}, model.NewBackendError("load history", err)
	}
	if batches == nil {
		batches = []model.Batch{}
	}
	return batches, nil
}

// fetch reads the summaries and then every listed batch's items in a single
// query, grouping items under their summary.
func (s *historyService) fetch(ctx context.Context, username string) ([]model.Batch, error) {
	summaries, err := s.submissionRepo.ListSummaries(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return []model.Batch{}, nil
	}

	batchIDs := make([]string, len(summaries))
	for i, summary := range summaries {
		batchIDs[i] = summary.BatchID
	}

	items, err := s.submissionRepo.ListItemsByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]model.SubmittedItem, len(summaries))
	for _, item := range items {
		grouped[item.BatchID] = append(grouped[item.BatchID], item)
	}

	batches := make([]model.Batch, len(summaries))
	for i, summary := range summaries {
		batchItems := grouped[summary.BatchID]
		if batchItems == nil {
			batchItems = []model.SubmittedItem{}
		}
		batches[i] = model.Batch{SubmissionSummary: summary, Items: batchItems}

		if !batches[i].Consistent() {
			s.logger.Error().
				Str("batch_id", summary.BatchID).
				Str("username", summary.Username).
				Int("item_count", summary.ItemCount).
				Int("items_found", len(batchItems)).
				Int64("total_amount", summary.TotalAmount).
				Msg("batch integrity violation: summary disagrees with items")
		}
	}

	return batches, nil
}
