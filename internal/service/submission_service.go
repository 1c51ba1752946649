package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"supply-cart/internal/cache"
	"supply-cart/internal/model"
	"supply-cart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// batchIDLength is the number of leading UUID characters used as a batch id.
const batchIDLength = 8

// submissionService implements SubmissionService.
type submissionService struct {
	submissionRepo repository.SubmissionRepository
	cache          *cache.ReadThrough
	logger         zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	newID    func() string
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	rt *cache.ReadThrough,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		cache:          rt,
		logger:         logger.With().Str("service", "submission").Logger(),
		inFlight:       make(map[string]struct{}),
		newID:          newBatchID,
	}
}

func newBatchID() string {
	return uuid.New().String()[:batchIDLength]
}

// SubmitCart moves snapshot into a new batch inside one transaction: the
// submitted items, then the summary, then deletion of exactly the snapshot's
// pending rows. A snapshot whose rows are already gone aborts with
// ErrStaleCart.
func (s *submissionService) SubmitCart(ctx context.Context, username string, snapshot []model.CartItem, idempotencyKey string) (*model.Batch, error) {
	// A retried request whose first attempt committed finds an empty cart,
	// so the key is resolved before the snapshot is validated.
	if idempotencyKey != "" {
		existing, err := s.findExisting(ctx, username, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info().
				Str("username", username).
				Str("batch_id", existing.BatchID).
				Msg("returning previously submitted batch for idempotency key")
			return existing, nil
		}
	}

	if err := validateSnapshot(username, snapshot); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("rejected submission")
		return nil, err
	}

	if !s.acquire(username) {
		s.logger.Warn().Str("username", username).Msg("submission already in progress")
		return nil, model.ErrSubmissionInFlight
	}
	defer s.release(username)

	batch, err := s.commit(ctx, username, snapshot, idempotencyKey)
	if err != nil {
		// Another instance may have committed the same key first.
		if idempotencyKey != "" && (errors.Is(err, model.ErrStaleCart) || model.IsBackend(err)) {
			if existing, findErr := s.findExisting(ctx, username, idempotencyKey); findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.cache.Invalidate(ctx,
		cache.CartKey(username),
		cache.HistoryKey(username),
		cache.AllHistoryKey,
	)

	s.logger.Info().
		Str("username", username).
		Str("batch_id", batch.BatchID).
		Int("item_count", batch.ItemCount).
		Int64("total_amount", batch.TotalAmount).
		Msg("cart submitted successfully")

	return batch, nil
}

func (s *submissionService) commit(ctx context.Context, username string, snapshot []model.CartItem, idempotencyKey string) (batch *model.Batch, err error) {
	batchID := s.newID()

	tx, err := s.submissionRepo.BeginTx(ctx)
	if err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Str("batch_id", batchID).Msg("failed to rollback transaction")
			}
		}
	}()

	items := make([]model.SubmittedItem, len(snapshot))
	ids := make([]int64, len(snapshot))
	for i, c := range snapshot {
		items[i] = model.SubmittedItem{
			Username:     username,
			ItemName:     c.ItemName,
			PurchaseLink: c.PurchaseLink,
			OptionName:   c.OptionName,
			Quantity:     c.Quantity,
			UnitPrice:    c.UnitPrice,
			TotalPrice:   c.TotalPrice,
			BatchID:      batchID,
		}
		ids[i] = c.ID
	}

	if err = s.submissionRepo.InsertItems(ctx, tx, items); err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}

	total, _ := model.SumTotals(snapshot)
	summary := model.SubmissionSummary{
		Username:    username,
		ItemCount:   len(snapshot),
		TotalAmount: total,
		BatchID:     batchID,
	}
	if idempotencyKey != "" {
		summary.IdempotencyKey = &idempotencyKey
	}

	if err = s.submissionRepo.InsertSummary(ctx, tx, &summary); err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}

	deleted, err := s.submissionRepo.DeleteCartItems(ctx, tx, username, ids)
	if err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}
	if deleted != int64(len(ids)) {
		s.logger.Warn().
			Str("username", username).
			Int("expected", len(ids)).
			Int64("deleted", deleted).
			Msg("cart changed since snapshot, aborting submission")
		err = model.ErrStaleCart
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}

	return &model.Batch{SubmissionSummary: summary, Items: items}, nil
}

// findExisting loads the batch stored for an idempotency key, or nil.
func (s *submissionService) findExisting(ctx context.Context, username, key string) (*model.Batch, error) {
	summary, err := s.submissionRepo.FindByIdempotencyKey(ctx, username, key)
	if err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}
	if summary == nil {
		return nil, nil
	}

	items, err := s.submissionRepo.ListItemsByBatchIDs(ctx, []string{summary.BatchID})
	if err != nil {
		return nil, model.NewBackendError("submit cart", err)
	}

	return &model.Batch{SubmissionSummary: *summary, Items: items}, nil
}

func (s *submissionService) acquire(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[username]; busy {
		return false
	}
	s.inFlight[username] = struct{}{}
	return true
}

func (s *submissionService) release(username string) {
	s.mu.Lock()
	delete(s.inFlight, username)
	s.mu.Unlock()
}

// validateSnapshot checks the snapshot before any write.
func validateSnapshot(username string, snapshot []model.CartItem) error {
	if len(snapshot) == 0 {
		return model.NewValidationError("items", "cart is empty")
	}

	for i, item := range snapshot {
		if item.Username != username {
			return model.NewValidationError("items", fmt.Sprintf("item %d belongs to another user", i))
		}
		if item.Quantity < 1 || item.UnitPrice < 0 || item.TotalPrice != item.Quantity*item.UnitPrice {
			return model.NewValidationError("items", fmt.Sprintf("item %d has an inconsistent total price", i))
		}
	}

	if _, ok := model.SumTotals(snapshot); !ok {
		return model.NewValidationError("items", "cart total is too large")
	}

	return nil
}
