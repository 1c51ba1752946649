package repository

import (
	"context"
	"errors"
	"fmt"

	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// submissionRepository implements the SubmissionRepository interface using PostgreSQL.
type submissionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewSubmissionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "submission").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *submissionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertItems inserts submitted items within the provided transaction.
// status and submitted_date are left to their column defaults.
func (r *submissionRepository) InsertItems(ctx context.Context, tx pgx.Tx, items []model.SubmittedItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO submitted_items (username, item_name, purchase_link, option_name,
		                             quantity, unit_price, total_price, batch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, submitted_date
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.Username,
			item.ItemName,
			item.PurchaseLink,
			item.OptionName,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.BatchID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		err := results.QueryRow().Scan(&items[i].ID, &items[i].Status, &items[i].SubmittedAt)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("batch_id", items[i].BatchID).
				Str("item_name", items[i].ItemName).
				Msg("failed to insert submitted item")
			return fmt.Errorf("failed to insert submitted item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("submitted items inserted")

	return nil
}

// InsertSummary inserts a batch summary within the provided transaction.
func (r *submissionRepository) InsertSummary(ctx context.Context, tx pgx.Tx, summary *model.SubmissionSummary) error {
	query := `
		INSERT INTO submission_summary (username, item_count, total_amount, batch_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submitted_date
	`

	err := tx.QueryRow(ctx, query,
		summary.Username,
		summary.ItemCount,
		summary.TotalAmount,
		summary.BatchID,
		summary.IdempotencyKey,
	).Scan(&summary.ID, &summary.SubmittedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("batch_id", summary.BatchID).
			Str("username", summary.Username).
			Msg("failed to insert submission summary")
		return fmt.Errorf("failed to insert submission summary: %w", err)
	}

	return nil
}

// DeleteCartItems deletes the named pending items of username within the
// provided transaction.
func (r *submissionRepository) DeleteCartItems(ctx context.Context, tx pgx.Tx, username string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM pending_cart WHERE username = $1 AND id = ANY($2)`, username, ids)
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to delete submitted cart items")
		return 0, fmt.Errorf("failed to delete submitted cart items: %w", err)
	}

	return tag.RowsAffected(), nil
}

// FindByIdempotencyKey returns the summary stored for (username, key).
func (r *submissionRepository) FindByIdempotencyKey(ctx context.Context, username, key string) (*model.SubmissionSummary, error) {
	query := `
		SELECT id, username, item_count, total_amount, batch_id, submitted_date, idempotency_key
		FROM submission_summary
		WHERE username = $1 AND idempotency_key = $2
	`

	var s model.SubmissionSummary
	err := r.pool.QueryRow(ctx, query, username, key).Scan(
		&s.ID,
		&s.Username,
		&s.ItemCount,
		&s.TotalAmount,
		&s.BatchID,
		&s.SubmittedAt,
		&s.IdempotencyKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("username", username).Msg("failed to query submission by idempotency key")
		return nil, fmt.Errorf("failed to query submission by idempotency key: %w", err)
	}

	return &s, nil
}

// ListSummaries retrieves summaries newest first.
func (r *submissionRepository) ListSummaries(ctx context.Context, username string) ([]model.SubmissionSummary, error) {
	query := `
		SELECT id, username, item_count, total_amount, batch_id, submitted_date, idempotency_key
		FROM submission_summary
		WHERE ($1::text = '' OR username = $1)
		ORDER BY submitted_date DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to query submission summaries")
		return nil, fmt.Errorf("failed to query submission summaries: %w", err)
	}
	defer rows.Close()

	summaries := []model.SubmissionSummary{}
	for rows.Next() {
		var s model.SubmissionSummary
		err := rows.Scan(
			&s.ID,
			&s.Username,
			&s.ItemCount,
			&s.TotalAmount,
			&s.BatchID,
			&s.SubmittedAt,
			&s.IdempotencyKey,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan submission summary row")
			return nil, fmt.Errorf("failed to scan submission summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating submission summary rows")
		return nil, fmt.Errorf("error iterating submission summaries: %w", err)
	}

	return summaries, nil
}

// ListItemsByBatchIDs retrieves the submitted items of the given batches.
func (r *submissionRepository) ListItemsByBatchIDs(ctx context.Context, batchIDs []string) ([]model.SubmittedItem, error) {
	if len(batchIDs) == 0 {
		return []model.SubmittedItem{}, nil
	}

	query := `
		SELECT id, username, item_name, purchase_link, option_name,
		       quantity, unit_price, total_price, batch_id, status, submitted_date
		FROM submitted_items
		WHERE batch_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, batchIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("batch_count", len(batchIDs)).Msg("failed to query submitted items")
		return nil, fmt.Errorf("failed to query submitted items: %w", err)
	}
	defer rows.Close()

	items := []model.SubmittedItem{}
	for rows.Next() {
		var item model.SubmittedItem
		err := rows.Scan(
			&item.ID,
			&item.Username,
			&item.ItemName,
			&item.PurchaseLink,
			&item.OptionName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.BatchID,
			&item.Status,
			&item.SubmittedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan submitted item row")
			return nil, fmt.Errorf("failed to scan submitted item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating submitted item rows")
		return nil, fmt.Errorf("error iterating submitted items: %w", err)
	}

	return items, nil
}
