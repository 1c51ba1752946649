package repository

import (
	"context"
	"fmt"

	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed pending cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListByUser retrieves a user's pending items ordered by add time ascending.
// Ties on added_date fall back to insertion order.
func (r *cartRepository) ListByUser(ctx context.Context, username string) ([]model.CartItem, error) {
	query := `
		SELECT id, username, item_name, purchase_link, option_name,
		       quantity, unit_price, total_price, added_date
		FROM pending_cart
		WHERE username = $1
		ORDER BY added_date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to query pending cart")
		return nil, fmt.Errorf("failed to query pending cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.Username,
			&item.ItemName,
			&item.PurchaseLink,
			&item.OptionName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.AddedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan pending cart row")
			return nil, fmt.Errorf("failed to scan pending cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating pending cart rows")
		return nil, fmt.Errorf("error iterating pending cart: %w", err)
	}

	return items, nil
}

// Insert adds a pending item. added_date is assigned by the database.
func (r *cartRepository) Insert(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO pending_cart (username, item_name, purchase_link, option_name,
		                          quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, added_date
	`

	err := r.pool.QueryRow(ctx, query,
		item.Username,
		item.ItemName,
		item.PurchaseLink,
		item.OptionName,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
	).Scan(&item.ID, &item.AddedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("username", item.Username).
			Str("item_name", item.ItemName).
			Msg("failed to insert pending cart item")
		return fmt.Errorf("failed to insert pending cart item: %w", err)
	}

	r.logger.Debug().
		Int64("item_id", item.ID).
		Str("username", item.Username).
		Msg("pending cart item inserted")

	return nil
}

func (r *cartRepository) DeleteByID(ctx context.Context, username string, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pending_cart WHERE id = $1 AND username = $2`, id, username)
	if err != nil {
		r.logger.Error().Err(err).Int64("item_id", id).Str("username", username).Msg("failed to delete pending cart item")
		return false, fmt.Errorf("failed to delete pending cart item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, username string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pending_cart WHERE username = $1`, username)
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to clear pending cart")
		return 0, fmt.Errorf("failed to clear pending cart: %w", err)
	}

	r.logger.Debug().
		Str("username", username).
		Int64("deleted", tag.RowsAffected()).
		Msg("pending cart cleared")

	return tag.RowsAffected(), nil
}
