package repository

import (
	"context"

	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines data access for staff accounts.
type UserRepository interface {
	// GetByUsername retrieves a user. It returns nil, nil when no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Create inserts a new user. Returns model.ErrUserExists on a duplicate username.
	Create(ctx context.Context, user *model.User) error
}

// CartRepository defines data access for the pending_cart table.
type CartRepository interface {
	// ListByUser retrieves a user's pending items ordered by add time ascending.
	ListByUser(ctx context.Context, username string) ([]model.CartItem, error)

	// Insert adds a pending item and fills in its ID and AddedAt.
	Insert(ctx context.Context, item *model.CartItem) error

	// DeleteByID deletes one pending item owned by username.
	// It reports whether a row was deleted.
	DeleteByID(ctx context.Context, username string, id int64) (bool, error)

	// DeleteByUser deletes every pending item owned by username.
	DeleteByUser(ctx context.Context, username string) (int64, error)
}

// SubmissionRepository defines data access for submitted_items and
// submission_summary. Writes run inside a caller-owned transaction.
type SubmissionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// InsertItems inserts submitted items within the provided transaction and
	// fills in their store-assigned ID, Status and SubmittedAt.
	InsertItems(ctx context.Context, tx pgx.Tx, items []model.SubmittedItem) error

	// InsertSummary inserts a batch summary within the provided transaction and
	// fills in its ID and SubmittedAt.
	InsertSummary(ctx context.Context, tx pgx.Tx, summary *model.SubmissionSummary) error

	// DeleteCartItems deletes the named pending items of username within the
	// provided transaction and returns how many rows were deleted.
	DeleteCartItems(ctx context.Context, tx pgx.Tx, username string, ids []int64) (int64, error)

	// FindByIdempotencyKey returns the summary previously stored for
	// (username, key), or nil, nil.
	FindByIdempotencyKey(ctx context.Context, username, key string) (*model.SubmissionSummary, error)

	// ListSummaries retrieves summaries newest first. An empty username lists
	// every user's summaries.
	ListSummaries(ctx context.Context, username string) ([]model.SubmissionSummary, error)

	// ListItemsByBatchIDs retrieves the submitted items of the given batches in
	// store order.
	ListItemsByBatchIDs(ctx context.Context, batchIDs []string) ([]model.SubmittedItem, error)
}
