package service

import (
	"context"

	"supply-cart/internal/archive"
	"supply-cart/internal/model"
)

// CartService defines operations on a user's pending cart.
type CartService interface {
	// LoadCart retrieves the user's pending items ordered by add time. On a
	// store failure it returns an empty cart together with a BackendError.
	LoadCart(ctx context.Context, username string) ([]model.CartItem, error)

	// AddItem validates the raw input and appends a pending item.
	AddItem(ctx context.Context, username string, input model.CartItemInput) (*model.CartItem, error)

	// RemoveItem deletes the item at index of the current cart. An index
	// outside the cart is ignored.
	RemoveItem(ctx context.Context, username string, index int) error

	// ClearCart deletes every pending item of the user.
	ClearCart(ctx context.Context, username string) error
}

// SubmissionService defines batch submission of a cart.
type SubmissionService interface {
	// SubmitCart moves snapshot into a new batch. A non-empty idempotencyKey
	// that was already used by username returns the earlier batch.
	SubmitCart(ctx context.Context, username string, snapshot []model.CartItem, idempotencyKey string) (*model.Batch, error)
}

// HistoryService defines read access to submitted batches.
type HistoryService interface {
	// GetHistory retrieves the user's batches newest first.
	GetHistory(ctx context.Context, username string) ([]model.Batch, error)

	// GetAllHistory retrieves every user's batches newest first.
	GetAllHistory(ctx context.Context) ([]model.Batch, error)
}

// AuthService defines credential checks and account provisioning.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	CreateUser(ctx context.Context, username, password, name string) (*model.User, error)
	IsAdmin(username string) bool
}

// ExportService defines batch export for the administrator.
type ExportService interface {
	Export(ctx context.Context, batchIDs []string) (*archive.Archive, error)
}
