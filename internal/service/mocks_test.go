package service

import (
	"context"
	"time"

	"supply-cart/internal/archive"
	"supply-cart/internal/cache"
	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListByUser(ctx context.Context, username string) ([]model.CartItem, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, item *model.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByID(ctx context.Context, username string, id int64) (bool, error) {
	args := m.Called(ctx, username, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubmissionRepository) InsertItems(ctx context.Context, tx pgx.Tx, items []model.SubmittedItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockSubmissionRepository) InsertSummary(ctx context.Context, tx pgx.Tx, summary *model.SubmissionSummary) error {
	args := m.Called(ctx, tx, summary)
	return args.Error(0)
}

func (m *MockSubmissionRepository) DeleteCartItems(ctx context.Context, tx pgx.Tx, username string, ids []int64) (int64, error) {
	args := m.Called(ctx, tx, username, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) FindByIdempotencyKey(ctx context.Context, username, key string) (*model.SubmissionSummary, error) {
	args := m.Called(ctx, username, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionSummary), args.Error(1)
}

func (m *MockSubmissionRepository) ListSummaries(ctx context.Context, username string) ([]model.SubmissionSummary, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubmissionSummary), args.Error(1)
}

func (m *MockSubmissionRepository) ListItemsByBatchIDs(ctx context.Context, batchIDs []string) ([]model.SubmittedItem, error) {
	args := m.Called(ctx, batchIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubmittedItem), args.Error(1)
}

// MockHistoryService is a mock implementation of HistoryService.
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetHistory(ctx context.Context, username string) ([]model.Batch, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.Batch), args.Error(1)
}

func (m *MockHistoryService) GetAllHistory(ctx context.Context) ([]model.Batch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Batch), args.Error(1)
}

// MockArchiveStore is a mock implementation of archive.Store.
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

var _ archive.Store = (*MockArchiveStore)(nil)

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// newTestCache returns a read-through cache over an inspectable memory cache.
func newTestCache() (*cache.ReadThrough, *cache.MemoryCache) {
	mem := cache.NewMemoryCache()
	return cache.NewReadThrough(mem, time.Minute, zerolog.Nop()), mem
}

func strPtr(s string) *string { return &s }
