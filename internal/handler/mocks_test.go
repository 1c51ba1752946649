package handler

import (
	"context"
	"net/http"

	"supply-cart/internal/archive"
	"supply-cart/internal/middleware"
	"supply-cart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) LoadCart(ctx context.Context, username string) ([]model.CartItem, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, username string, input model.CartItemInput) (*model.CartItem, error) {
	args := m.Called(ctx, username, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, username string, index int) error {
	args := m.Called(ctx, username, index)
	return args.Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockSubmissionService is a mock implementation of SubmissionService.
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) SubmitCart(ctx context.Context, username string, snapshot []model.CartItem, idempotencyKey string) (*model.Batch, error) {
	args := m.Called(ctx, username, snapshot, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Batch), args.Error(1)
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

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, username, password, name string) (*model.User, error) {
	args := m.Called(ctx, username, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) IsAdmin(username string) bool {
	args := m.Called(username)
	return args.Bool(0)
}

// MockExportService is a mock implementation of ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, batchIDs []string) (*archive.Archive, error) {
	args := m.Called(ctx, batchIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*archive.Archive), args.Error(1)
}

// asUser attaches an authenticated user to req.
func asUser(req *http.Request, username string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), &model.User{Username: username, Name: username}))
}

// withURLParam sets a chi route parameter on req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
