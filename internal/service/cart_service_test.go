package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"supply-cart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_LoadCart_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	items := []model.CartItem{
		{ID: 1, Username: "alice", ItemName: "YogaMat", Quantity: 5, UnitPrice: 15000, TotalPrice: 75000},
	}

	mockRepo := new(MockCartRepository)
	mockRepo.On("ListByUser", mock.Anything, "alice").Return(items, nil).Once()

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	first, err := service.LoadCart(ctx, "alice")
	require.NoError(t, err)
	second, err := service.LoadCart(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, int64(75000), second[0].TotalPrice)
	mockRepo.AssertExpectations(t)
}

func TestCartService_LoadCart_BackendFailure(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("ListByUser", mock.Anything, "alice").Return(nil, errors.New("connection refused"))

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	items, err := service.LoadCart(ctx, "alice")

	require.Error(t, err)
	assert.True(t, model.IsBackend(err))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCartService_AddItem_Success(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("ListByUser", mock.Anything, "alice").Return([]model.CartItem{}, nil).Once()
	mockRepo.On("Insert", ctx, mock.MatchedBy(func(item *model.CartItem) bool {
		return item.Username == "alice" &&
			item.ItemName == "YogaMat" &&
			item.Option() == "Purple" &&
			item.Quantity == 5 &&
			item.UnitPrice == 15000 &&
			item.TotalPrice == 75000
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.CartItem).ID = 7
	}).Return(nil)

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	// Warm the cache so the add has something to invalidate.
	_, err := service.LoadCart(ctx, "alice")
	require.NoError(t, err)

	item, err := service.AddItem(ctx, "alice", model.CartItemInput{
		ItemName:     "YogaMat",
		PurchaseLink: "https://shop.example.com/mat",
		OptionName:   " Purple ",
		Quantity:     " 5 ",
		UnitPrice:    "15,000",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)

	added := *item
	mockRepo.On("ListByUser", mock.Anything, "alice").Return([]model.CartItem{added}, nil).Once()

	items, err := service.LoadCart(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "YogaMat", items[0].ItemName)

	mockRepo.AssertExpectations(t)
}

func TestCartService_AddItem_EmptyOptionStoredAsNull(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("Insert", ctx, mock.MatchedBy(func(item *model.CartItem) bool {
		return item.OptionName == nil
	})).Return(nil)

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	_, err := service.AddItem(ctx, "alice", model.CartItemInput{
		ItemName:     "Towel",
		PurchaseLink: "link",
		OptionName:   "   ",
		Quantity:     "1",
		UnitPrice:    "0",
	})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	valid := model.CartItemInput{
		ItemName:     "YogaMat",
		PurchaseLink: "link",
		Quantity:     "5",
		UnitPrice:    "15000",
	}

	tests := []struct {
		name   string
		mutate func(in *model.CartItemInput)
		field  string
	}{
		{
			name:   "Missing item name",
			mutate: func(in *model.CartItemInput) { in.ItemName = "  " },
			field:  "itemName",
		},
		{
			name:   "Missing purchase link",
			mutate: func(in *model.CartItemInput) { in.PurchaseLink = "" },
			field:  "purchaseLink",
		},
		{
			name:   "Missing quantity",
			mutate: func(in *model.CartItemInput) { in.Quantity = "" },
			field:  "quantity",
		},
		{
			name:   "Zero quantity",
			mutate: func(in *model.CartItemInput) { in.Quantity = "0" },
			field:  "quantity",
		},
		{
			name:   "Negative quantity",
			mutate: func(in *model.CartItemInput) { in.Quantity = "-3" },
			field:  "quantity",
		},
		{
			name:   "Non-numeric quantity",
			mutate: func(in *model.CartItemInput) { in.Quantity = "five" },
			field:  "quantity",
		},
		{
			name:   "Fractional unit price",
			mutate: func(in *model.CartItemInput) { in.UnitPrice = "1.5" },
			field:  "unitPrice",
		},
		{
			name:   "Negative unit price",
			mutate: func(in *model.CartItemInput) { in.UnitPrice = "-100" },
			field:  "unitPrice",
		},
		{
			name:   "Unit price out of range",
			mutate: func(in *model.CartItemInput) { in.UnitPrice = "99,999,999,999,999,999,999" },
			field:  "unitPrice",
		},
		{
			name: "Total overflows",
			mutate: func(in *model.CartItemInput) {
				in.Quantity = "2"
				in.UnitPrice = "9223372036854775807"
			},
			field: "unitPrice",
		},
		{
			name: "Single item at the int64 limit",
			mutate: func(in *model.CartItemInput) {
				in.Quantity = "1"
				in.UnitPrice = "9,223,372,036,854,775,807"
			},
			field: "unitPrice",
		},
		{
			name: "Total above the line limit",
			mutate: func(in *model.CartItemInput) {
				in.Quantity = "2"
				in.UnitPrice = "600,000,000,000"
			},
			field: "unitPrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCartRepository)
			rt, _ := newTestCache()
			service := NewCartService(mockRepo, rt, zerolog.Nop())

			input := valid
			tt.mutate(&input)

			item, err := service.AddItem(context.Background(), "alice", input)

			require.Error(t, err)
			assert.Nil(t, item)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			mockRepo.AssertNotCalled(t, "Insert")
		})
	}
}

func TestCartService_AddItem_BackendFailure(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("Insert", ctx, mock.Anything).Return(errors.New("connection refused"))

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	_, err := service.AddItem(ctx, "alice", model.CartItemInput{
		ItemName: "YogaMat", PurchaseLink: "link", Quantity: "1", UnitPrice: "1",
	})
	require.Error(t, err)
	assert.True(t, model.IsBackend(err))
}

func TestCartService_RemoveItem(t *testing.T) {
	items := []model.CartItem{
		{ID: 11, Username: "alice", ItemName: "YogaMat"},
		{ID: 12, Username: "alice", ItemName: "Towel"},
	}

	t.Run("Removes the item at index", func(t *testing.T) {
		ctx := context.Background()
		rt, _ := newTestCache()
		mockRepo := new(MockCartRepository)
		mockRepo.On("ListByUser", ctx, "alice").Return(items, nil)
		mockRepo.On("DeleteByID", ctx, "alice", int64(12)).Return(true, nil)

		service := NewCartService(mockRepo, rt, zerolog.Nop())

		require.NoError(t, service.RemoveItem(ctx, "alice", 1))
		mockRepo.AssertExpectations(t)
	})

	for _, index := range []int{-1, 2, 100} {
		t.Run("Out of range index is ignored", func(t *testing.T) {
			ctx := context.Background()
			rt, _ := newTestCache()
			mockRepo := new(MockCartRepository)
			mockRepo.On("ListByUser", ctx, "alice").Return(items, nil)

			service := NewCartService(mockRepo, rt, zerolog.Nop())

			require.NoError(t, service.RemoveItem(ctx, "alice", index))
			mockRepo.AssertNotCalled(t, "DeleteByID")
		})
	}

	t.Run("Resolves index against the store, not the cache", func(t *testing.T) {
		ctx := context.Background()
		rt, mem := newTestCache()
		mockRepo := new(MockCartRepository)
		mockRepo.On("ListByUser", ctx, "alice").Return(items, nil)
		mockRepo.On("DeleteByID", ctx, "alice", int64(11)).Return(true, nil)

		require.NoError(t, mem.Set(ctx, "cart:alice", []byte(`[{"id":99}]`), time.Minute))

		service := NewCartService(mockRepo, rt, zerolog.Nop())

		require.NoError(t, service.RemoveItem(ctx, "alice", 0))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Backend failure", func(t *testing.T) {
		ctx := context.Background()
		rt, _ := newTestCache()
		mockRepo := new(MockCartRepository)
		mockRepo.On("ListByUser", ctx, "alice").Return(nil, errors.New("timeout"))

		service := NewCartService(mockRepo, rt, zerolog.Nop())

		err := service.RemoveItem(ctx, "alice", 0)
		require.Error(t, err)
		assert.True(t, model.IsBackend(err))
	})
}

func TestCartService_ClearCart(t *testing.T) {
	ctx := context.Background()
	rt, mem := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("DeleteByUser", ctx, "alice").Return(int64(3), nil)

	require.NoError(t, mem.Set(ctx, "cart:alice", []byte(`[]`), time.Minute))

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	require.NoError(t, service.ClearCart(ctx, "alice"))
	assert.Equal(t, 0, mem.Len())
	mockRepo.AssertExpectations(t)
}

func TestCartService_ClearCart_BackendFailure(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestCache()

	mockRepo := new(MockCartRepository)
	mockRepo.On("DeleteByUser", ctx, "alice").Return(int64(0), errors.New("timeout"))

	service := NewCartService(mockRepo, rt, zerolog.Nop())

	err := service.ClearCart(ctx, "alice")
	require.Error(t, err)
	assert.True(t, model.IsBackend(err))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw      string
		expected int64
	}{
		{"15000", 15000},
		{"15,000", 15000},
		{" 1,234,567 ", 1234567},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, err := parseAmount("unitPrice", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}
