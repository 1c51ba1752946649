package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"supply-cart/internal/model"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func exportFixture() []model.Batch {
	at := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	mk := func(batchID, username string, n int) model.Batch {
		items := make([]model.SubmittedItem, n)
		for i := range items {
			items[i] = model.SubmittedItem{
				Username: username, ItemName: "Item", PurchaseLink: "link",
				Quantity: 1, UnitPrice: 100, TotalPrice: 100, BatchID: batchID,
			}
		}
		return model.Batch{
			SubmissionSummary: model.SubmissionSummary{
				Username: username, ItemCount: n, TotalAmount: int64(n) * 100, BatchID: batchID, SubmittedAt: at,
			},
			Items: items,
		}
	}
	return []model.Batch{mk("cccc0003", "bob", 1), mk("bbbb0002", "alice", 2), mk("aaaa0001", "alice", 3)}
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names
}

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()

	mockHistory := new(MockHistoryService)
	mockHistory.On("GetAllHistory", ctx).Return(exportFixture(), nil)

	mockStore := new(MockArchiveStore)
	mockStore.On("Save", ctx, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "exports/") && strings.HasSuffix(name, "_1.zip")
	}), mock.Anything).Return("/tmp/exports/x.zip", nil)

	service := NewExportService(mockHistory, mockStore, zerolog.Nop())

	// Selection order and duplicates do not matter; history order is kept.
	result, err := service.Export(ctx, []string{"aaaa0001", "cccc0003", "aaaa0001"})
	require.NoError(t, err)

	assert.Equal(t, "물품신청_선택항목.zip", result.Name)
	assert.Equal(t, 4, result.Records)
	assert.Equal(t, []string{
		"cccc0003_1.md",
		"aaaa0001_1.md", "aaaa0001_2.md", "aaaa0001_3.md",
	}, zipNames(t, result.Data))

	mockStore.AssertExpectations(t)
}

func TestExportService_Export_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty selection", func(t *testing.T) {
		mockHistory := new(MockHistoryService)
		service := NewExportService(mockHistory, nil, zerolog.Nop())

		_, err := service.Export(ctx, []string{" ", ""})
		assert.True(t, model.IsValidation(err))
		mockHistory.AssertNotCalled(t, "GetAllHistory")
	})

	t.Run("Unknown batch", func(t *testing.T) {
		mockHistory := new(MockHistoryService)
		mockHistory.On("GetAllHistory", ctx).Return(exportFixture(), nil)
		service := NewExportService(mockHistory, nil, zerolog.Nop())

		_, err := service.Export(ctx, []string{"aaaa0001", "zzzz9999"})
		assert.ErrorIs(t, err, model.ErrBatchNotFound)
	})

	t.Run("History unavailable", func(t *testing.T) {
		mockHistory := new(MockHistoryService)
		mockHistory.On("GetAllHistory", ctx).
			Return([]model.Batch{}, model.NewBackendError("load history", errors.New("timeout")))
		service := NewExportService(mockHistory, nil, zerolog.Nop())

		_, err := service.Export(ctx, []string{"aaaa0001"})
		assert.True(t, model.IsBackend(err))
	})
}

func TestExportService_Export_StoreFailureIgnored(t *testing.T) {
	ctx := context.Background()

	mockHistory := new(MockHistoryService)
	mockHistory.On("GetAllHistory", ctx).Return(exportFixture(), nil)

	mockStore := new(MockArchiveStore)
	mockStore.On("Save", ctx, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	service := NewExportService(mockHistory, mockStore, zerolog.Nop())

	result, err := service.Export(ctx, []string{"bbbb0002"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	mockStore.AssertExpectations(t)
}
