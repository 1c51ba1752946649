package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"supply-cart/internal/cache"
	"supply-cart/internal/model"
	"supply-cart/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	cache    *cache.ReadThrough
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, rt *cache.ReadThrough, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		cache:    rt,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) LoadCart(ctx context.Context, username string) ([]model.CartItem, error) {
	items, err := cache.Load(ctx, s.cache, cache.CartKey(username), func(ctx context.Context) ([]model.CartItem, error) {
		return s.cartRepo.ListByUser(ctx, username)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to load cart")
		return []model.CartItem{}, model.NewBackendError("load cart", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

func (s *cartService) AddItem(ctx context.Context, username string, input model.CartItemInput) (*model.CartItem, error) {
	item, err := s.buildItem(username, input)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("rejected cart item")
		return nil, err
	}

	if err := s.cartRepo.Insert(ctx, item); err != nil {
		return nil, model.NewBackendError("add cart item", err)
	}

	s.cache.Invalidate(ctx, cache.CartKey(username))

	s.logger.Info().
		Str("username", username).
		Int64("item_id", item.ID).
		Str("item_name", item.ItemName).
		Str("option", item.Option()).
		Int64("total_price", item.TotalPrice).
		Msg("cart item added")

	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, username string, index int) error {
	// Resolve the index against the store, not a possibly stale cached view.
	items, err := s.cartRepo.ListByUser(ctx, username)
	if err != nil {
		return model.NewBackendError("remove cart item", err)
	}

	if index < 0 || index >= len(items) {
		s.logger.Debug().
			Str("username", username).
			Int("index", index).
			Int("cart_size", len(items)).
			Msg("remove index out of range, ignoring")
		return nil
	}

	target := items[index]
	if _, err := s.cartRepo.DeleteByID(ctx, username, target.ID); err != nil {
		return model.NewBackendError("remove cart item", err)
	}

	s.cache.Invalidate(ctx, cache.CartKey(username))

	s.logger.Info().Str("username", username).Int64("item_id", target.ID).Msg("cart item removed")
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, username string) error {
	n, err := s.cartRepo.DeleteByUser(ctx, username)
	if err != nil {
		return model.NewBackendError("clear cart", err)
	}

	s.cache.Invalidate(ctx, cache.CartKey(username))

	s.logger.Info().Str("username", username).Int64("removed", n).Msg("cart cleared")
	return nil
}

// buildItem validates input and derives the stored item.
func (s *cartService) buildItem(username string, input model.CartItemInput) (*model.CartItem, error) {
	itemName := strings.TrimSpace(input.ItemName)
	if itemName == "" {
		return nil, model.NewValidationError("itemName", "item name is required")
	}

	purchaseLink := strings.TrimSpace(input.PurchaseLink)
	if purchaseLink == "" {
		return nil, model.NewValidationError("purchaseLink", "purchase link is required")
	}

	quantity, err := parseAmount("quantity", string(input.Quantity))
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, model.NewValidationError("quantity", "quantity must be at least 1")
	}

	unitPrice, err := parseAmount("unitPrice", string(input.UnitPrice))
	if err != nil {
		return nil, err
	}
	if unitPrice < 0 {
		return nil, model.NewValidationError("unitPrice", "unit price cannot be negative")
	}

	if unitPrice > 0 && quantity > model.MaxItemTotal/unitPrice {
		return nil, model.NewValidationError("unitPrice", "total price is too large")
	}

	item := &model.CartItem{
		Username:     username,
		ItemName:     itemName,
		PurchaseLink: purchaseLink,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   quantity * unitPrice,
	}
	if option := strings.TrimSpace(input.OptionName); option != "" {
		item.OptionName = &option
	}

	return item, nil
}

// parseAmount parses a whole number typed by a user, accepting "," as a
// thousands separator.
func parseAmount(field, raw string) (int64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return 0, model.NewValidationError(field, field+" is required")
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, model.NewValidationError(field, field+" is too large")
		}
		return 0, model.NewValidationError(field, field+" must be a whole number")
	}

	return n, nil
}
