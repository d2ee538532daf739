package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

type orderService struct {
	repo   repository.Querier
	logger *slog.Logger
}

// NewOrderService creates the owner-scoped order query surface.
func NewOrderService(repo repository.Querier, logger *slog.Logger) domain.OrderService {
	return &orderService{
		repo:   repo,
		logger: logger.With("service", "order"),
	}
}

// GetOrder returns an order with its lines. The lookup filters on both id
// and owner, so another shopper's order is indistinguishable from a missing
// one.
func (s *orderService) GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (*domain.Order, error) {
	const op = "order.get"

	row, err := s.repo.GetOrderForOwner(ctx, repository.GetOrderForOwnerParams{
		ID:      postgres.UUID(orderID),
		OwnerID: postgres.UUID(ownerID),
	})
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}

	order, err := orderFromRow(row)
	if err != nil {
		s.logger.Warn("order snapshot is unreadable", "order_id", orderID, "error", err)
	}

	items, err := s.repo.ListOrderItems(ctx, row.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order lines")
	}
	order.Lines = make([]domain.OrderLine, len(items))
	for i, item := range items {
		order.Lines[i] = orderLineFromRow(item)
	}

	return order, nil
}

// ListOrders returns the owner's orders, newest first, without lines.
func (s *orderService) ListOrders(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	rows, err := s.repo.ListOrdersByOwner(ctx, postgres.UUID(ownerID))
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := orderFromRow(row)
		if err != nil {
			s.logger.Warn("order snapshot is unreadable", "order_id", order.ID, "error", err)
		}
		order.TempCart = nil
		orders = append(orders, *order)
	}
	return orders, nil
}

// Reorder copies a past order's lines into the shopper's cart and returns
// how many lines were added. Paid orders use their materialized lines; a
// pending order falls back to its checkout snapshot.
func (s *orderService) Reorder(ctx context.Context, orderID, ownerID uuid.UUID, c domain.Cart) (int, error) {
	const op = "order.reorder"

	order, err := s.GetOrder(ctx, orderID, ownerID)
	if err != nil {
		return 0, err
	}

	params := make([]domain.AddLineParams, 0, len(order.Lines))
	for _, l := range order.Lines {
		params = append(params, domain.AddLineParams{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			Name:           l.Name,
			UnitPriceCents: l.UnitCents,
		})
	}
	if len(params) == 0 {
		for _, l := range order.TempCart {
			params = append(params, domain.AddLineParams{
				ProductID:      l.ProductID,
				VariantID:      l.VariantID,
				Quantity:       l.Quantity,
				Name:           l.Name,
				UnitPriceCents: l.UnitPrice,
			})
		}
	}
	if len(params) == 0 {
		return 0, domain.Invalid(op, "Order has no items to reorder")
	}

	for _, p := range params {
		if _, err := c.AddLine(ctx, p); err != nil {
			return 0, domain.WrapError(err, domain.ErrorCode(err), op, "failed to add order line to cart")
		}
	}

	s.logger.Info("order lines added to cart", "order_id", orderID, "owner_id", ownerID, "lines", len(params))
	return len(params), nil
}
