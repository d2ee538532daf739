package service

import (
	"encoding/json"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

func orderFromRow(row repository.Order) (*domain.Order, error) {
	order := &domain.Order{
		ID:               postgres.FromUUID(row.ID),
		OwnerID:          postgres.FromNullableUUID(row.OwnerID),
		SubtotalCents:    row.SubtotalCents,
		ShippingCents:    row.ShippingCents,
		TaxCents:         row.TaxCents,
		TotalCents:       row.TotalCents,
		Currency:         row.Currency,
		Status:           domain.OrderStatus(row.Status),
		StripeSessionID:  postgres.FromText(row.StripeSessionID),
		PaymentReference: postgres.FromText(row.PaymentReference),
		PayerEmail:       postgres.FromText(row.PayerEmail),
		CreatedAt:        postgres.FromTimestamptz(row.CreatedAt),
		UpdatedAt:        postgres.FromTimestamptz(row.UpdatedAt),
	}

	if len(row.TempCart) > 0 {
		if err := json.Unmarshal(row.TempCart, &order.TempCart); err != nil {
			return order, err
		}
	}
	return order, nil
}

func orderLineFromRow(row repository.OrderItem) domain.OrderLine {
	return domain.OrderLine{
		ID:        postgres.FromUUID(row.ID),
		ProductID: postgres.FromUUID(row.ProductID),
		VariantID: postgres.FromNullableUUID(row.VariantID),
		Quantity:  int(row.Qty),
		UnitCents: row.UnitCents,
		Name:      row.Name,
		SKU:       row.Sku,
	}
}
