package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/repository"
)

// Store is the account cart query layer plus transactions.
type Store interface {
	AccountQueries
	InTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// Service picks the cart implementation for a session and runs the sign-in
// merge.
type Service struct {
	store    Store
	redis    *redis.Client
	guestTTL time.Duration
	logger   *slog.Logger
}

func NewService(store Store, client *redis.Client, guestTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		redis:    client,
		guestTTL: guestTTL,
		logger:   logger.With("service", "cart"),
	}
}

// Open returns the account cart for an identified shopper and the guest cart
// otherwise. The choice is made once; callers hold on to the result for the
// rest of the request.
func (s *Service) Open(session domain.CartSession) (domain.Cart, error) {
	if session.Identified() {
		return NewAccountCart(s.store, *session.OwnerID), nil
	}
	if session.GuestToken == "" {
		return nil, domain.Invalid("cart.open", "no cart session")
	}
	return s.Guest(session.GuestToken), nil
}

func (s *Service) Guest(token string) *GuestCart {
	return NewGuestCart(s.redis, token, s.guestTTL)
}

// Catalog exposes the store's catalog reads for pricing a cart.
func (s *Service) Catalog() CatalogQueries {
	return s.store
}

// Merge folds the guest cart into the owner's account cart and reports how
// many lines were merged. The guest copy is taken atomically, so only one of
// several concurrent merges sees it. If the account write fails the guest
// lines are put back.
func (s *Service) Merge(ctx context.Context, guestToken string, ownerID uuid.UUID) (int, error) {
	guest := s.Guest(guestToken)

	lines, err := guest.Take(ctx)
	if err != nil {
		return 0, domain.Internal(err, "cart.merge", "failed to read guest cart")
	}
	if len(lines) == 0 {
		return 0, nil
	}

	err = s.store.InTx(ctx, func(q repository.Querier) error {
		account := NewAccountCart(q, ownerID)
		for _, l := range lines {
			if _, err := account.AddLine(ctx, domain.AddLineParams{
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if restoreErr := guest.Restore(ctx, lines); restoreErr != nil {
			s.logger.Error("failed to restore guest cart after merge failure",
				"owner_id", ownerID,
				"lines", len(lines),
				"error", restoreErr,
			)
		}
		return 0, domain.Internal(err, "cart.merge", "failed to merge guest cart")
	}

	s.logger.Info("guest cart merged", "owner_id", ownerID, "lines", len(lines))
	return len(lines), nil
}
