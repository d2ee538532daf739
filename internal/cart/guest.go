package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/manicvanity/storefront/internal/domain"
)

const (
	guestKeyPrefix  = "guest_cart:"
	maxWatchRetries = 5
)

// GuestCart keeps a guest's whole line list as one JSON value in Redis. Every
// write refreshes the TTL.
type GuestCart struct {
	client *redis.Client
	token  string
	ttl    time.Duration
}

var _ domain.Cart = (*GuestCart)(nil)

func NewGuestCart(client *redis.Client, token string, ttl time.Duration) *GuestCart {
	return &GuestCart{client: client, token: token, ttl: ttl}
}

func guestKey(token string) string {
	return guestKeyPrefix + token
}

func (g *GuestCart) Lines(ctx context.Context) ([]domain.CartLine, error) {
	data, err := g.client.GetEx(ctx, guestKey(g.token), g.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get guest cart: %w", err)
	}
	return decodeLines(data)
}

func (g *GuestCart) AddLine(ctx context.Context, params domain.AddLineParams) (domain.CartLine, error) {
	if params.Quantity < 1 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	var added domain.CartLine
	err := g.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		key := domain.NewLineKey(params.ProductID, params.VariantID)
		for i := range lines {
			if lines[i].Key() == key {
				lines[i].Quantity += params.Quantity
				added = lines[i]
				return lines, nil
			}
		}
		added = domain.CartLine{
			ID:             uuid.NewString(),
			ProductID:      params.ProductID,
			VariantID:      params.VariantID,
			Quantity:       params.Quantity,
			Name:           params.Name,
			UnitPriceCents: params.UnitPriceCents,
		}
		return append(lines, added), nil
	})
	return added, err
}

func (g *GuestCart) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	return g.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		i := indexOf(lines, lineID)
		if i < 0 {
			return nil, domain.ErrCartItemNotFound
		}
		if quantity <= 0 {
			return append(lines[:i], lines[i+1:]...), nil
		}
		lines[i].Quantity = quantity
		return lines, nil
	})
}

func (g *GuestCart) RemoveLine(ctx context.Context, lineID string) error {
	return g.SetQuantity(ctx, lineID, 0)
}

func (g *GuestCart) Clear(ctx context.Context) error {
	if err := g.client.Del(ctx, guestKey(g.token)).Err(); err != nil {
		return fmt.Errorf("redis delete guest cart: %w", err)
	}
	return nil
}

// Take removes and returns the guest cart in one step. A second caller racing
// on the same token gets an empty slice.
func (g *GuestCart) Take(ctx context.Context) ([]domain.CartLine, error) {
	data, err := g.client.GetDel(ctx, guestKey(g.token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel guest cart: %w", err)
	}
	return decodeLines(data)
}

// Restore merges lines back into the guest cart after a failed merge.
func (g *GuestCart) Restore(ctx context.Context, restored []domain.CartLine) error {
	return g.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		for _, r := range restored {
			merged := false
			for i := range lines {
				if lines[i].Key() == r.Key() {
					lines[i].Quantity += r.Quantity
					merged = true
					break
				}
			}
			if !merged {
				lines = append(lines, r)
			}
		}
		return lines, nil
	})
}

// mutate applies fn as a read-modify-write under WATCH, retrying when another
// writer touched the key in between.
func (g *GuestCart) mutate(ctx context.Context, fn func([]domain.CartLine) ([]domain.CartLine, error)) error {
	key := guestKey(g.token)

	txf := func(tx *redis.Tx) error {
		lines := []domain.CartLine{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get guest cart: %w", err)
		default:
			if lines, err = decodeLines(data); err != nil {
				return err
			}
		}

		next, err := fn(lines)
		if err != nil {
			return err
		}

		var encoded []byte
		if len(next) > 0 {
			if encoded, err = json.Marshal(next); err != nil {
				return fmt.Errorf("marshal guest cart: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, encoded, g.ttl)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := g.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return domain.Errorf(domain.ECONFLICT, "cart.guest", "cart was modified concurrently, please retry")
}

func decodeLines(data []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal guest cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func indexOf(lines []domain.CartLine, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
