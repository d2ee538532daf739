package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manicvanity/storefront/internal/repository"
)

// Store is the query layer plus a way to group queries into one transaction.
type Store interface {
	repository.Querier
	InTx(ctx context.Context, fn func(q repository.Querier) error) error
}

type pgStore struct {
	*repository.Queries
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{
		Queries: repository.New(pool),
		pool:    pool,
	}
}

func (s *pgStore) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	_, err := WithTx(ctx, s.pool, func(q *repository.Queries) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}

// IsNoRows reports whether err is the driver's "no rows" result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
