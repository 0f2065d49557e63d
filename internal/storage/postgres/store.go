package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammCore/internal/model"
)

// Store provides Postgres persistence for pool events and state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertEvents inserts or updates engine event records keyed by sequence.
func (s *Store) UpsertEvents(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				seq, event_time, event_name, decoded, error, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (seq)
			DO UPDATE SET
				event_time = EXCLUDED.event_time,
				event_name = EXCLUDED.event_name,
				decoded = EXCLUDED.decoded,
				error = EXCLUDED.error,
				updated_at = now()
		`,
			int64(event.Seq),
			int64(event.Timestamp),
			event.EventName,
			[]byte(event.Decoded),
			event.Error,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolState inserts or updates the pool state snapshot.
func (s *Store) UpsertPoolState(ctx context.Context, state model.PoolState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_states (
			pool_address, asset_a, asset_b, reserve_a, reserve_b,
			last_update, price_a_cumulative, price_b_cumulative, total_shares,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (pool_address)
		DO UPDATE SET
			asset_a = EXCLUDED.asset_a,
			asset_b = EXCLUDED.asset_b,
			reserve_a = EXCLUDED.reserve_a,
			reserve_b = EXCLUDED.reserve_b,
			last_update = EXCLUDED.last_update,
			price_a_cumulative = EXCLUDED.price_a_cumulative,
			price_b_cumulative = EXCLUDED.price_b_cumulative,
			total_shares = EXCLUDED.total_shares,
			updated_at = now()
	`,
		state.Address,
		state.AssetA,
		state.AssetB,
		state.ReserveA,
		state.ReserveB,
		int64(state.LastUpdate),
		state.PriceACumulative,
		state.PriceBCumulative,
		state.TotalShares,
	)
	return err
}
