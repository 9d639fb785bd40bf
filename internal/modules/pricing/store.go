// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dishpatch/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetEstimateConfig(ctx context.Context, restaurantID types.ID) (EstimateConfig, error) {
	row := s.db.QueryRow(ctx, `
		SELECT restaurant_id, base_time, per_km_time, busy_time_add, updated_at
		FROM delivery_time_estimates
		WHERE restaurant_id = $1`, string(restaurantID),
	)

	var cfg EstimateConfig
	err := row.Scan(&cfg.RestaurantID, &cfg.BaseTime, &cfg.PerKmTime, &cfg.BusyTimeAdd, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EstimateConfig{}, ErrNotFound
	}
	if err != nil {
		return EstimateConfig{}, err
	}
	return cfg, nil
}

// UpsertEstimateConfig keeps at most one row per restaurant.
func (s *Store) UpsertEstimateConfig(ctx context.Context, cfg EstimateConfig) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO delivery_time_estimates (restaurant_id, base_time, per_km_time, busy_time_add, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (restaurant_id) DO UPDATE
		SET base_time = EXCLUDED.base_time,
		    per_km_time = EXCLUDED.per_km_time,
		    busy_time_add = EXCLUDED.busy_time_add,
		    updated_at = EXCLUDED.updated_at`,
		string(cfg.RestaurantID), cfg.BaseTime, cfg.PerKmTime, cfg.BusyTimeAdd, cfg.UpdatedAt,
	)
	return err
}
