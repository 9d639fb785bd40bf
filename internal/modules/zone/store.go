// README: Zone store backed by PostgreSQL; polygons persisted as JSONB.
package zone

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dishpatch/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, z *Zone) error {
	poly, err := json.Marshal(z.Polygon)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO delivery_zones (
			id, restaurant_id, name, polygon, delivery_fee, min_order_amount,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(z.ID), string(z.RestaurantID), z.Name, poly,
		z.DeliveryFee, z.MinOrderAmount, z.IsActive, z.CreatedAt, z.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Zone, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, restaurant_id, name, polygon, delivery_fee, min_order_amount,
		       is_active, created_at, updated_at
		FROM delivery_zones
		WHERE id = $1`, string(id),
	)
	return scanZone(row)
}

func (s *PGStore) ListByRestaurant(ctx context.Context, restaurantID types.ID) ([]Zone, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, restaurant_id, name, polygon, delivery_fee, min_order_amount,
		       is_active, created_at, updated_at
		FROM delivery_zones
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, string(restaurantID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, z *Zone) error {
	poly, err := json.Marshal(z.Polygon)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE delivery_zones
		SET name = $2, polygon = $3, delivery_fee = $4, min_order_amount = $5,
		    is_active = $6, updated_at = $7
		WHERE id = $1`,
		string(z.ID), z.Name, poly, z.DeliveryFee, z.MinOrderAmount, z.IsActive, z.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM delivery_zones WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanZone(row pgx.Row) (*Zone, error) {
	var z Zone
	var poly []byte
	err := row.Scan(
		&z.ID, &z.RestaurantID, &z.Name, &poly, &z.DeliveryFee,
		&z.MinOrderAmount, &z.IsActive, &z.CreatedAt, &z.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(poly, &z.Polygon); err != nil {
		return nil, err
	}
	return &z, nil
}
