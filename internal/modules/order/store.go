// README: Order store backed by PostgreSQL with optimistic status updates.
package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

func (s *PGStore) Create(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO orders (
			id, restaurant_id, customer_id, courier_id, status, status_version,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			weight_kg, subtotal, coupon_code, discount_amount,
			estimated_cost, distance_km, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17
		)`,
		string(o.ID),
		string(o.RestaurantID),
		string(o.CustomerID),
		idPtr(o.CourierID),
		string(o.Status),
		o.StatusVersion,
		o.Pickup.Lat, o.Pickup.Lng,
		o.Dropoff.Lat, o.Dropoff.Lng,
		o.WeightKg, o.Subtotal, o.CouponCode, o.DiscountAmount,
		o.EstimatedCost, o.DistanceKm,
		o.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, restaurant_id, customer_id, courier_id, status, status_version,
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       weight_kg, subtotal, coupon_code, discount_amount,
		       estimated_cost, distance_km,
		       created_at, assigned_at, picked_up_at, delivered_at, cancelled_at, cancel_reason
		FROM orders
		WHERE id = $1`, string(id),
	)

	var o Order
	var courierID, couponCode, cancelReason sql.NullString
	var assignedAt, pickedUpAt, deliveredAt, cancelledAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.CustomerID, &courierID, &o.Status, &o.StatusVersion,
		&o.Pickup.Lat, &o.Pickup.Lng, &o.Dropoff.Lat, &o.Dropoff.Lng,
		&o.WeightKg, &o.Subtotal, &couponCode, &o.DiscountAmount,
		&o.EstimatedCost, &o.DistanceKm,
		&o.CreatedAt, &assignedAt, &pickedUpAt, &deliveredAt, &cancelledAt, &cancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if courierID.Valid {
		c := types.ID(courierID.String)
		o.CourierID = &c
	}
	if couponCode.Valid {
		o.CouponCode = &couponCode.String
	}
	if cancelReason.Valid {
		o.CancelReason = &cancelReason.String
	}
	o.AssignedAt = timePtr(assignedAt)
	o.PickedUpAt = timePtr(pickedUpAt)
	o.DeliveredAt = timePtr(deliveredAt)
	o.CancelledAt = timePtr(cancelledAt)
	return &o, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, courierID *types.ID, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    courier_id = COALESCE($2, courier_id),
		    cancel_reason = COALESCE($3, cancel_reason),
		    assigned_at = CASE WHEN $1 = 'assigned' THEN NOW() ELSE assigned_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		idPtr(courierID),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_state_events (
			order_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
