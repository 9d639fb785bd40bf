// README: Dispatch service tracks courier availability and picks the nearest candidate.
package dispatch

import (
	"context"
	"errors"

	"dishpatch/internal/config"
	"dishpatch/internal/types"
)

var (
	ErrNoCouriers = errors.New("no couriers available")
	ErrBadRequest = errors.New("bad request")
)

type GeoStore interface {
	Add(ctx context.Context, id types.ID, pos types.Point) error
	Remove(ctx context.Context, id types.ID) error
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Courier, error)
}

type Service struct {
	store GeoStore
	cfg   config.DispatchConfig
}

func NewService(store GeoStore, cfg config.DispatchConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// SetAvailable adds the courier to the dispatch pool at their position.
func (s *Service) SetAvailable(ctx context.Context, id types.ID, pos types.Point) error {
	if id == "" || !pos.Valid() {
		return ErrBadRequest
	}
	return s.store.Add(ctx, id, pos)
}

func (s *Service) SetUnavailable(ctx context.Context, id types.ID) error {
	if id == "" {
		return ErrBadRequest
	}
	return s.store.Remove(ctx, id)
}

// UpdateLocation refreshes a courier's position. In the GEO set an
// update and an insert are the same operation.
func (s *Service) UpdateLocation(ctx context.Context, id types.ID, pos types.Point) error {
	return s.SetAvailable(ctx, id, pos)
}

// Pick returns the nearest available courier within the configured
// radius of the pickup point.
func (s *Service) Pick(ctx context.Context, pickup types.Point) (Courier, error) {
	if !pickup.Valid() {
		return Courier{}, ErrBadRequest
	}
	couriers, err := s.store.Nearby(ctx, pickup, s.cfg.RadiusKm)
	if err != nil {
		return Courier{}, err
	}
	if len(couriers) == 0 {
		return Courier{}, ErrNoCouriers
	}
	return pickNearest(couriers), nil
}
