// README: Zone service: CRUD plus point-membership lookup.
package zone

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dishpatch/internal/modules/geo"
	"dishpatch/internal/types"
)

var (
	ErrNotFound   = errors.New("zone not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, z *Zone) error
	Get(ctx context.Context, id types.ID) (*Zone, error)
	// ListByRestaurant returns zones newest-first; Locate depends on
	// that order for its first-match rule.
	ListByRestaurant(ctx context.Context, restaurantID types.ID) ([]Zone, error)
	Update(ctx context.Context, z *Zone) error
	Delete(ctx context.Context, id types.ID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, z Zone) (*Zone, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	z.ID = types.ID(uuid.NewString())
	now := time.Now()
	z.CreatedAt = now
	z.UpdatedAt = now
	if err := s.store.Create(ctx, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Zone, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID types.ID) ([]Zone, error) {
	return s.store.ListByRestaurant(ctx, restaurantID)
}

func (s *Service) Update(ctx context.Context, id types.ID, z Zone) (*Zone, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	z.ID = existing.ID
	z.CreatedAt = existing.CreatedAt
	z.UpdatedAt = time.Now()
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return s.store.Delete(ctx, id)
}

// Locate returns the first active zone of the restaurant containing the
// point, in the store's newest-first order. No tie-break beyond
// first-match when zones overlap.
func (s *Service) Locate(ctx context.Context, restaurantID types.ID, p types.Point) (Membership, error) {
	if !p.Valid() {
		return Membership{}, ErrBadRequest
	}
	zones, err := s.store.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return Membership{}, err
	}
	for i := range zones {
		z := &zones[i]
		if !z.IsActive {
			continue
		}
		if geo.PointInPolygon(p, z.Polygon) {
			return Membership{InZone: true, Zone: z, Fee: z.DeliveryFee, MinOrder: z.MinOrderAmount}, nil
		}
	}
	return Membership{InZone: false}, nil
}
