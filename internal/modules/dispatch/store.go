// README: Dispatch store backed by a Redis GEO set.
package dispatch

import (
	"context"

	"github.com/redis/go-redis/v9"

	"dishpatch/internal/types"
)

const courierGeoKey = "dispatch:couriers"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Add(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, courierGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *Store) Remove(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, courierGeoKey, string(id)).Err()
}

func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Courier, error) {
	results, err := s.redis.GeoSearchLocation(ctx, courierGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}
	couriers := make([]Courier, len(results))
	for i, r := range results {
		couriers[i] = Courier{
			ID:         types.ID(r.Name),
			Position:   types.Point{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		}
	}
	return couriers, nil
}
