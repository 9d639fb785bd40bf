// README: Pricing service computes cost quotes and delivery-time estimates.
package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"dishpatch/internal/config"
	"dishpatch/internal/types"
)

var (
	ErrBadRequest = errors.New("invalid quote request")
	ErrNotFound   = errors.New("estimate config not found")
)

// EstimateStore persists per-restaurant time-estimate rows.
type EstimateStore interface {
	GetEstimateConfig(ctx context.Context, restaurantID types.ID) (EstimateConfig, error)
	UpsertEstimateConfig(ctx context.Context, cfg EstimateConfig) error
}

// RoutePlanner resolves road distance between two points. Optional; when
// nil or failing, quotes fall back to great-circle distance.
type RoutePlanner interface {
	RoadDistanceKm(ctx context.Context, origin, dest types.Point) (float64, error)
}

type Distancer func(a, b types.Point) float64

type Service struct {
	store    EstimateStore
	routes   RoutePlanner
	rates    config.PricingConfig
	distance Distancer
}

func NewService(store EstimateStore, routes RoutePlanner, rates config.PricingConfig, distance Distancer) *Service {
	return &Service{store: store, routes: routes, rates: rates, distance: distance}
}

// Quote derives a cost band from distance and weight. The band is always
// estimate*0.8 .. estimate*1.2, money rounded to 2 decimal places.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		return Quote{}, ErrBadRequest
	}
	if req.WeightKg < 0 {
		return Quote{}, ErrBadRequest
	}

	distanceKm := s.distance(req.Pickup, req.Dropoff)
	if s.routes != nil {
		if km, err := s.routes.RoadDistanceKm(ctx, req.Pickup, req.Dropoff); err == nil {
			distanceKm = km
		}
	}

	estimated := s.rates.BaseFee + distanceKm*s.rates.PerKmFee + req.WeightKg*s.rates.PerKgFee
	return Quote{
		DistanceKm:    types.Round2(distanceKm),
		EstimatedCost: types.Round2(estimated),
		CostMin:       types.Round2(estimated * 0.8),
		CostMax:       types.Round2(estimated * 1.2),
		Minutes:       int(math.Ceil(distanceKm * s.rates.MinutesPerKm)),
		Currency:      "EGP",
	}, nil
}

// EstimateTime returns the restaurant's delivery-time estimate. Restaurants
// without a config row get defaults, so a missing row never fails the call.
func (s *Service) EstimateTime(ctx context.Context, restaurantID types.ID, distanceKm *float64, at time.Time) (TimeEstimate, error) {
	cfg, err := s.store.GetEstimateConfig(ctx, restaurantID)
	if errors.Is(err, ErrNotFound) {
		cfg = DefaultEstimateConfig(restaurantID)
	} else if err != nil {
		return TimeEstimate{}, err
	}

	minutes := cfg.BaseTime
	if distanceKm != nil {
		minutes += int(math.Ceil(*distanceKm * float64(cfg.PerKmTime)))
	}
	if busyHour(at) {
		minutes += cfg.BusyTimeAdd
	}

	rangeMin := minutes - 5
	if rangeMin < 15 {
		rangeMin = 15
	}
	return TimeEstimate{
		Minutes:  minutes,
		RangeMin: rangeMin,
		RangeMax: minutes + 10,
	}, nil
}

// SetEstimateConfig upserts the restaurant's tuning row.
func (s *Service) SetEstimateConfig(ctx context.Context, cfg EstimateConfig) error {
	if cfg.RestaurantID == "" || cfg.BaseTime <= 0 || cfg.PerKmTime < 0 || cfg.BusyTimeAdd < 0 {
		return ErrBadRequest
	}
	cfg.UpdatedAt = time.Now()
	return s.store.UpsertEstimateConfig(ctx, cfg)
}

// GetEstimateConfig returns the stored row, or defaults when none exists.
func (s *Service) GetEstimateConfig(ctx context.Context, restaurantID types.ID) (EstimateConfig, error) {
	cfg, err := s.store.GetEstimateConfig(ctx, restaurantID)
	if errors.Is(err, ErrNotFound) {
		return DefaultEstimateConfig(restaurantID), nil
	}
	return cfg, err
}

// busyHour marks the lunch and dinner rush windows (12-14 and 19-21
// wall-clock). A fixed proxy for live order volume.
func busyHour(at time.Time) bool {
	h := at.Hour()
	return (h >= 12 && h <= 14) || (h >= 19 && h <= 21)
}
