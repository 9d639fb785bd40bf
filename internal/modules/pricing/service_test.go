package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"dishpatch/internal/config"
	"dishpatch/internal/modules/geo"
	"dishpatch/internal/types"
)

type fakeEstimateStore struct {
	configs map[types.ID]EstimateConfig
}

func newFakeEstimateStore() *fakeEstimateStore {
	return &fakeEstimateStore{configs: make(map[types.ID]EstimateConfig)}
}

func (f *fakeEstimateStore) GetEstimateConfig(_ context.Context, id types.ID) (EstimateConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return EstimateConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (f *fakeEstimateStore) UpsertEstimateConfig(_ context.Context, cfg EstimateConfig) error {
	f.configs[cfg.RestaurantID] = cfg
	return nil
}

func defaultRates() config.PricingConfig {
	return config.PricingConfig{BaseFee: 10, PerKmFee: 2, PerKgFee: 1.5, MinutesPerKm: 2}
}

func TestQuote_WorkedExample(t *testing.T) {
	// Fixed 6.5km so the arithmetic is exact: 10 + 6.5*2 + 2*1.5 = 26.
	fixed := func(a, b types.Point) float64 { return 6.5 }
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), fixed)

	q, err := svc.Quote(context.Background(), QuoteRequest{
		Pickup:   types.Point{Lat: 30.0, Lng: 31.0},
		Dropoff:  types.Point{Lat: 30.05, Lng: 31.05},
		WeightKg: 2,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.EstimatedCost != 26 {
		t.Errorf("estimated = %v, want 26", q.EstimatedCost)
	}
	if q.CostMin != 20.8 || q.CostMax != 31.2 {
		t.Errorf("band = [%v, %v], want [20.8, 31.2]", q.CostMin, q.CostMax)
	}
	if q.Minutes != 13 {
		t.Errorf("minutes = %d, want 13", q.Minutes)
	}
}

func TestQuote_BandOrdering(t *testing.T) {
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), geo.HaversineKm)

	reqs := []QuoteRequest{
		{Pickup: types.Point{Lat: 30, Lng: 31}, Dropoff: types.Point{Lat: 30, Lng: 31}},
		{Pickup: types.Point{Lat: 30, Lng: 31}, Dropoff: types.Point{Lat: 30.2, Lng: 31.2}, WeightKg: 12},
		{Pickup: types.Point{Lat: -10, Lng: 100}, Dropoff: types.Point{Lat: -9.5, Lng: 100.1}},
	}
	for _, req := range reqs {
		q, err := svc.Quote(context.Background(), req)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if q.CostMin > q.EstimatedCost || q.EstimatedCost > q.CostMax {
			t.Errorf("band ordering violated: min=%v est=%v max=%v", q.CostMin, q.EstimatedCost, q.CostMax)
		}
		wantMin := types.Round2(q.EstimatedCost * 0.8)
		wantMax := types.Round2(q.EstimatedCost * 1.2)
		if math.Abs(q.CostMin-wantMin) > 0.011 || math.Abs(q.CostMax-wantMax) > 0.011 {
			t.Errorf("band = [%v, %v], want about [%v, %v]", q.CostMin, q.CostMax, wantMin, wantMax)
		}
	}
}

func TestQuote_ZeroWeightAndDegenerate(t *testing.T) {
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), geo.HaversineKm)

	q, err := svc.Quote(context.Background(), QuoteRequest{
		Pickup:  types.Point{Lat: 30, Lng: 31},
		Dropoff: types.Point{Lat: 30, Lng: 31},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.DistanceKm != 0 {
		t.Errorf("identical points should give 0 distance, got %v", q.DistanceKm)
	}
	if q.EstimatedCost != 10 {
		t.Errorf("zero distance and weight should cost the base fee, got %v", q.EstimatedCost)
	}
}

func TestQuote_RejectsInvalidInput(t *testing.T) {
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), geo.HaversineKm)

	bad := []QuoteRequest{
		{Pickup: types.Point{Lat: 91, Lng: 0}, Dropoff: types.Point{Lat: 0, Lng: 0}},
		{Pickup: types.Point{Lat: 0, Lng: 0}, Dropoff: types.Point{Lat: 0, Lng: 181}},
		{Pickup: types.Point{Lat: 0, Lng: 0}, Dropoff: types.Point{Lat: 1, Lng: 1}, WeightKg: -1},
	}
	for _, req := range bad {
		if _, err := svc.Quote(context.Background(), req); err != ErrBadRequest {
			t.Errorf("Quote(%+v) err = %v, want ErrBadRequest", req, err)
		}
	}
}

func TestEstimateTime_BusyHourSurcharge(t *testing.T) {
	store := newFakeEstimateStore()
	store.configs["r1"] = EstimateConfig{RestaurantID: "r1", BaseTime: 20, PerKmTime: 4, BusyTimeAdd: 8}
	svc := NewService(store, nil, defaultRates(), geo.HaversineKm)

	dist := 3.0
	quiet := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	busy := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

	// 20 + ceil(3*4) = 32 off-peak, +8 during the rush.
	got, err := svc.EstimateTime(context.Background(), "r1", &dist, quiet)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.Minutes != 32 {
		t.Errorf("off-peak minutes = %d, want 32", got.Minutes)
	}

	got, err = svc.EstimateTime(context.Background(), "r1", &dist, busy)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.Minutes != 40 {
		t.Errorf("busy minutes = %d, want 40", got.Minutes)
	}
	if got.RangeMin != 35 || got.RangeMax != 50 {
		t.Errorf("range = [%d, %d], want [35, 50]", got.RangeMin, got.RangeMax)
	}
}

func TestEstimateTime_DefaultsWhenUnconfigured(t *testing.T) {
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), geo.HaversineKm)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	got, err := svc.EstimateTime(context.Background(), "missing", nil, at)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.Minutes != 30 {
		t.Errorf("default base time = %d, want 30", got.Minutes)
	}
	if got.RangeMin != 25 || got.RangeMax != 40 {
		t.Errorf("range = [%d, %d], want [25, 40]", got.RangeMin, got.RangeMax)
	}
}

func TestEstimateTime_RangeFloor(t *testing.T) {
	store := newFakeEstimateStore()
	store.configs["fast"] = EstimateConfig{RestaurantID: "fast", BaseTime: 12, PerKmTime: 0, BusyTimeAdd: 0}
	svc := NewService(store, nil, defaultRates(), geo.HaversineKm)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	got, err := svc.EstimateTime(context.Background(), "fast", nil, at)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.RangeMin != 15 {
		t.Errorf("range floor = %d, want 15", got.RangeMin)
	}
}

func TestSetEstimateConfig_Validation(t *testing.T) {
	svc := NewService(newFakeEstimateStore(), nil, defaultRates(), geo.HaversineKm)

	bad := []EstimateConfig{
		{RestaurantID: "", BaseTime: 30},
		{RestaurantID: "r1", BaseTime: 0},
		{RestaurantID: "r1", BaseTime: 30, PerKmTime: -1},
	}
	for _, cfg := range bad {
		if err := svc.SetEstimateConfig(context.Background(), cfg); err != ErrBadRequest {
			t.Errorf("SetEstimateConfig(%+v) err = %v, want ErrBadRequest", cfg, err)
		}
	}
}
