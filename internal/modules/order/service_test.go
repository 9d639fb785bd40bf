package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/types"
)

// fakeOrderStore keeps orders in memory with the same compare-and-swap
// semantics the SQL store has.
type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[types.ID]*Order
	events    []Event
	createErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[types.ID]*Order)}
}

func (f *fakeOrderStore) Create(_ context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderStore) Get(_ context.Context, id types.ID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, courierID *types.ID, reason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != from || o.StatusVersion != version {
		return false, nil
	}
	o.Status = to
	o.StatusVersion++
	if courierID != nil {
		o.CourierID = courierID
	}
	if reason != nil {
		o.CancelReason = reason
	}
	return true, nil
}

func (f *fakeOrderStore) AppendEvent(_ context.Context, e *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}

type fakeQuoter struct{}

func (fakeQuoter) Quote(_ context.Context, req pricing.QuoteRequest) (pricing.Quote, error) {
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		return pricing.Quote{}, pricing.ErrBadRequest
	}
	return pricing.Quote{DistanceKm: 4, EstimatedCost: 18, CostMin: 14.4, CostMax: 21.6, Minutes: 8}, nil
}

type fakeRedeemer struct {
	discounts map[string]coupon.Discount
	redeemed  []string
	released  []string
}

func (f *fakeRedeemer) Redeem(_ context.Context, code string, subtotal float64, _ time.Time) (coupon.Discount, error) {
	code = coupon.NormalizeCode(code)
	if d, ok := f.discounts[code]; ok {
		f.redeemed = append(f.redeemed, code)
		return d, nil
	}
	return coupon.Discount{Applied: false, Final: subtotal, Reason: coupon.ReasonNotFound}, nil
}

func (f *fakeRedeemer) Release(_ context.Context, code string) error {
	f.released = append(f.released, coupon.NormalizeCode(code))
	return nil
}

func newFakeRedeemer() *fakeRedeemer {
	return &fakeRedeemer{discounts: map[string]coupon.Discount{
		"TEN": {Applied: true, Amount: 10, Final: 90, Reason: coupon.ReasonApplied},
	}}
}

func newTestService(store Store) *Service {
	return NewService(store, fakeQuoter{}, newFakeRedeemer())
}

func validCreate() CreateCommand {
	return CreateCommand{
		RestaurantID: "r1",
		CustomerID:   "c1",
		Pickup:       types.Point{Lat: 30.0, Lng: 31.0},
		Dropoff:      types.Point{Lat: 30.02, Lng: 31.01},
		WeightKg:     1,
		Subtotal:     100,
	}
}

func TestCreate_QuotesAndStartsPending(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.EstimatedCost != 18 || o.DistanceKm != 4 {
		t.Errorf("quote not persisted: cost=%v dist=%v", o.EstimatedCost, o.DistanceKm)
	}
	if len(store.events) != 1 || store.events[0].ToStatus != StatusPending {
		t.Errorf("expected a creation event, got %+v", store.events)
	}
}

func TestCreate_AppliesCoupon(t *testing.T) {
	svc := newTestService(newFakeOrderStore())

	cmd := validCreate()
	cmd.CouponCode = "ten"
	o, err := svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.CouponCode == nil || *o.CouponCode != "TEN" {
		t.Errorf("coupon code = %v, want TEN", o.CouponCode)
	}
	if o.DiscountAmount != 10 {
		t.Errorf("discount = %v, want 10", o.DiscountAmount)
	}
}

func TestCreate_UnknownCouponIsIgnored(t *testing.T) {
	svc := newTestService(newFakeOrderStore())

	cmd := validCreate()
	cmd.CouponCode = "BOGUS"
	o, err := svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.CouponCode != nil || o.DiscountAmount != 0 {
		t.Errorf("unknown coupon should contribute nothing, got %+v", o)
	}
}

func TestCreate_FailedInsertReleasesCouponUsage(t *testing.T) {
	store := newFakeOrderStore()
	store.createErr = errors.New("insert failed")
	redeemer := newFakeRedeemer()
	svc := NewService(store, fakeQuoter{}, redeemer)

	cmd := validCreate()
	cmd.CouponCode = "TEN"
	if _, err := svc.Create(context.Background(), cmd); err == nil {
		t.Fatal("create should propagate the store error")
	}
	if len(redeemer.redeemed) != 1 {
		t.Fatalf("redeemed %d times, want 1", len(redeemer.redeemed))
	}
	if len(redeemer.released) != 1 || redeemer.released[0] != "TEN" {
		t.Errorf("released = %v, want the consumed usage given back", redeemer.released)
	}
	if len(store.orders) != 0 {
		t.Errorf("no order should exist, got %d", len(store.orders))
	}
}

func TestCreate_RejectsInvalidCoordinates(t *testing.T) {
	svc := newTestService(newFakeOrderStore())

	cmd := validCreate()
	cmd.Pickup = types.Point{Lat: 120, Lng: 31}
	if _, err := svc.Create(context.Background(), cmd); err != ErrBadRequest {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Assign(ctx, AssignCommand{OrderID: o.ID, CourierID: "d1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.PickUp(ctx, PickUpCommand{OrderID: o.ID}); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if err := svc.Deliver(ctx, DeliverCommand{OrderID: o.ID}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDelivered {
		t.Errorf("status = %s, want delivered", got.Status)
	}
	if got.CourierID == nil || *got.CourierID != "d1" {
		t.Errorf("courier = %v, want d1", got.CourierID)
	}
	if got.StatusVersion != 3 {
		t.Errorf("status version = %d, want 3", got.StatusVersion)
	}
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deliver(ctx, DeliverCommand{OrderID: o.ID}); err != ErrInvalidState {
		t.Errorf("deliver from pending: err = %v, want ErrInvalidState", err)
	}
	if err := svc.PickUp(ctx, PickUpCommand{OrderID: o.ID}); err != ErrInvalidState {
		t.Errorf("pickup from pending: err = %v, want ErrInvalidState", err)
	}

	if err := svc.Cancel(ctx, CancelCommand{OrderID: o.ID, ActorType: "customer", Reason: "changed my mind"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Assign(ctx, AssignCommand{OrderID: o.ID, CourierID: "d1"}); err != ErrInvalidState {
		t.Errorf("assign after cancel: err = %v, want ErrInvalidState", err)
	}

	got, _ := svc.Get(ctx, o.ID)
	if got.CancelReason == nil || *got.CancelReason != "changed my mind" {
		t.Errorf("cancel reason = %v, want recorded", got.CancelReason)
	}
}

func TestConcurrentAssignVsCancel(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Assign(ctx, AssignCommand{OrderID: o.ID, CourierID: "d1"})
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Cancel(ctx, CancelCommand{OrderID: o.ID, ActorType: "customer", Reason: "race"})
	}()
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict && err != ErrInvalidState {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Cancel can still legally follow assign, so both may succeed; what
	// must never happen is both failing or the versions diverging.
	if success == 0 {
		t.Fatal("neither transition won")
	}

	got, _ := svc.Get(ctx, o.ID)
	if got.Status != StatusAssigned && got.Status != StatusCancelled {
		t.Errorf("final status = %s", got.Status)
	}
}

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusAssigned, StatusPickedUp, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusPickedUp, StatusDelivered, true},
		{StatusPickedUp, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusAssigned, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
