// README: Order service implements state transitions and persistence.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("order not found")
	ErrConflict     = errors.New("order state conflict")
	ErrBadRequest   = errors.New("bad request")
)

// Quoter prices the delivery leg.
type Quoter interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.Quote, error)
}

// Redeemer applies and consumes a coupon against the food subtotal.
// Release returns a consumed usage when the order write fails afterwards.
type Redeemer interface {
	Redeem(ctx context.Context, code string, subtotal float64, at time.Time) (coupon.Discount, error)
	Release(ctx context.Context, code string) error
}

type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	// UpdateStatus performs an optimistic compare-and-swap on
	// (status, status_version); false means another writer won.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, courierID *types.ID, reason *string) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Service struct {
	store    Store
	quoter   Quoter
	redeemer Redeemer
}

func NewService(store Store, quoter Quoter, redeemer Redeemer) *Service {
	return &Service{store: store, quoter: quoter, redeemer: redeemer}
}

type CreateCommand struct {
	RestaurantID types.ID
	CustomerID   types.ID
	Pickup       types.Point
	Dropoff      types.Point
	WeightKg     float64
	Subtotal     float64
	CouponCode   string
}

type AssignCommand struct {
	OrderID   types.ID
	CourierID types.ID
}

type PickUpCommand struct {
	OrderID types.ID
}

type DeliverCommand struct {
	OrderID types.ID
}

type CancelCommand struct {
	OrderID   types.ID
	ActorType string
	Reason    string
}

// Create quotes the delivery, redeems the coupon if one was supplied,
// and persists the order in pending state. An invalid coupon never fails
// the order; it simply contributes no discount.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.RestaurantID == "" || cmd.CustomerID == "" || cmd.Subtotal < 0 {
		return nil, ErrBadRequest
	}
	now := time.Now()

	q, err := s.quoter.Quote(ctx, pricing.QuoteRequest{
		Pickup:   cmd.Pickup,
		Dropoff:  cmd.Dropoff,
		WeightKg: cmd.WeightKg,
	})
	if errors.Is(err, pricing.ErrBadRequest) {
		return nil, ErrBadRequest
	}
	if err != nil {
		return nil, err
	}

	var couponCode *string
	var discount float64
	if cmd.CouponCode != "" {
		d, err := s.redeemer.Redeem(ctx, cmd.CouponCode, cmd.Subtotal, now)
		if err != nil {
			return nil, err
		}
		if d.Applied {
			code := coupon.NormalizeCode(cmd.CouponCode)
			couponCode = &code
			discount = d.Amount
		}
	}

	o := &Order{
		ID:             types.ID(uuid.NewString()),
		RestaurantID:   cmd.RestaurantID,
		CustomerID:     cmd.CustomerID,
		Status:         StatusPending,
		StatusVersion:  0,
		Pickup:         cmd.Pickup,
		Dropoff:        cmd.Dropoff,
		WeightKg:       cmd.WeightKg,
		Subtotal:       cmd.Subtotal,
		CouponCode:     couponCode,
		DiscountAmount: discount,
		EstimatedCost:  q.EstimatedCost,
		DistanceKm:     q.DistanceKm,
		CreatedAt:      now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		if couponCode != nil {
			// the usage was consumed for an order that never existed
			_ = s.redeemer.Release(ctx, *couponCode)
		}
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorType:  "customer",
		ActorID:    &cmd.CustomerID,
		CreatedAt:  now,
	})
	return o, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Assign(ctx context.Context, cmd AssignCommand) error {
	if cmd.CourierID == "" {
		return ErrBadRequest
	}
	return s.transition(ctx, cmd.OrderID, StatusAssigned, "system", &cmd.CourierID, nil)
}

func (s *Service) PickUp(ctx context.Context, cmd PickUpCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusPickedUp, "courier", nil, nil)
}

func (s *Service) Deliver(ctx context.Context, cmd DeliverCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusDelivered, "courier", nil, nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	if cmd.ActorType == "" {
		cmd.ActorType = "customer"
	}
	return s.transition(ctx, cmd.OrderID, StatusCancelled, cmd.ActorType, nil, &cmd.Reason)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actorType string, courierID *types.ID, reason *string) error {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, to) {
		return ErrInvalidState
	}
	if courierID == nil {
		courierID = o.CourierID
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, courierID, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	actorID := courierID
	if actorType == "customer" {
		actorID = &o.CustomerID
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
	return nil
}
