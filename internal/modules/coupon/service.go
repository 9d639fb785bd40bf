// README: Coupon service: CRUD, discount preview, and transactional redemption.
package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dishpatch/internal/types"
)

var (
	ErrNotFound      = errors.New("coupon not found")
	ErrDuplicateCode = errors.New("coupon code already exists")
	ErrBadRequest    = errors.New("bad request")
)

// Store abstracts persistence so the service is testable with a fake.
// Redeem must consume usage atomically with the validity evaluation.
type Store interface {
	Create(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id types.ID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, limit, offset int) ([]Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id types.ID) error
	Redeem(ctx context.Context, code string, subtotal float64, at time.Time) (Discount, error)
	Release(ctx context.Context, code string) error
}

type Service struct {
	store Store
	cache *Cache // optional
}

func NewService(store Store, cache *Cache) *Service {
	return &Service{store: store, cache: cache}
}

func (s *Service) Create(ctx context.Context, c Coupon) (*Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ID = types.ID(uuid.NewString())
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.UsedCount = 0
	if err := s.store.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Coupon, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Coupon, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

// Update replaces the editable fields; the usage counter is never
// writable through this path.
func (s *Service) Update(ctx context.Context, id types.ID, c Coupon) (*Coupon, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.Code = NormalizeCode(c.Code)
	c.UsedCount = existing.UsedCount
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, &c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing.Code, c.Code)
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, existing.Code)
	return nil
}

// Apply previews the discount for a subtotal without consuming usage.
// An unknown code is not an error: the discount simply does not apply.
func (s *Service) Apply(ctx context.Context, code string, subtotal float64, at time.Time) (Discount, error) {
	code = NormalizeCode(code)
	if code == "" || subtotal < 0 {
		return Discount{}, ErrBadRequest
	}

	c := s.cache.Get(ctx, code)
	if c == nil {
		var err error
		c, err = s.store.GetByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return notApplied(subtotal, ReasonNotFound), nil
		}
		if err != nil {
			return Discount{}, err
		}
		s.cache.Put(ctx, c)
	}
	return c.DiscountFor(subtotal, at), nil
}

// Redeem applies the coupon and consumes one usage. The store runs the
// whole evaluation inside a row-locking transaction, so concurrent
// redemptions cannot race past the usage limit.
func (s *Service) Redeem(ctx context.Context, code string, subtotal float64, at time.Time) (Discount, error) {
	code = NormalizeCode(code)
	if code == "" || subtotal < 0 {
		return Discount{}, ErrBadRequest
	}
	d, err := s.store.Redeem(ctx, code, subtotal, at)
	if err != nil {
		return Discount{}, err
	}
	if d.Applied {
		s.invalidate(ctx, code) // used_count moved
	}
	return d, nil
}

// Release gives one consumed usage back, for callers whose own write
// failed after a successful Redeem.
func (s *Service) Release(ctx context.Context, code string) error {
	code = NormalizeCode(code)
	if code == "" {
		return ErrBadRequest
	}
	if err := s.store.Release(ctx, code); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

func (s *Service) invalidate(ctx context.Context, codes ...string) {
	for _, code := range codes {
		s.cache.Drop(ctx, code)
	}
}
