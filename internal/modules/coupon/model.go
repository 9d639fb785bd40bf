// README: Coupon aggregate, discount type, and pure discount math.
package coupon

import (
	"fmt"
	"strings"
	"time"

	"dishpatch/internal/types"
)

// DiscountType is validated once at the boundary; everything past
// ParseDiscountType works with the canonical uppercase form.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(strings.ToUpper(strings.TrimSpace(s))) {
	case DiscountPercentage:
		return DiscountPercentage, nil
	case DiscountFixed:
		return DiscountFixed, nil
	default:
		return "", fmt.Errorf("unknown discount type %q", s)
	}
}

type Coupon struct {
	ID             types.ID     `json:"id"`
	Code           string       `json:"code"`
	Type           DiscountType `json:"type"`
	DiscountValue  float64      `json:"discount_value"`
	MinOrderAmount float64      `json:"min_order_amount"`
	MaxDiscount    *float64     `json:"max_discount,omitempty"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	IsActive       bool         `json:"is_active"`
	UsageLimit     *int         `json:"usage_limit,omitempty"`
	UsedCount      int          `json:"used_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NormalizeCode makes codes case-insensitive by canonicalizing to upper.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrBadRequest)
	}
	if c.DiscountValue <= 0 {
		return fmt.Errorf("%w: discount value must be positive", ErrBadRequest)
	}
	if c.Type == DiscountPercentage && c.DiscountValue > 100 {
		return fmt.Errorf("%w: percentage discount cannot exceed 100", ErrBadRequest)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrBadRequest)
	}
	if c.MinOrderAmount < 0 {
		return fmt.Errorf("%w: negative min order amount", ErrBadRequest)
	}
	if c.MaxDiscount != nil && *c.MaxDiscount <= 0 {
		return fmt.Errorf("%w: max discount must be positive", ErrBadRequest)
	}
	if c.UsageLimit != nil && *c.UsageLimit <= 0 {
		return fmt.Errorf("%w: usage limit must be positive", ErrBadRequest)
	}
	return nil
}

// Discount is the outcome of applying a coupon to a subtotal. A coupon
// that fails a validity gate yields Applied=false with a reason and the
// untouched subtotal; that is not an error.
type Discount struct {
	Applied bool    `json:"applied"`
	Amount  float64 `json:"discount"`
	Final   float64 `json:"final_total"`
	Reason  string  `json:"reason,omitempty"`
}

const (
	ReasonApplied         = "coupon_applied"
	ReasonNotFound        = "coupon_not_found"
	ReasonInactive        = "coupon_inactive"
	ReasonOutsideWindow   = "not_in_valid_window"
	ReasonMinOrderNotMet  = "min_order_value_not_met"
	ReasonUsageLimitReach = "usage_limit_reached"
)

func notApplied(subtotal float64, reason string) Discount {
	return Discount{Applied: false, Amount: 0, Final: subtotal, Reason: reason}
}

// DiscountFor evaluates the validity gates and computes the discount for
// a subtotal at the given time. Percentage discounts are capped by
// MaxDiscount; a fixed discount larger than the subtotal is returned as
// is, so Final can go negative (the caller sees the raw amount).
func (c *Coupon) DiscountFor(subtotal float64, at time.Time) Discount {
	if !c.IsActive {
		return notApplied(subtotal, ReasonInactive)
	}
	if at.Before(c.StartDate) || at.After(c.EndDate) {
		return notApplied(subtotal, ReasonOutsideWindow)
	}
	if subtotal < c.MinOrderAmount {
		return notApplied(subtotal, ReasonMinOrderNotMet)
	}

	var amount float64
	switch c.Type {
	case DiscountPercentage:
		amount = subtotal * c.DiscountValue / 100
		if c.MaxDiscount != nil && amount > *c.MaxDiscount {
			amount = *c.MaxDiscount
		}
	default:
		amount = c.DiscountValue
	}
	return Discount{
		Applied: true,
		Amount:  types.Round2(amount),
		Final:   types.Round2(subtotal - amount),
		Reason:  ReasonApplied,
	}
}

// Exhausted reports whether the usage limit blocks one more redemption.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}
