// README: Handlers for coupon CRUD and discount preview.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/types"
)

type CouponHandler struct {
	coupons *coupon.Service
}

func NewCouponHandler(svc *coupon.Service) *CouponHandler {
	return &CouponHandler{coupons: svc}
}

type couponReq struct {
	Code           string   `json:"code"`
	Type           string   `json:"type"`
	DiscountValue  float64  `json:"discount_value"`
	MinOrderAmount float64  `json:"min_order_amount"`
	MaxDiscount    *float64 `json:"max_discount"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	IsActive       *bool    `json:"is_active"`
	UsageLimit     *int     `json:"usage_limit"`
}

func (r couponReq) toCoupon() (coupon.Coupon, error) {
	typ, err := coupon.ParseDiscountType(r.Type)
	if err != nil {
		return coupon.Coupon{}, err
	}
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return coupon.Coupon{}, err
	}
	end, err := time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return coupon.Coupon{}, err
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return coupon.Coupon{
		Code:           r.Code,
		Type:           typ,
		DiscountValue:  r.DiscountValue,
		MinOrderAmount: r.MinOrderAmount,
		MaxDiscount:    r.MaxDiscount,
		StartDate:      start,
		EndDate:        end,
		IsActive:       active,
		UsageLimit:     r.UsageLimit,
	}, nil
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req couponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	cp, err := req.toCoupon()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.coupons.Create(c.Request.Context(), cp)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *CouponHandler) Get(c *gin.Context) {
	cp, err := h.coupons.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, cp)
}

func (h *CouponHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	coupons, err := h.coupons.List(c.Request.Context(), limit, offset)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, coupons)
}

func (h *CouponHandler) Update(c *gin.Context) {
	var req couponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	cp, err := req.toCoupon()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.coupons.Update(c.Request.Context(), types.ID(c.Param("id")), cp)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.coupons.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

type applyCouponReq struct {
	Code     string   `json:"code"`
	Subtotal *float64 `json:"subtotal"`
}

// Apply previews the discount without consuming a usage.
func (h *CouponHandler) Apply(c *gin.Context) {
	var req applyCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Code == "" || req.Subtotal == nil {
		fail(c, http.StatusBadRequest, "code and subtotal are required")
		return
	}
	d, err := h.coupons.Apply(c.Request.Context(), req.Code, *req.Subtotal, time.Now())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, d)
}
