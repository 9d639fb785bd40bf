// README: Handlers for cost quotes and delivery-time estimates.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/types"
)

type PricingHandler struct {
	pricing *pricing.Service
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

type calculateCostReq struct {
	PickupLat   *float64 `json:"pickup_latitude"`
	PickupLng   *float64 `json:"pickup_longitude"`
	DeliveryLat *float64 `json:"delivery_latitude"`
	DeliveryLng *float64 `json:"delivery_longitude"`
	Weight      float64  `json:"weight"`
}

func (h *PricingHandler) CalculateCost(c *gin.Context) {
	var req calculateCostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupLat == nil || req.PickupLng == nil || req.DeliveryLat == nil || req.DeliveryLng == nil {
		fail(c, http.StatusBadRequest, "pickup and delivery coordinates are required")
		return
	}

	q, err := h.pricing.Quote(c.Request.Context(), pricing.QuoteRequest{
		Pickup:   types.Point{Lat: *req.PickupLat, Lng: *req.PickupLng},
		Dropoff:  types.Point{Lat: *req.DeliveryLat, Lng: *req.DeliveryLng},
		WeightKg: req.Weight,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, q)
}

func (h *PricingHandler) GetTimeEstimate(c *gin.Context) {
	restaurantID := types.ID(c.Param("id"))

	var distance *float64
	if raw := c.Query("distance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			fail(c, http.StatusBadRequest, "invalid distance")
			return
		}
		distance = &d
	}

	est, err := h.pricing.EstimateTime(c.Request.Context(), restaurantID, distance, time.Now())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"estimatedMinutes": est.Minutes,
		"estimatedRange":   gin.H{"min": est.RangeMin, "max": est.RangeMax},
	})
}

type estimateConfigReq struct {
	BaseTime    int `json:"baseTime"`
	PerKmTime   int `json:"perKmTime"`
	BusyTimeAdd int `json:"busyTimeAdd"`
}

func (h *PricingHandler) SetTimeEstimate(c *gin.Context) {
	var req estimateConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	cfg := pricing.EstimateConfig{
		RestaurantID: types.ID(c.Param("id")),
		BaseTime:     req.BaseTime,
		PerKmTime:    req.PerKmTime,
		BusyTimeAdd:  req.BusyTimeAdd,
	}
	if err := h.pricing.SetEstimateConfig(c.Request.Context(), cfg); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}
