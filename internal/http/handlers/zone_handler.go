// README: Handlers for delivery zone CRUD and membership checks.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/zone"
	"dishpatch/internal/types"
)

type ZoneHandler struct {
	zones *zone.Service
}

func NewZoneHandler(svc *zone.Service) *ZoneHandler {
	return &ZoneHandler{zones: svc}
}

type zoneReq struct {
	RestaurantID   string        `json:"restaurant_id"`
	Name           string        `json:"name"`
	Polygon        []types.Point `json:"polygon"`
	DeliveryFee    float64       `json:"delivery_fee"`
	MinOrderAmount float64       `json:"min_order_amount"`
	IsActive       *bool         `json:"is_active"`
}

func (r zoneReq) toZone() zone.Zone {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return zone.Zone{
		RestaurantID:   types.ID(r.RestaurantID),
		Name:           r.Name,
		Polygon:        r.Polygon,
		DeliveryFee:    r.DeliveryFee,
		MinOrderAmount: r.MinOrderAmount,
		IsActive:       active,
	}
}

func (h *ZoneHandler) Create(c *gin.Context) {
	var req zoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	z, err := h.zones.Create(c.Request.Context(), req.toZone())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, z)
}

func (h *ZoneHandler) ListByRestaurant(c *gin.Context) {
	zones, err := h.zones.ListByRestaurant(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, zones)
}

func (h *ZoneHandler) Update(c *gin.Context) {
	var req zoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	z, err := h.zones.Update(c.Request.Context(), types.ID(c.Param("id")), req.toZone())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, z)
}

func (h *ZoneHandler) Delete(c *gin.Context) {
	if err := h.zones.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

// Check answers "does this restaurant deliver to this point, and at
// what fee" for a lat/lng query.
func (h *ZoneHandler) Check(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		fail(c, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	m, err := h.zones.Locate(c.Request.Context(), types.ID(c.Param("id")), types.Point{Lat: lat, Lng: lng})
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, m)
}
