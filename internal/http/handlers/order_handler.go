// README: Handlers for order create/get and lifecycle transitions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dishpatch/internal/modules/dispatch"
	"dishpatch/internal/modules/order"
	"dishpatch/internal/types"
)

type OrderHandler struct {
	orders   *order.Service
	dispatch *dispatch.Service
}

func NewOrderHandler(orders *order.Service, dispatchSvc *dispatch.Service) *OrderHandler {
	return &OrderHandler{orders: orders, dispatch: dispatchSvc}
}

type createOrderReq struct {
	RestaurantID string  `json:"restaurant_id"`
	CustomerID   string  `json:"customer_id"`
	PickupLat    float64 `json:"pickup_lat"`
	PickupLng    float64 `json:"pickup_lng"`
	DropoffLat   float64 `json:"dropoff_lat"`
	DropoffLng   float64 `json:"dropoff_lng"`
	WeightKg     float64 `json:"weight_kg"`
	Subtotal     float64 `json:"subtotal"`
	CouponCode   string  `json:"coupon_code"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RestaurantID == "" || req.CustomerID == "" {
		fail(c, http.StatusBadRequest, "restaurant_id and customer_id are required")
		return
	}
	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		RestaurantID: types.ID(req.RestaurantID),
		CustomerID:   types.ID(req.CustomerID),
		Pickup:       types.Point{Lat: req.PickupLat, Lng: req.PickupLng},
		Dropoff:      types.Point{Lat: req.DropoffLat, Lng: req.DropoffLng},
		WeightKg:     req.WeightKg,
		Subtotal:     req.Subtotal,
		CouponCode:   req.CouponCode,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, orderView(o))
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, orderView(o))
}

type assignReq struct {
	CourierID string `json:"courier_id"`
}

// Assign attaches a courier to the order. Without an explicit courier
// the nearest available one is picked from the dispatch pool.
func (h *OrderHandler) Assign(c *gin.Context) {
	var req assignReq
	_ = c.ShouldBindJSON(&req)

	orderID := types.ID(c.Param("id"))
	courierID := types.ID(req.CourierID)
	if courierID == "" {
		o, err := h.orders.Get(c.Request.Context(), orderID)
		if err != nil {
			failErr(c, err)
			return
		}
		picked, err := h.dispatch.Pick(c.Request.Context(), o.Pickup)
		if err != nil {
			failErr(c, err)
			return
		}
		courierID = picked.ID
	}

	if err := h.orders.Assign(c.Request.Context(), order.AssignCommand{OrderID: orderID, CourierID: courierID}); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order_id": orderID, "courier_id": courierID, "status": order.StatusAssigned})
}

func (h *OrderHandler) PickUp(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.orders.PickUp(c.Request.Context(), order.PickUpCommand{OrderID: id}); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order_id": id, "status": order.StatusPickedUp})
}

func (h *OrderHandler) Deliver(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.orders.Deliver(c.Request.Context(), order.DeliverCommand{OrderID: id}); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order_id": id, "status": order.StatusDelivered})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	var req cancelReq
	_ = c.ShouldBindJSON(&req)

	id := types.ID(c.Param("id"))
	err := h.orders.Cancel(c.Request.Context(), order.CancelCommand{
		OrderID:   id,
		ActorType: "customer",
		Reason:    req.Reason,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order_id": id, "status": order.StatusCancelled})
}

func orderView(o *order.Order) gin.H {
	v := gin.H{
		"id":             o.ID,
		"restaurant_id":  o.RestaurantID,
		"customer_id":    o.CustomerID,
		"status":         o.Status,
		"pickup":         o.Pickup,
		"dropoff":        o.Dropoff,
		"weight_kg":      o.WeightKg,
		"subtotal":       o.Subtotal,
		"discount":       o.DiscountAmount,
		"estimated_cost": o.EstimatedCost,
		"distance_km":    o.DistanceKm,
		"created_at":     o.CreatedAt,
	}
	if o.CourierID != nil {
		v["courier_id"] = *o.CourierID
	}
	if o.CouponCode != nil {
		v["coupon_code"] = *o.CouponCode
	}
	if o.CancelReason != nil {
		v["cancel_reason"] = *o.CancelReason
	}
	return v
}
