// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dishpatch/internal/http/handlers"
	"dishpatch/internal/http/middleware"
	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/modules/dispatch"
	"dishpatch/internal/modules/order"
	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/modules/zone"
)

type RouterDeps struct {
	Pricing  *pricing.Service
	Zones    *zone.Service
	Coupons  *coupon.Service
	Orders   *order.Service
	Dispatch *dispatch.Service
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging(), metricsMiddleware())

	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	r.POST("/api/courier/calculate-cost", pricingHandler.CalculateCost)
	r.GET("/api/delivery-time-estimate/restaurant/:id", pricingHandler.GetTimeEstimate)
	r.PUT("/api/delivery-time-estimate/restaurant/:id", pricingHandler.SetTimeEstimate)

	zoneHandler := handlers.NewZoneHandler(deps.Zones)
	r.POST("/api/delivery-zones", zoneHandler.Create)
	r.GET("/api/delivery-zones/restaurant/:id", zoneHandler.ListByRestaurant)
	r.GET("/api/delivery-zones/restaurant/:id/check", zoneHandler.Check)
	r.PUT("/api/delivery-zones/:id", zoneHandler.Update)
	r.DELETE("/api/delivery-zones/:id", zoneHandler.Delete)

	couponHandler := handlers.NewCouponHandler(deps.Coupons)
	r.POST("/api/coupons", couponHandler.Create)
	r.GET("/api/coupons", couponHandler.List)
	r.GET("/api/coupons/:id", couponHandler.Get)
	r.PUT("/api/coupons/:id", couponHandler.Update)
	r.DELETE("/api/coupons/:id", couponHandler.Delete)
	r.POST("/api/coupons/apply", couponHandler.Apply)

	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Dispatch)
	r.POST("/api/orders", orderHandler.Create)
	r.GET("/api/orders/:id", orderHandler.Get)
	r.POST("/api/orders/:id/assign", orderHandler.Assign)
	r.POST("/api/orders/:id/pickup", orderHandler.PickUp)
	r.POST("/api/orders/:id/deliver", orderHandler.Deliver)
	r.POST("/api/orders/:id/cancel", orderHandler.Cancel)

	courierHandler := handlers.NewCourierHandler(deps.Dispatch)
	r.PUT("/api/couriers/:id/location", courierHandler.UpdateLocation)
	r.POST("/api/couriers/:id/availability", courierHandler.SetAvailability)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
