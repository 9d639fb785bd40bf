// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dishpatch/internal/config"
	httptransport "dishpatch/internal/http"
	"dishpatch/internal/infra"
	"dishpatch/internal/maps"
	"dishpatch/internal/modules/coupon"
	"dishpatch/internal/modules/dispatch"
	"dishpatch/internal/modules/geo"
	"dishpatch/internal/modules/order"
	"dishpatch/internal/modules/pricing"
	"dishpatch/internal/modules/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	var routes pricing.RoutePlanner
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		routes = rs
	}

	pricingStore := pricing.NewStore(dbPool)
	pricingSvc := pricing.NewService(pricingStore, routes, cfg.Pricing, geo.HaversineKm)

	zoneStore := zone.NewStore(dbPool)
	zoneSvc := zone.NewService(zoneStore)

	couponStore := coupon.NewStore(dbPool)
	couponSvc := coupon.NewService(couponStore, coupon.NewCache(redisClient))

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, pricingSvc, couponSvc)

	dispatchStore := dispatch.NewStore(redisClient)
	dispatchSvc := dispatch.NewService(dispatchStore, cfg.Dispatch)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:  pricingSvc,
		Zones:    zoneSvc,
		Coupons:  couponSvc,
		Orders:   orderSvc,
		Dispatch: dispatchSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
