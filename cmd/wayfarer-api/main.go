// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/modules/plans"
	"wayfarer/internal/modules/preference"
	"wayfarer/internal/modules/review"
	"wayfarer/internal/modules/scout"
	"wayfarer/internal/modules/session"
	"wayfarer/internal/places"
	"wayfarer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer provider.Close()

	classifier, err := preference.NewClassifier(ctx, provider)
	if err != nil {
		log.Fatalf("classifier init: %v", err)
	}

	var enricher service.Enricher
	if cfg.AI.MapsKey != "" {
		placesSvc, err := places.NewService(cfg.AI.MapsKey)
		if err != nil {
			log.Fatalf("places init: %v", err)
		}
		enricher = placesSvc
	} else {
		log.Print("MAPS_API_KEY not set, place enrichment disabled")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	snapshotStore := session.NewStore(redisClient, session.DefaultTTL)
	planStore := plans.NewStore(dbPool)

	scoutSvc := scout.NewService(provider)
	planner := service.NewPlanner(scoutSvc, review.NewService(provider), enricher)
	hub := service.NewHub(provider, classifier, planner, snapshotStore, planStore, cfg.Trip, cfg.Interview)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: httptransport.NewRouter(hub)}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
