package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antigravity/skane-transit/internal/config"
	"github.com/antigravity/skane-transit/internal/feedclient"
	"github.com/antigravity/skane-transit/internal/httpapi"
	"github.com/antigravity/skane-transit/internal/scheduler"
	"github.com/antigravity/skane-transit/internal/search"
)

func main() {
	log.Println("Starting transit routing service...")

	cfg := config.Load()
	client := feedclient.New(cfg.Operator, cfg.StaticKey, cfg.RealtimeKey)
	sched := scheduler.New(cfg, client, time.Local)

	log.Println("Running initial static refresh...")
	if err := sched.Bootstrap(context.Background()); err != nil {
		log.Fatalf("initial static refresh failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	searchParams := search.Params{
		WalkSpeedKmh:    cfg.WalkSpeedKmh,
		MaxWalkRadiusKm: cfg.MaxWalkRadiusKm,
	}
	queue := httpapi.NewQueue(sched, searchParams, cfg.MaxRaptorRounds, 64)
	go queue.Run(ctx)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.NewRouter(sched, queue),
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("Goodbye!")
}
