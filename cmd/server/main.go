package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lastlap/internal/config"
	"lastlap/internal/game"
	"lastlap/internal/transport/rest"
	"lastlap/internal/transport/ws"
)

func main() {
	log.Println("started")

	cfg := config.Load()

	// Session registry and the 1 Hz game clock
	registry := game.NewRegistry()
	clock := game.NewClock(registry)
	go clock.Run()
	defer clock.Stop()
	log.Println("game clock started")

	wsHandler := ws.NewHandler(registry)

	router := rest.NewRouter(&rest.Container{
		Config:    cfg,
		Registry:  registry,
		WSHandler: wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Last Lap server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  WS  /ws/{code}/{lobby|game|spectate}")
		log.Println("  GET /v1/sessions/{code}")
		log.Println("  GET /v1/sessions/{code}/qr")
		log.Println("  GET /health")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
