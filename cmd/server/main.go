package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/officeparty/sabotage/internal/auth"
	"github.com/officeparty/sabotage/internal/handlers"
	"github.com/officeparty/sabotage/internal/history"
	"github.com/officeparty/sabotage/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	srv := handlers.NewGameServer(logger)

	// Optional action history queue.
	if os.Getenv("REDIS_ADDR") != "" {
		rec, err := history.Connect(context.Background())
		if err != nil {
			logger.Warnf("history recorder disabled: %v", err)
		} else {
			srv.SetRecorder(rec)
			defer rec.Close()
		}
	}

	// TTL sweeper for empty and expired rooms.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Registry.RunSweeper(ctx)

	mux := http.NewServeMux()
	mux.Handle("/", middleware.LogMiddleware(logger)(handlers.StatusHandler(srv)))
	mux.Handle("/stats", middleware.LogMiddleware(logger)(handlers.StatsHandler(srv)))
	mux.Handle("/rooms/", middleware.LogMiddleware(logger)(handlers.RoomQRHandler(srv)))
	mux.Handle("/ws", handlers.RoomWSHandler(logger, srv))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
