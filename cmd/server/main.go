/*
main.go - Application entry point

PURPOSE:
  Starts the rota scheduling service: configuration, store, scheduling
  façade, HTTP router, graceful shutdown.

CONFIGURATION:
  Environment variables (optionally from .env):
    ADDR          listen address          (default :8080)
    DB_PATH       SQLite path, ":memory:" allowed (default rota.db)
    LOG_LEVEL     logrus level            (default info)
    ENVIRONMENT   development|staging|production
    WEEK_START    weekday name            (default monday)
    CORS_ORIGINS  comma-separated origins
  Flags override: -addr, -db.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM, stop accepting connections, drain for up to 30s,
  close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/rota-engine/api"
	"github.com/warp/rota-engine/config"
	"github.com/warp/rota-engine/logger"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	flag.Parse()

	logger.Init(cfg)
	log := logger.Get()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer store.Close()

	svc := rota.NewService(store)
	svc.SetWeekStart(cfg.WeekStart)
	svc.SetLogger(log)

	handler := api.NewHandler(svc)
	handler.Log = log
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", *addr).Info("rota service starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
