package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kevinaaaquil/library/backend/config"
	"github.com/kevinaaaquil/library/backend/handlers"
	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config:", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		lg.Fatal("open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			lg.Warn("close store", "error", err)
		}
	}()

	opts := service.Options{Log: lg, MaxRetries: cfg.StoreMaxRetries}
	policy := service.LendingPolicy{IssuePeriod: cfg.IssuePeriod, FinePerDay: cfg.FinePerDay}

	var auth *handlers.AuthHandler
	if cfg.AuthEnabled() {
		auth, err = handlers.NewAuthHandler(cfg.JWTSecret, cfg.AuthEmail, cfg.AuthPass)
		if err != nil {
			lg.Fatal("auth", "error", err)
		}
	} else {
		lg.Warn("JWT_SECRET not set; write routes are unauthenticated")
	}

	r := handlers.NewRouter(handlers.RouterDeps{
		Catalog:    service.NewCatalog(st, opts),
		Membership: service.NewMembership(st, opts),
		Lending:    service.NewLending(st, policy, opts),
		Reporting:  service.NewReporting(st, opts),
		Log:        lg,
		Auth:       auth,
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		lg.Info("server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Warn("shutdown", "error", err)
	}
}
