package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cierrecaja/backend/internal/cache"
	"cierrecaja/backend/internal/closing"
	"cierrecaja/backend/internal/config"
	"cierrecaja/backend/internal/httpapi"
	"cierrecaja/backend/internal/salesledger"
	"cierrecaja/backend/internal/service"
	"cierrecaja/backend/internal/store"
	"cierrecaja/backend/internal/store/memory"
	pgstore "cierrecaja/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("invalid cash catalog configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		} else {
			repo = pg
			closers = append(closers, pg.Close)
			log.Println("repository: postgres")
		}
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	summaryCache := cache.SalesSummaryCache(cache.NoopSalesSummaryCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSalesSummaryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			summaryCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	var ledger salesledger.Source
	if cfg.LedgerUser != "" {
		ledger = salesledger.NewClient(cfg.LedgerUser, cfg.LedgerPassword, cfg.LedgerBaseURL, time.Duration(cfg.LedgerTimeoutSeconds)*time.Second)
		log.Println("sales ledger: configured")
	} else {
		log.Println("sales ledger: not configured; closings will be processed without reported totals")
	}

	svc := service.New(repo, engine, ledger, summaryCache, time.Duration(cfg.SalesCacheTTLSeconds)*time.Second, cfg.StoreID)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("closing backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// buildEngine assembles the cash catalog and reconciliation engine from
// configuration. Policy strings map to engine constants; unknown values
// keep the defaults.
func buildEngine(cfg config.Config) (*closing.Engine, error) {
	catalog, err := closing.NewCatalog(cfg.CoinDenominations, cfg.BillDenominations, cfg.SmallChangeThreshold)
	if err != nil {
		return nil, err
	}

	opts := closing.Options{
		BaseTarget:           cfg.BaseTarget,
		MaterialityThreshold: cfg.MaterialityThreshold,
	}
	if cfg.TieBreak == "higher" {
		opts.TiePolicy = closing.TiePreferHigher
	}
	if cfg.AdjustmentMode == "add" {
		opts.AdjustmentPolicy = closing.AdjustmentsAdd
	}

	return closing.NewEngine(catalog, opts)
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
