package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DrPhilDSI/harmony-scheduler/internal/cache"
	"github.com/DrPhilDSI/harmony-scheduler/internal/config"
	"github.com/DrPhilDSI/harmony-scheduler/internal/httpapi"
	"github.com/DrPhilDSI/harmony-scheduler/internal/logger"
	"github.com/DrPhilDSI/harmony-scheduler/internal/metrics"
	"github.com/DrPhilDSI/harmony-scheduler/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduling HTTP API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewZerologLogger("httpapi")

	auditStore, err := newAuditStore(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer auditStore.Close()

	responseCache := newResponseCache(cfg.Cache)
	defer responseCache.Close()

	m := metrics.New()

	srv := httpapi.NewServer(auditStore, responseCache, m, log, httpapi.Config{
		RequestsPerSecond:   cfg.Server.RequestsPerSecond,
		Burst:               cfg.Server.Burst,
		MaxTimeLimitSeconds: cfg.Search.MaxTimeLimitSeconds,
	})

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		log.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
	return nil
}

func newAuditStore(dsn string) (store.AuditStore, error) {
	if dsn == "" {
		return store.NewMemory(), nil
	}
	return store.NewPostgres(dsn)
}

func newResponseCache(cfg config.CacheConfig) cache.ResponseCache {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.Addr == "" {
		return cache.NewMemory(ttl)
	}
	rc, err := cache.NewRedis(cfg.Addr, ttl)
	if err != nil {
		return cache.NewMemory(ttl)
	}
	return rc
}
