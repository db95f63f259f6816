// One-shot product sync: starts or resumes a run and steps it to completion.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"printify-surecart-sync/internal/adapters/printify"
	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/app/usecases"
	"printify-surecart-sync/internal/config"
	"printify-surecart-sync/internal/infra/httpx"
	infraredis "printify-surecart-sync/internal/infra/redis"
	"printify-surecart-sync/internal/logging"
	"printify-surecart-sync/internal/storage"
)

func main() {
	force := flag.Bool("force", false, "discard existing progress and resync everything")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewZap(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	httpClient := httpx.NewClient(maxDuration(cfg.Printify.Timeout, cfg.SureCart.Timeout))
	notifier := logging.NewNotifier(cfg.TelegramBot, httpClient)

	var progressStore storage.ProgressStore
	redisClient, err := infraredis.New(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, progress kept in memory for this run", zap.Error(err))
		progressStore = storage.NewMemoryProgressStore()
	} else {
		defer redisClient.Close()
		progressStore = storage.NewRedisProgressStore(redisClient, cfg.Printify.ShopID, cfg.Sync.Retention, cfg.Sync.Retention)
	}

	catalog := printify.NewClient(cfg.Printify, httpClient)
	store := surecart.NewClient(cfg.SureCart, httpClient, logger)

	syncProducts := usecases.NewSyncProducts(catalog, store, progressStore, cfg.Sync, logger, notifier)

	completion, err := syncProducts.Run(context.Background(), *force)
	if err != nil {
		logger.Error("product sync failed", zap.Error(err))
		notifier.NotifyError(fmt.Sprintf("Product sync failed: %v", err))
		os.Exit(1)
	}
	if completion != nil {
		logger.Info("product sync finished",
			zap.Int("created", completion.Created),
			zap.Int("updated", completion.Updated),
			zap.Int("errors", completion.Errors),
			zap.Int("total", completion.Total))
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a >= b {
		return a
	}
	return b
}
