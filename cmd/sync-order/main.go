// Syncs a single SureCart order to Printify by id.
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
	"printify-surecart-sync/internal/infra/mysql"
	"printify-surecart-sync/internal/logging"
	"printify-surecart-sync/internal/storage"
)

func main() {
	flag.Parse()
	orderID := flag.Arg(0)
	if orderID == "" {
		fmt.Fprintln(os.Stderr, "usage: sync-order <surecart-order-id>")
		os.Exit(2)
	}

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

	var refs storage.OrderRefStore
	db, err := mysql.New(cfg.Mysql)
	if err != nil {
		logger.Warn("mysql unavailable, order references kept in memory", zap.Error(err))
		refs = storage.NewMemoryOrderRefStore()
	} else {
		defer db.Close()
		if err := storage.EnsureSchema(context.Background(), db); err != nil {
			logger.Error("order schema", zap.Error(err))
			os.Exit(1)
		}
		refs = storage.NewMysqlOrderRefStore(db)
	}

	catalog := printify.NewClient(cfg.Printify, httpClient)
	store := surecart.NewClient(cfg.SureCart, httpClient, logger)

	syncOrder := usecases.NewSyncOrder(catalog, store, refs, logger)

	printifyOrderID, err := syncOrder.SyncOrder(context.Background(), orderID)
	if err != nil {
		logger.Error("order sync failed", zap.String("order_id", orderID), zap.Error(err))
		os.Exit(1)
	}

	fmt.Println(printifyOrderID)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a >= b {
		return a
	}
	return b
}
