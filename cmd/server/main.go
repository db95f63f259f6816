// HTTP trigger surface: start/inspect product sync runs, sync single orders
// and receive order webhooks. Handlers stay thin; all behavior lives in the
// usecases.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"printify-surecart-sync/internal/adapters/printify"
	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/app/usecases"
	"printify-surecart-sync/internal/config"
	"printify-surecart-sync/internal/infra/httpx"
	"printify-surecart-sync/internal/infra/mysql"
	infraredis "printify-surecart-sync/internal/infra/redis"
	"printify-surecart-sync/internal/logging"
	"printify-surecart-sync/internal/storage"
)

func main() {
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

	redisClient, err := infraredis.New(cfg.Redis)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer redisClient.Close()
	progressStore := storage.NewRedisProgressStore(redisClient, cfg.Printify.ShopID, cfg.Sync.Retention, cfg.Sync.Retention)

	var refs storage.OrderRefStore
	db, err := mysql.New(cfg.Mysql)
	if err != nil {
		logger.Warn("mysql unavailable, order references kept in memory", zap.Error(err))
		refs = storage.NewMemoryOrderRefStore()
	} else {
		defer db.Close()
		if err := storage.EnsureSchema(context.Background(), db); err != nil {
			logger.Fatal("order schema", zap.Error(err))
		}
		refs = storage.NewMysqlOrderRefStore(db)
	}

	catalog := printify.NewClient(cfg.Printify, httpClient)
	store := surecart.NewClient(cfg.SureCart, httpClient, logger)

	syncProducts := usecases.NewSyncProducts(catalog, store, progressStore, cfg.Sync, logger, notifier)
	syncOrder := usecases.NewSyncOrder(catalog, store, refs, logger)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	registerRoutes(app, syncProducts, syncOrder, logger)

	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Fatal("server listen", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.Server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	_ = app.Shutdown()
}

// advancing guards against a second in-process driver loop; across processes
// the persisted progress record itself is the exclusion token.
var advancing atomic.Bool

func registerRoutes(app *fiber.App, syncProducts usecases.SyncProductsService, syncOrder usecases.SyncOrderService, logger *zap.Logger) {
	app.Post("/sync/start", func(c *fiber.Ctx) error {
		force := c.QueryBool("force")

		progress, err := syncProducts.Start(c.Context(), force)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		if !progress.Completed && advancing.CompareAndSwap(false, true) {
			go func() {
				defer advancing.Store(false)
				ctx := context.Background()
				for {
					result, err := syncProducts.Advance(ctx)
					if err != nil {
						logger.Error("sync advance failed", zap.Error(err))
						return
					}
					if result.Done {
						return
					}
				}
			}()
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"total":     progress.Total,
			"processed": progress.Processed,
			"resumed":   progress.Processed > 0,
		})
	})

	app.Get("/sync/status", func(c *fiber.Ctx) error {
		status, err := syncProducts.Status(c.Context())
		if errors.Is(err, usecases.ErrNotStarted) {
			return fiber.NewError(fiber.StatusNotFound, "sync not started")
		}
		if err != nil {
			return err
		}
		return c.JSON(status)
	})

	app.Get("/sync/completion", func(c *fiber.Ctx) error {
		completion, err := syncProducts.LastCompletion(c.Context())
		if err != nil {
			return err
		}
		if completion == nil {
			return fiber.NewError(fiber.StatusNotFound, "no completed sync")
		}
		return c.JSON(completion)
	})

	app.Post("/orders/:id/sync", func(c *fiber.Ctx) error {
		printifyOrderID, err := syncOrder.SyncOrder(c.Context(), c.Params("id"))
		switch {
		case errors.Is(err, usecases.ErrNoPrintifyProducts):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, usecases.ErrAlreadySynced):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, surecart.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		case err != nil:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"printify_order_id": printifyOrderID})
	})

	app.Post("/webhooks/order", func(c *fiber.Ctx) error {
		var payload struct {
			Type string `json:"type"`
			Data struct {
				Order struct {
					ID string `json:"id"`
				} `json:"order"`
			} `json:"data"`
		}
		if err := c.BodyParser(&payload); err != nil || payload.Type == "" || payload.Data.Order.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid webhook data")
		}

		var err error
		switch payload.Type {
		case "order.payment_succeeded":
			err = syncOrder.HandleOrderCreated(c.Context(), payload.Data.Order.ID)
		case "order.status_updated":
			err = syncOrder.HandleOrderUpdated(c.Context(), payload.Data.Order.ID)
		default:
			// Unknown event types are acknowledged and dropped.
		}
		if err != nil && !errors.Is(err, usecases.ErrNoPrintifyProducts) {
			logger.Error("webhook handling failed",
				zap.String("type", payload.Type),
				zap.String("order_id", payload.Data.Order.ID),
				zap.Error(err))
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"status": "success"})
	})
}

func maxDuration(a, b time.Duration) time.Duration {
	if a >= b {
		return a
	}
	return b
}
