package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"printify-surecart-sync/internal/adapters/printify"
	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/app/mapper"
	"printify-surecart-sync/internal/config"
	"printify-surecart-sync/internal/domain/model"
	"printify-surecart-sync/internal/logging"
	"printify-surecart-sync/internal/storage"
)

// ErrNotStarted is returned by Advance and Status when no run exists.
var ErrNotStarted = errors.New("sync: not started")

// SyncProductsService drives one resumable product sync run. Start creates
// or resumes the persisted run; Advance executes one bounded batch and
// checkpoints; callers re-invoke Advance until StepResult.Done. The service
// holds no in-memory run state, so any invocation, in this process or the
// next one, continues where the record left off.
type SyncProductsService interface {
	Start(ctx context.Context, force bool) (*model.SyncProgress, error)
	Advance(ctx context.Context) (StepResult, error)
	Run(ctx context.Context, force bool) (*model.SyncCompletion, error)
	Status(ctx context.Context) (*SyncStatus, error)
	LastCompletion(ctx context.Context) (*model.SyncCompletion, error)
}

type StepResult struct {
	Done      bool
	Processed int
	Total     int
}

// SyncStatus is the externally visible snapshot. The product snapshot itself
// is omitted: it can hold hundreds of entries and only the engine needs it.
type SyncStatus struct {
	model.SyncProgress
	Stalled bool `json:"stalled"`
}

type SyncProducts struct {
	catalog  printify.CatalogService
	store    surecart.StorefrontService
	progress storage.ProgressStore
	cfg      config.SyncConfig
	logger   *zap.Logger
	notifier logging.Notifier
	now      func() time.Time
}

func NewSyncProducts(
	catalog printify.CatalogService,
	store surecart.StorefrontService,
	progress storage.ProgressStore,
	cfg config.SyncConfig,
	logger *zap.Logger,
	notifier logging.Notifier,
) *SyncProducts {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 20 * time.Second
	}
	if cfg.StallThreshold <= 0 {
		cfg.StallThreshold = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = logging.NopNotifier()
	}
	return &SyncProducts{
		catalog:  catalog,
		store:    store,
		progress: progress,
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
	}
}

// Start begins a run or resumes the incomplete one. force discards any
// existing progress first. The full catalog listing happens exactly once per
// run, here; a failure aborts before any progress record is written.
func (s *SyncProducts) Start(ctx context.Context, force bool) (*model.SyncProgress, error) {
	if force {
		if err := s.progress.Clear(ctx); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.progress.Load(ctx)
		if err != nil {
			return nil, err
		}
		if existing != nil && !existing.Completed {
			s.logger.Info("resuming sync run",
				zap.Int("processed", existing.Processed),
				zap.Int("total", existing.Total))
			return existing, nil
		}
	}

	products, err := s.catalog.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("printify catalog fetch: %w", err)
	}

	now := s.now()
	progress := &model.SyncProgress{
		Total:         len(products),
		ForceResync:   force,
		StartedAt:     now,
		LastProcessed: now,
		Products:      products,
	}
	if len(products) == 0 {
		progress.Completed = true
	}
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	if progress.Completed {
		if err := s.recordCompletion(ctx, progress); err != nil {
			return nil, err
		}
	}

	s.logger.Info("sync run started",
		zap.Int("total", progress.Total),
		zap.Bool("force", force))
	s.notifier.Notify(fmt.Sprintf("Product sync started total=%d force=%t", progress.Total, force))

	return progress, nil
}

// Advance runs one batch step: up to BatchSize items, cut short once the
// soft wall-clock budget is spent. Item failures are recorded and never
// abort the step. The checkpoint is written before control returns, so a
// crash costs at most one batch on resume.
func (s *SyncProducts) Advance(ctx context.Context) (StepResult, error) {
	progress, err := s.progress.Load(ctx)
	if err != nil {
		return StepResult{}, err
	}
	if progress == nil {
		return StepResult{}, ErrNotStarted
	}
	if progress.Completed {
		// A completed record without a summary means the summary write was
		// lost after the last checkpoint; backfill it from the counters.
		completion, err := s.progress.LoadCompletion(ctx)
		if err != nil {
			return StepResult{}, err
		}
		if completion == nil {
			if err := s.recordCompletion(ctx, progress); err != nil {
				return StepResult{}, err
			}
		}
		return StepResult{Done: true, Processed: progress.Processed, Total: progress.Total}, nil
	}

	deadline := s.now().Add(s.cfg.StepBudget)
	end := progress.Processed + s.cfg.BatchSize
	if end > progress.Total {
		end = progress.Total
	}

	for progress.Processed < end {
		if progress.Processed > 0 && s.now().After(deadline) {
			s.logger.Debug("step budget exhausted",
				zap.Int("processed", progress.Processed))
			break
		}

		item := progress.Products[progress.Processed]
		outcome, itemErr := s.processItem(ctx, item)
		switch outcome {
		case model.OutcomeCreated:
			progress.Created++
		case model.OutcomeUpdated:
			progress.Updated++
		case model.OutcomeError:
			progress.Errors++
			progress.ErrorMessages = append(progress.ErrorMessages, itemErr.Error())
			s.logger.Warn("product sync item failed",
				zap.String("product_id", item.ID),
				zap.Error(itemErr))
		}
		progress.Processed++
	}

	if progress.Processed >= progress.Total {
		progress.Completed = true
	}
	progress.LastProcessed = s.now()
	if err := s.progress.Save(ctx, progress); err != nil {
		return StepResult{}, err
	}

	if progress.Completed {
		if err := s.recordCompletion(ctx, progress); err != nil {
			return StepResult{}, err
		}
	}

	return StepResult{
		Done:      progress.Completed,
		Processed: progress.Processed,
		Total:     progress.Total,
	}, nil
}

// recordCompletion writes the completion summary for a finished run and sends
// the notification. Every path that marks a run completed ends here.
func (s *SyncProducts) recordCompletion(ctx context.Context, progress *model.SyncProgress) error {
	completion := model.SyncCompletion{
		Time:    s.now(),
		Created: progress.Created,
		Updated: progress.Updated,
		Errors:  progress.Errors,
		Total:   progress.Total,
	}
	if err := s.progress.SaveCompletion(ctx, completion); err != nil {
		return err
	}
	summary := fmt.Sprintf("Product sync completed created=%d updated=%d errors=%d total=%d",
		completion.Created, completion.Updated, completion.Errors, completion.Total)
	s.logger.Info("sync run completed",
		zap.Int("created", completion.Created),
		zap.Int("updated", completion.Updated),
		zap.Int("errors", completion.Errors),
		zap.Int("total", completion.Total))
	if completion.Errors > 0 {
		s.notifier.NotifyError(summary)
	} else {
		s.notifier.NotifySuccess(summary)
	}
	return nil
}

// Run drives a whole sync to completion: the in-process equivalent of an
// external scheduler re-triggering Advance.
func (s *SyncProducts) Run(ctx context.Context, force bool) (*model.SyncCompletion, error) {
	if _, err := s.Start(ctx, force); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.Advance(ctx)
		if err != nil {
			return nil, err
		}
		if result.Done {
			break
		}
	}
	return s.LastCompletion(ctx)
}

func (s *SyncProducts) Status(ctx context.Context) (*SyncStatus, error) {
	progress, err := s.progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrNotStarted
	}

	status := &SyncStatus{
		SyncProgress: *progress,
		Stalled:      progress.Stalled(s.now(), s.cfg.StallThreshold),
	}
	status.Products = nil
	return status, nil
}

func (s *SyncProducts) LastCompletion(ctx context.Context) (*model.SyncCompletion, error) {
	return s.progress.LoadCompletion(ctx)
}

// processItem syncs one product end to end. Idempotent by construction: the
// destination lookup is keyed by the printify id metadata, so replaying an
// item updates rather than duplicates.
func (s *SyncProducts) processItem(ctx context.Context, item model.Product) (model.Outcome, error) {
	if item.ID == "" {
		return model.OutcomeError, errors.New("product missing id")
	}

	if !item.HasDetail() {
		detail, err := s.catalog.GetProduct(ctx, item.ID)
		if err != nil {
			return model.OutcomeError, fmt.Errorf("product %s: detail fetch: %w", item.ID, err)
		}
		detail.ID = item.ID
		item = detail
	}

	data := mapper.Map(item, s.now())

	existing, err := s.store.FindByPrintifyID(ctx, item.ID)
	if err != nil && !errors.Is(err, surecart.ErrNotFound) {
		return model.OutcomeError, fmt.Errorf("product %s: lookup: %w", item.ID, err)
	}

	if existing != nil {
		if _, err := s.store.UpdateProduct(ctx, existing.ID, data.Product); err != nil {
			return model.OutcomeError, fmt.Errorf("product %s: update: %w", item.ID, err)
		}
		if err := s.syncDependents(ctx, existing.ID, data); err != nil {
			return model.OutcomeError, fmt.Errorf("product %s: %w", item.ID, err)
		}
		return model.OutcomeUpdated, nil
	}

	created, err := s.store.CreateProduct(ctx, data.Product)
	if err != nil {
		return model.OutcomeError, fmt.Errorf("product %s: create: %w", item.ID, err)
	}
	if err := s.syncDependents(ctx, created.ID, data); err != nil {
		return model.OutcomeError, fmt.Errorf("product %s: %w", item.ID, err)
	}
	for _, imageURL := range data.Images {
		s.store.AttachMedia(ctx, created.ID, imageURL)
	}
	return model.OutcomeCreated, nil
}

func (s *SyncProducts) syncDependents(ctx context.Context, productID string, data model.ProductData) error {
	if err := s.store.UpsertPrices(ctx, productID, data.Prices); err != nil {
		return fmt.Errorf("prices: %w", err)
	}
	if err := s.store.UpsertVariants(ctx, productID, data.Variants); err != nil {
		return fmt.Errorf("variants: %w", err)
	}
	return nil
}
