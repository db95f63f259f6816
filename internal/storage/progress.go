package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"printify-surecart-sync/internal/domain/model"
)

const (
	keySyncProgress  = "sync_progress"
	keySyncCompleted = "sync_completed"
)

// ProgressStore persists the single active sync run and its completion
// summary. Load returns (nil, nil) when no record exists.
type ProgressStore interface {
	Load(ctx context.Context) (*model.SyncProgress, error)
	Save(ctx context.Context, progress *model.SyncProgress) error
	Clear(ctx context.Context) error
	SaveCompletion(ctx context.Context, completion model.SyncCompletion) error
	LoadCompletion(ctx context.Context) (*model.SyncCompletion, error)
}

type redisProgressStore struct {
	client    *redis.Client
	keyPrefix string
	// ttl bounds how long an abandoned run survives; retention bounds how
	// long completed state stays visible.
	ttl       time.Duration
	retention time.Duration
}

func NewRedisProgressStore(client *redis.Client, shopID string, ttl, retention time.Duration) ProgressStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if retention <= 0 {
		retention = time.Hour
	}
	return &redisProgressStore{
		client:    client,
		keyPrefix: fmt.Sprintf("printify_sync:%s:", shopID),
		ttl:       ttl,
		retention: retention,
	}
}

func (s *redisProgressStore) Load(ctx context.Context) (*model.SyncProgress, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+keySyncProgress).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress load: %w", err)
	}

	var progress model.SyncProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("progress decode: %w", err)
	}
	return &progress, nil
}

func (s *redisProgressStore) Save(ctx context.Context, progress *model.SyncProgress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("progress encode: %w", err)
	}

	ttl := s.ttl
	if progress.Completed {
		// Completed records only need to outlive the display window; expiry
		// is the deferred deletion.
		ttl = s.retention
	}
	if err := s.client.Set(ctx, s.keyPrefix+keySyncProgress, raw, ttl).Err(); err != nil {
		return fmt.Errorf("progress save: %w", err)
	}
	return nil
}

func (s *redisProgressStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keyPrefix+keySyncProgress).Err(); err != nil {
		return fmt.Errorf("progress clear: %w", err)
	}
	return nil
}

func (s *redisProgressStore) SaveCompletion(ctx context.Context, completion model.SyncCompletion) error {
	raw, err := json.Marshal(completion)
	if err != nil {
		return fmt.Errorf("completion encode: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+keySyncCompleted, raw, s.retention).Err(); err != nil {
		return fmt.Errorf("completion save: %w", err)
	}
	return nil
}

func (s *redisProgressStore) LoadCompletion(ctx context.Context) (*model.SyncCompletion, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+keySyncCompleted).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("completion load: %w", err)
	}

	var completion model.SyncCompletion
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("completion decode: %w", err)
	}
	return &completion, nil
}
