package storage

import (
	"context"
	"encoding/json"
	"sync"

	"printify-surecart-sync/internal/domain/model"
)

// MemoryProgressStore is an in-process ProgressStore used by tests and by
// single-shot CLI runs that have no redis at hand. Values round-trip through
// JSON so stored snapshots can't be mutated through shared slices.
type MemoryProgressStore struct {
	mu         sync.Mutex
	progress   []byte
	completion []byte
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{}
}

func (s *MemoryProgressStore) Load(ctx context.Context) (*model.SyncProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return nil, nil
	}
	var progress model.SyncProgress
	if err := json.Unmarshal(s.progress, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *MemoryProgressStore) Save(ctx context.Context, progress *model.SyncProgress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = raw
	return nil
}

func (s *MemoryProgressStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = nil
	return nil
}

func (s *MemoryProgressStore) SaveCompletion(ctx context.Context, completion model.SyncCompletion) error {
	raw, err := json.Marshal(completion)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completion = raw
	return nil
}

func (s *MemoryProgressStore) LoadCompletion(ctx context.Context) (*model.SyncCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completion == nil {
		return nil, nil
	}
	var completion model.SyncCompletion
	if err := json.Unmarshal(s.completion, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

// MemoryOrderRefStore is the in-process OrderRefStore counterpart.
type MemoryOrderRefStore struct {
	mu    sync.Mutex
	refs  map[string]string
	notes map[string][]string
}

func NewMemoryOrderRefStore() *MemoryOrderRefStore {
	return &MemoryOrderRefStore{
		refs:  map[string]string{},
		notes: map[string][]string{},
	}
}

func (s *MemoryOrderRefStore) PrintifyOrderID(ctx context.Context, orderID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[orderID], nil
}

func (s *MemoryOrderRefStore) SavePrintifyOrderID(ctx context.Context, orderID, printifyOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[orderID] = printifyOrderID
	return nil
}

func (s *MemoryOrderRefStore) AppendNote(ctx context.Context, orderID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[orderID] = append(s.notes[orderID], note)
	return nil
}

func (s *MemoryOrderRefStore) Notes(ctx context.Context, orderID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes[orderID]...), nil
}
