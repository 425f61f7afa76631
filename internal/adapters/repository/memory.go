package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/pkg/metrics"
)

// MemoryStore keeps job records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.JobRecord
	closed  bool
	cfg     settings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryStore{records: make(map[string]model.JobRecord), cfg: cfg}
}

func (s *MemoryStore) Save(_ context.Context, rec model.JobRecord) error { //nolint:gocritic // hugeParam
	defer observe("save", time.Now())
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.cfg.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records[rec.JobID] = rec
	metrics.UpdateStoreRecords(len(s.records))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (model.JobRecord, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.JobRecord{}, ErrClosed
	}
	rec, ok := s.records[jobID]
	if !ok {
		return model.JobRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListBySubject(_ context.Context, subjectID string, limit int) ([]model.JobRecord, error) {
	defer observe("list", time.Now())
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]model.JobRecord, 0)
	for _, rec := range s.records {
		if rec.SubjectID == subjectID {
			out = append(out, rec)
		}
	}
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].JobID < out[j].JobID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.records), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
