// Package draftstore keeps quote wizard drafts between requests, either in
// process memory or in Redis.
package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/domain/wizard"
)

// commitTTL bounds how long a crashed commit can block its draft
const commitTTL = 2 * time.Minute

type draftKey struct {
	tenantID uuid.UUID
	id       uuid.UUID
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore holds drafts in a map. Drafts are stored serialized so callers
// never share a *wizard.Draft with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	drafts      map[draftKey]memoryEntry
	commits     map[draftKey]time.Time
	ttl         time.Duration
	cleanupTick time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

var _ repository.DraftRepository = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose drafts expire ttl after their last save.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	s := &MemoryStore{
		drafts:      make(map[draftKey]memoryEntry),
		commits:     make(map[draftKey]time.Time),
		ttl:         ttl,
		cleanupTick: cleanupInterval,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	// Start background cleanup goroutine
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) Save(_ context.Context, draft *wizard.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draftKey{draft.TenantID, draft.ID}] = memoryEntry{
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, tenantID, id uuid.UUID) (*wizard.Draft, error) {
	s.mu.RLock()
	entry, ok := s.drafts[draftKey{tenantID, id}]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}

	var draft wizard.Draft
	if err := json.Unmarshal(entry.data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *MemoryStore) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey{tenantID, id})
	delete(s.commits, draftKey{tenantID, id})
	return nil
}

func (s *MemoryStore) AcquireCommit(_ context.Context, tenantID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey{tenantID, id}
	now := s.now()
	if until, held := s.commits[key]; held && now.Before(until) {
		return false, nil
	}
	s.commits[key] = now.Add(commitTTL)
	return true, nil
}

func (s *MemoryStore) ReleaseCommit(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commits, draftKey{tenantID, id})
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// cleanupLoop periodically removes expired drafts
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes expired drafts and stale commit marks
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.drafts {
		if now.After(entry.expiresAt) {
			delete(s.drafts, key)
		}
	}
	for key, until := range s.commits {
		if now.After(until) {
			delete(s.commits, key)
		}
	}
}

// Len returns the number of stored drafts, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
