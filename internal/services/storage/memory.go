package storage

import (
	"context"
	"encoding/json"
	"sync"

	"fingenius/internal/models"
)

// MemoryStore keeps profiles in process memory. Profiles are stored as
// encoded snapshots so callers never share slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string][]byte)}
}

// Put stores p under id, replacing any previous profile
func (m *MemoryStore) Put(_ context.Context, id string, p *models.FinancialProfile) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[id] = data
	return nil
}

// Get returns a copy of the profile stored under id
func (m *MemoryStore) Get(_ context.Context, id string) (*models.FinancialProfile, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.profiles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var p models.FinancialProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Len returns the number of stored profiles
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}
