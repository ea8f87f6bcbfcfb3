package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store interfaces keep handlers independent of the backing implementation.
// The in-memory implementations below own their own locks; durable
// persistence is out of scope.

// ContentStore is a keyed record store for content
type ContentStore interface {
	Get(id string) (Content, error)
	List(filter func(Content) bool) []Content
	Create(item Content) Content
	Update(id string, item Content) error
	Delete(id string) error
	Count() int
}

// WorkspaceStore is a keyed record store for workspaces
type WorkspaceStore interface {
	Get(id string) (Workspace, error)
	List(filter func(Workspace) bool) []Workspace
	Create(item Workspace) Workspace
	Count() int
}

// InMemoryContentStore implements ContentStore with a mutex-guarded map
type InMemoryContentStore struct {
	mu    sync.RWMutex
	items map[string]Content
}

// NewInMemoryContentStore creates an empty content store
func NewInMemoryContentStore() *InMemoryContentStore {
	return &InMemoryContentStore{items: make(map[string]Content)}
}

// Get returns the content record, or NotFound
func (s *InMemoryContentStore) Get(id string) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Content{}, NotFoundError("Content not found")
	}
	return item, nil
}

// List returns all records matching the filter; nil matches everything
func (s *InMemoryContentStore) List(filter func(Content) bool) []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Content, 0)
	for _, item := range s.items {
		if filter == nil || filter(item) {
			results = append(results, item)
		}
	}
	return results
}

// Create assigns an id and timestamps and stores the record
func (s *InMemoryContentStore) Create(item Content) Content {
	now := time.Now().UTC()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = ContentStatusDraft
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return item
}

// Update replaces the record, refreshing the updated timestamp
func (s *InMemoryContentStore) Update(id string, item Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return NotFoundError("Content not found")
	}
	item.ID = id
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.items[id] = item
	return nil
}

// Delete removes the record, or returns NotFound
func (s *InMemoryContentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return NotFoundError("Content not found")
	}
	delete(s.items, id)
	return nil
}

// Count returns the number of stored records
func (s *InMemoryContentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// InMemoryWorkspaceStore implements WorkspaceStore with a mutex-guarded map
type InMemoryWorkspaceStore struct {
	mu    sync.RWMutex
	items map[string]Workspace
}

// NewInMemoryWorkspaceStore creates an empty workspace store
func NewInMemoryWorkspaceStore() *InMemoryWorkspaceStore {
	return &InMemoryWorkspaceStore{items: make(map[string]Workspace)}
}

// Get returns the workspace record, or NotFound
func (s *InMemoryWorkspaceStore) Get(id string) (Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Workspace{}, NotFoundError("Workspace not found")
	}
	return item, nil
}

// List returns all records matching the filter; nil matches everything
func (s *InMemoryWorkspaceStore) List(filter func(Workspace) bool) []Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Workspace, 0)
	for _, item := range s.items {
		if filter == nil || filter(item) {
			results = append(results, item)
		}
	}
	return results
}

// Create assigns an id and creation time and stores the record
func (s *InMemoryWorkspaceStore) Create(item Workspace) Workspace {
	item.ID = uuid.New().String()
	item.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return item
}

// Count returns the number of stored records
func (s *InMemoryWorkspaceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
