package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stencil-hq/atrium/pkg/template"
)

// MemoryStore is an in-process template store. Templates are held newest
// first, matching the repository-order convention the resolver relies on
// for selection priority.
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	templates []*template.Template // newest first
	closed    bool
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// ListActive implements engine.Repository.
func (s *MemoryStore) ListActive(ctx context.Context) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	active := make([]*template.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if t.Active() {
			active = append(active, cloneTemplate(t))
		}
	}
	return active, nil
}

// Get implements engine.Repository.
func (s *MemoryStore) Get(ctx context.Context, id template.ID) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if t := s.find(id); t != nil {
		return cloneTemplate(t), nil
	}
	return nil, ErrNotFound
}

// List returns all templates, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	all := make([]*template.Template, 0, len(s.templates))
	for _, t := range s.templates {
		all = append(all, cloneTemplate(t))
	}
	return all, nil
}

// Create persists a new template and returns its id.
func (s *MemoryStore) Create(ctx context.Context, t *template.Template) (template.ID, error) {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return "", ErrMissingTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	record := cloneTemplate(t)
	if record.ID == "" {
		record.ID = template.ID(uuid.NewString())
	}
	if record.Status == "" {
		record.Status = template.StatusInactive
	}
	record.Conditions = template.NormalizeConditions(record.Conditions)
	record.CreatedAt = s.now()
	record.UpdatedAt = record.CreatedAt

	// Prepend: newest first.
	s.templates = append([]*template.Template{record}, s.templates...)
	return record.ID, nil
}

// Update overwrites the stored template's mutable fields.
func (s *MemoryStore) Update(ctx context.Context, t *template.Template) error {
	if t == nil || t.ID == "" {
		return ErrNotFound
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	existing := s.find(t.ID)
	if existing == nil {
		return ErrNotFound
	}
	existing.Title = t.Title
	existing.Body = t.Body
	if t.Status != "" {
		existing.Status = t.Status
	}
	existing.Category = t.Category
	existing.Conditions = template.NormalizeConditions(t.Conditions)
	existing.UpdatedAt = s.now()
	return nil
}

// Delete removes the template.
func (s *MemoryStore) Delete(ctx context.Context, id template.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i, t := range s.templates {
		if t.ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Duplicate copies an existing template under a new id.
func (s *MemoryStore) Duplicate(ctx context.Context, id template.ID) (template.ID, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	src := s.find(id)
	if src == nil {
		s.mu.Unlock()
		return "", ErrNotFound
	}
	copyOf := cloneTemplate(src)
	s.mu.Unlock()

	copyOf.ID = ""
	copyOf.Title = src.Title + " (Copy)"
	copyOf.Status = template.StatusInactive
	return s.Create(ctx, copyOf)
}

// Stats summarizes the stored template set.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return statsOf(all), nil
}

// Close marks the store closed; subsequent calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.templates = nil
	return nil
}

// find returns the stored record for id. Caller holds the lock.
func (s *MemoryStore) find(id template.ID) *template.Template {
	for _, t := range s.templates {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// cloneTemplate deep-copies a record so callers never share condition
// slices with the store.
func cloneTemplate(t *template.Template) *template.Template {
	c := *t
	if t.Conditions != nil {
		c.Conditions = make([]template.Condition, len(t.Conditions))
		copy(c.Conditions, t.Conditions)
	}
	return &c
}
