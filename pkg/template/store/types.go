package store

import (
	"context"
	"errors"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/engine"
)

// Common sentinel errors.
var (
	// ErrNotFound indicates no template exists with the requested id.
	ErrNotFound = errors.New("template not found")

	// ErrMissingTitle indicates a create/update without a title.
	ErrMissingTitle = errors.New("template title is required")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")

	// ErrReadOnly indicates a write against a read-only backend. The file
	// backend is edited on disk, not through the API.
	ErrReadOnly = errors.New("store is read-only")
)

// Store is the full read/write interface over template records. It embeds
// the read-only engine.Repository consumed by the resolver.
type Store interface {
	engine.Repository

	// List returns all templates in repository order (newest first),
	// regardless of status.
	List(ctx context.Context) ([]*template.Template, error)

	// Create persists a new template. A missing id is assigned, status
	// defaults to inactive, and conditions are normalized. Returns the
	// assigned id.
	Create(ctx context.Context, t *template.Template) (template.ID, error)

	// Update overwrites the stored template's mutable fields (title, body,
	// status, category, conditions). The id and creation time are
	// immutable.
	Update(ctx context.Context, t *template.Template) error

	// Delete removes the template. Deleted templates simply disappear from
	// subsequent resolutions; there is no soft delete.
	Delete(ctx context.Context, id template.ID) error

	// Duplicate copies an existing template under a new id with a
	// " (Copy)" title suffix and inactive status, conditions included.
	Duplicate(ctx context.Context, id template.ID) (template.ID, error)

	// Stats summarizes the template set for admin surfaces.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases backend resources.
	Close() error
}

// Stats summarizes the stored template set.
type Stats struct {
	Total      int                       `json:"total"`
	Active     int                       `json:"active"`
	Inactive   int                       `json:"inactive"`
	ByCategory map[template.Category]int `json:"by_category"`
}

// statsOf computes summary stats over a template list, classifying each
// template the way the admin list view displays it.
func statsOf(templates []*template.Template) *Stats {
	s := &Stats{ByCategory: make(map[template.Category]int)}
	s.Total = len(templates)
	for _, t := range templates {
		if t.Active() {
			s.Active++
		} else {
			s.Inactive++
		}
		s.ByCategory[engine.Classify(t)]++
	}
	return s
}
