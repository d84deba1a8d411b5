package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"stencil-hq/atrium/pkg/template"
)

// FileSource is a read-only template repository backed by YAML files. The
// path can be a single file or a directory; in a directory every .yaml and
// .yml file is loaded, in lexical filename order, and document order within
// a file is preserved. That combined order is the repository order the
// resolver uses for selection priority.
//
// FileSource holds an immutable snapshot swapped atomically on Reload, so
// in-flight resolutions always see a consistent template set.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	templates []*template.Template
	byID      map[template.ID]*template.Template
}

// templateFile is the YAML document shape: a file holds one or more
// templates.
type templateFile struct {
	Templates []*template.Template `yaml:"templates"`
}

// NewFileSource creates a file-backed source and loads the initial
// snapshot.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileSource{path: path, logger: logger}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the template files and atomically replaces the snapshot.
func (s *FileSource) Reload(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(s.path)
		if err != nil {
			return fmt.Errorf("failed to read directory %q: %w", s.path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, filepath.Join(s.path, entry.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{s.path}
	}

	var templates []*template.Template
	byID := make(map[template.ID]*template.Template)
	for _, file := range files {
		loaded, err := LoadFile(file)
		if err != nil {
			return err
		}
		for _, t := range loaded {
			if t.ID == "" {
				return fmt.Errorf("template %q in %s has no id", t.Title, file)
			}
			if _, dup := byID[t.ID]; dup {
				return fmt.Errorf("duplicate template id %q in %s", t.ID, file)
			}
			t.Conditions = template.NormalizeConditions(t.Conditions)
			if t.Status == "" {
				t.Status = template.StatusInactive
			}
			templates = append(templates, t)
			byID[t.ID] = t
		}
	}

	s.mu.Lock()
	s.templates = templates
	s.byID = byID
	s.mu.Unlock()

	s.logger.Info("loaded templates from source",
		"path", s.path,
		"file_count", len(files),
		"template_count", len(templates),
	)
	return nil
}

// LoadFile parses one YAML template file. Lint tooling uses it directly to
// report per-file results.
func LoadFile(path string) ([]*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc templateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc.Templates, nil
}

// ListActive implements engine.Repository.
func (s *FileSource) ListActive(ctx context.Context) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]*template.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if t.Active() {
			active = append(active, t)
		}
	}
	return active, nil
}

// Get implements engine.Repository.
func (s *FileSource) Get(ctx context.Context, id template.ID) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

// Path returns the configured file or directory path.
func (s *FileSource) Path() string {
	return s.path
}

// ReadOnlyStore adapts a FileSource to the Store interface. Reads come
// from the current snapshot; writes return ErrReadOnly, since file-backed
// templates are edited on disk and picked up by Reload or the watcher.
type ReadOnlyStore struct {
	*FileSource
}

// NewReadOnlyStore wraps the source in the Store interface.
func NewReadOnlyStore(source *FileSource) *ReadOnlyStore {
	return &ReadOnlyStore{FileSource: source}
}

// List returns every template in the snapshot, any status.
func (s *ReadOnlyStore) List(ctx context.Context) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*template.Template, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

// Create implements Store. The file backend rejects writes.
func (s *ReadOnlyStore) Create(ctx context.Context, t *template.Template) (template.ID, error) {
	return "", ErrReadOnly
}

// Update implements Store. The file backend rejects writes.
func (s *ReadOnlyStore) Update(ctx context.Context, t *template.Template) error {
	return ErrReadOnly
}

// Delete implements Store. The file backend rejects writes.
func (s *ReadOnlyStore) Delete(ctx context.Context, id template.ID) error {
	return ErrReadOnly
}

// Duplicate implements Store. The file backend rejects writes.
func (s *ReadOnlyStore) Duplicate(ctx context.Context, id template.ID) (template.ID, error) {
	return "", ErrReadOnly
}

// Stats summarizes the current snapshot.
func (s *ReadOnlyStore) Stats(ctx context.Context) (*Stats, error) {
	all, _ := s.List(ctx)
	return statsOf(all), nil
}

// Close implements Store. The snapshot holds no resources.
func (s *ReadOnlyStore) Close() error {
	return nil
}
