package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"stencil-hq/atrium/pkg/template"
)

// SQLiteStore persists templates in a single SQLite file. It uses WAL mode
// for concurrent readers and keeps prepared statements for the hot read
// path (ListActive runs once per resolution pass).
//
// Repository order is creation time descending, newest first, with id as a
// tie-break so the order is stable across processes.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once

	listActiveStmt *sql.Stmt
	getStmt        *sql.Stmt
	condStmt       *sql.Stmt
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'inactive',
	category   TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS conditions (
	template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	operator    TEXT NOT NULL DEFAULT 'include',
	value       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (template_id, position)
);

CREATE INDEX IF NOT EXISTS idx_templates_status ON templates(status);
`

// NewSQLiteStore opens (creating if needed) a SQLite-backed template store
// with default settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path, BusyTimeout: 5 * time.Second})
}

// NewSQLiteStoreWithConfig opens a SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	s.listActiveStmt, err = s.db.Prepare(
		`SELECT id, title, body, status, category, created_at, updated_at
		 FROM templates WHERE status = 'active'
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}
	s.getStmt, err = s.db.Prepare(
		`SELECT id, title, body, status, category, created_at, updated_at
		 FROM templates WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}
	s.condStmt, err = s.db.Prepare(
		`SELECT kind, operator, value FROM conditions
		 WHERE template_id = ? ORDER BY position`)
	if err != nil {
		return fmt.Errorf("failed to prepare conditions statement: %w", err)
	}
	return nil
}

// ListActive implements engine.Repository.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]*template.Template, error) {
	rows, err := s.listActiveStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}
	return s.collect(ctx, rows)
}

// Get implements engine.Repository.
func (s *SQLiteStore) Get(ctx context.Context, id template.ID) (*template.Template, error) {
	t, err := s.scanOne(s.getStmt.QueryRowContext(ctx, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", id, err)
	}
	t.Conditions, err = s.loadConditions(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all templates, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*template.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, status, category, created_at, updated_at
		 FROM templates ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return s.collect(ctx, rows)
}

// Create persists a new template and returns its id.
func (s *SQLiteStore) Create(ctx context.Context, t *template.Template) (template.ID, error) {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return "", ErrMissingTitle
	}
	id := t.ID
	if id == "" {
		id = template.ID(uuid.NewString())
	}
	status := t.Status
	if status == "" {
		status = template.StatusInactive
	}
	now := time.Now().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO templates (id, title, body, status, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(id), t.Title, t.Body, string(status), string(t.Category), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert template: %w", err)
	}
	if err := insertConditions(ctx, tx, id, template.NormalizeConditions(t.Conditions)); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return id, nil
}

// Update overwrites the stored template's mutable fields.
func (s *SQLiteStore) Update(ctx context.Context, t *template.Template) error {
	if t == nil || t.ID == "" {
		return ErrNotFound
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE templates SET title = ?, body = ?, status = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Body, string(statusOrInactive(t.Status)), string(t.Category),
		time.Now().UnixNano(), string(t.ID))
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conditions WHERE template_id = ?`, string(t.ID)); err != nil {
		return fmt.Errorf("failed to clear conditions: %w", err)
	}
	if err := insertConditions(ctx, tx, t.ID, template.NormalizeConditions(t.Conditions)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Delete removes the template and its conditions.
func (s *SQLiteStore) Delete(ctx context.Context, id template.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicate copies an existing template under a new id.
func (s *SQLiteStore) Duplicate(ctx context.Context, id template.ID) (template.ID, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	src.ID = ""
	src.Title = src.Title + " (Copy)"
	src.Status = template.StatusInactive
	return s.Create(ctx, src)
}

// Stats summarizes the stored template set.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return statsOf(all), nil
}

// Close releases the database handle and prepared statements.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.listActiveStmt, s.getStmt, s.condStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteStore) collect(ctx context.Context, rows *sql.Rows) ([]*template.Template, error) {
	defer rows.Close()
	var templates []*template.Template
	for rows.Next() {
		t, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	for _, t := range templates {
		conds, err := s.loadConditions(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Conditions = conds
	}
	return templates, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanOne(row scanner) (*template.Template, error) {
	var t template.Template
	var id, status, category string
	var created, updated int64
	if err := row.Scan(&id, &t.Title, &t.Body, &status, &category, &created, &updated); err != nil {
		return nil, err
	}
	t.ID = template.ID(id)
	t.Status = template.Status(status)
	t.Category = template.Category(category)
	t.CreatedAt = time.Unix(0, created)
	t.UpdatedAt = time.Unix(0, updated)
	return &t, nil
}

func (s *SQLiteStore) loadConditions(ctx context.Context, id template.ID) ([]template.Condition, error) {
	rows, err := s.condStmt.QueryContext(ctx, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load conditions for %s: %w", id, err)
	}
	defer rows.Close()

	var conds []template.Condition
	for rows.Next() {
		var kind, operator, value string
		if err := rows.Scan(&kind, &operator, &value); err != nil {
			return nil, fmt.Errorf("failed to scan condition: %w", err)
		}
		conds = append(conds, template.Condition{
			Kind:     template.Kind(kind),
			Operator: template.Operator(operator),
			Value:    value,
		})
	}
	return conds, rows.Err()
}

func insertConditions(ctx context.Context, tx *sql.Tx, id template.ID, conds []template.Condition) error {
	for i, c := range conds {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conditions (template_id, position, kind, operator, value)
			 VALUES (?, ?, ?, ?, ?)`,
			string(id), i, string(c.Kind), string(c.Operator), c.Value)
		if err != nil {
			return fmt.Errorf("failed to insert condition %d: %w", i, err)
		}
	}
	return nil
}

func statusOrInactive(s template.Status) template.Status {
	if s == "" {
		return template.StatusInactive
	}
	return s
}
