package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stencil-hq/atrium/pkg/template"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "templates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &template.Template{
		Title:    "Landing",
		Body:     "<section>hero</section>",
		Status:   template.StatusActive,
		Category: template.CategoryFullPage,
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
			{Kind: template.KindDevice, Operator: template.OperatorExclude, Value: "mobile"},
		},
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Landing", got.Title)
	assert.Equal(t, "<section>hero</section>", got.Body)
	assert.Equal(t, template.StatusActive, got.Status)
	assert.Equal(t, template.CategoryFullPage, got.Category)
	require.Len(t, got.Conditions, 2)
	assert.Equal(t, template.KindFrontPage, got.Conditions[0].Kind, "condition order survives persistence")
	assert.Equal(t, template.OperatorExclude, got.Conditions[1].Operator)
	assert.Equal(t, "mobile", got.Conditions[1].Value)
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreCreateRequiresTitle(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.Create(context.Background(), &template.Template{Title: " "})
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestSQLiteStoreListActiveOrder(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &template.Template{Title: "Draft"})
	require.NoError(t, err)
	older, err := s.Create(ctx, &template.Template{Title: "Older", Status: template.StatusActive})
	require.NoError(t, err)
	newer, err := s.Create(ctx, &template.Template{Title: "Newer", Status: template.StatusActive})
	require.NoError(t, err)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newer, active[0].ID, "newest first")
	assert.Equal(t, older, active[1].ID)
}

func TestSQLiteStoreUpdate(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &template.Template{
		Title: "Before",
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage},
		},
	})
	require.NoError(t, err)

	err = s.Update(ctx, &template.Template{
		ID:     id,
		Title:  "After",
		Status: template.StatusActive,
		Conditions: []template.Condition{
			{Kind: template.KindSearch},
			{Kind: template.KindNotFound},
		},
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, template.StatusActive, got.Status)
	require.Len(t, got.Conditions, 2, "conditions are replaced wholesale")
	assert.Equal(t, template.KindSearch, got.Conditions[0].Kind)

	err = s.Update(ctx, &template.Template{ID: "missing", Title: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreDeleteCascades(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &template.Template{
		Title: "Doomed",
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage},
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM conditions WHERE template_id = ?`, string(id)).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "conditions cascade on delete")

	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestSQLiteStoreDuplicate(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &template.Template{
		Title:  "Campaign",
		Status: template.StatusActive,
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage},
		},
	})
	require.NoError(t, err)

	copyID, err := s.Duplicate(ctx, id)
	require.NoError(t, err)
	require.NotEqual(t, id, copyID)

	copied, err := s.Get(ctx, copyID)
	require.NoError(t, err)
	assert.Equal(t, "Campaign (Copy)", copied.Title)
	assert.Equal(t, template.StatusInactive, copied.Status)
	assert.Len(t, copied.Conditions, 1)
}

func TestSQLiteStoreStats(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &template.Template{Title: "Site Footer", Status: template.StatusActive})
	require.NoError(t, err)
	_, err = s.Create(ctx, &template.Template{Title: "Draft"})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 1, stats.ByCategory[template.CategoryFooter])
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := s.Create(ctx, &template.Template{Title: "Persistent", Status: template.StatusActive})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Persistent", got.Title)
}
