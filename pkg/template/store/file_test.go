package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stencil-hq/atrium/pkg/template"
)

func writeTemplateFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const singleTemplateYAML = `templates:
  - id: tpl-front
    title: Landing
    status: active
    conditions:
      - kind: front_page
`

func TestFileSourceSingleFile(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", singleTemplateYAML)

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	active, err := source.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, template.ID("tpl-front"), active[0].ID)
	require.Len(t, active[0].Conditions, 1)
	assert.Equal(t, template.OperatorInclude, active[0].Conditions[0].Operator, "conditions are normalized on load")

	got, err := source.Get(context.Background(), "tpl-front")
	require.NoError(t, err)
	assert.Equal(t, "Landing", got.Title)

	_, err = source.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSourceDirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "20-second.yaml", `templates:
  - id: tpl-b
    title: Second
    status: active
    conditions:
      - kind: front_page
`)
	writeTemplateFile(t, dir, "10-first.yaml", `templates:
  - id: tpl-a
    title: First
    status: active
    conditions:
      - kind: front_page
`)
	writeTemplateFile(t, dir, "ignored.txt", "not yaml")

	source, err := NewFileSource(dir, nil)
	require.NoError(t, err)

	active, err := source.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, template.ID("tpl-a"), active[0].ID, "files load in lexical order")
	assert.Equal(t, template.ID("tpl-b"), active[1].ID)
}

func TestFileSourceDefaultsStatus(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", `templates:
  - id: tpl-draft
    title: Draft
    conditions:
      - kind: front_page
`)

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	got, err := source.Get(context.Background(), "tpl-draft")
	require.NoError(t, err)
	assert.Equal(t, template.StatusInactive, got.Status)

	active, err := source.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestFileSourceRejectsMissingID(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", `templates:
  - title: No ID
`)

	_, err := NewFileSource(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestFileSourceRejectsDuplicateID(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", `templates:
  - id: tpl-1
    title: One
  - id: tpl-1
    title: Two
`)

	_, err := NewFileSource(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template id")
}

func TestFileSourceRejectsBadYAML(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", "templates: [broken")

	_, err := NewFileSource(path, nil)
	require.Error(t, err)
}

func TestFileSourceReloadSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplateFile(t, dir, "templates.yaml", singleTemplateYAML)

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	writeTemplateFile(t, dir, "templates.yaml", `templates:
  - id: tpl-search
    title: Search Results
    status: active
    conditions:
      - kind: search
`)
	require.NoError(t, source.Reload(context.Background()))

	_, err = source.Get(context.Background(), "tpl-front")
	assert.ErrorIs(t, err, ErrNotFound, "old snapshot is replaced")
	_, err = source.Get(context.Background(), "tpl-search")
	assert.NoError(t, err)
}

func TestFileSourceReloadKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplateFile(t, dir, "templates.yaml", singleTemplateYAML)

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	writeTemplateFile(t, dir, "templates.yaml", "templates: [broken")
	require.Error(t, source.Reload(context.Background()))

	got, err := source.Get(context.Background(), "tpl-front")
	require.NoError(t, err, "failed reload must not clobber the working snapshot")
	assert.Equal(t, "Landing", got.Title)
}

func TestReadOnlyStore(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", singleTemplateYAML)

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)
	s := NewReadOnlyStore(source)
	ctx := context.Background()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Active)

	_, err = s.Create(ctx, &template.Template{Title: "X"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, s.Update(ctx, &template.Template{ID: "tpl-front", Title: "X"}), ErrReadOnly)
	assert.ErrorIs(t, s.Delete(ctx, "tpl-front"), ErrReadOnly)
	_, err = s.Duplicate(ctx, "tpl-front")
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.NoError(t, s.Close())
}

func TestLoadFile(t *testing.T) {
	path := writeTemplateFile(t, t.TempDir(), "templates.yaml", singleTemplateYAML)

	templates, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, template.ID("tpl-front"), templates[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
