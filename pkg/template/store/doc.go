// Package store provides template repositories: the persistence
// collaborators the resolution engine reads from.
//
// Three backends are available:
//
//   - MemoryStore: in-process, ordered newest first, full read/write. The
//     default for tests and embedded use.
//   - SQLiteStore: durable single-file storage (modernc.org/sqlite, WAL
//     mode) with the same read/write interface.
//   - FileSource: read-only snapshots loaded from YAML template files,
//     optionally hot-reloaded via an fsnotify watcher. Suited to
//     GitOps-style authoring where templates live in version control.
//
// All backends implement engine.Repository. Write operations normalize
// conditions on the way in (template.NormalizeConditions), so records with
// invalid conditions never reach persistence.
package store
