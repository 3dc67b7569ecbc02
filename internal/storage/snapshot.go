package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
)

// MaxAutoSnapshots is how many automatic snapshots are kept.
const MaxAutoSnapshots = 5

// Snapshot errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupted = errors.New("snapshot integrity check failed")
	ErrSnapshotExists    = errors.New("snapshot already exists")
	ErrInvalidSnapshotID = errors.New("invalid snapshot ID")
	ErrInMemoryDatabase  = errors.New("in-memory databases cannot be snapshotted")
)

// Snapshot describes one saved copy of the database.
type Snapshot struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Products      int       `json:"products"`
	Sales         int       `json:"sales"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// SnapshotManager saves and restores copies of a SQLite store. Snapshots live
// in a "snapshots" directory next to the database, each as <id>.db plus an
// <id>.meta.json sidecar.
type SnapshotManager struct {
	store *SQLiteStorage
	dir   string
}

// NewSnapshotManager creates a manager for store, creating the snapshot directory.
func NewSnapshotManager(store *SQLiteStorage) (*SnapshotManager, error) {
	if store.dbPath == ":memory:" {
		return nil, ErrInMemoryDatabase
	}

	dir := filepath.Join(filepath.Dir(store.dbPath), "snapshots")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &SnapshotManager{store: store, dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (m *SnapshotManager) Dir() string {
	return m.dir
}

func (m *SnapshotManager) paths(id string) (dbPath, metaPath string, err error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return filepath.Join(m.dir, id+".db"), filepath.Join(m.dir, id+".meta.json"), nil
}

// Create copies the live database into a new snapshot. An empty id is
// replaced with a timestamped one.
func (m *SnapshotManager) Create(ctx context.Context, id, description string) (*Snapshot, error) {
	return m.create(ctx, id, description, false)
}

func (m *SnapshotManager) create(ctx context.Context, id, description string, auto bool) (*Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		id = "snapshot-" + time.Now().Format("2006-01-02-150405")
	}

	dbPath, metaPath, err := m.paths(id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, id)
	}

	snap := Snapshot{
		ID:          id,
		CreatedAt:   time.Now(),
		Description: description,
		IsAuto:      auto,
	}

	db := m.store.db
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&snap.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&snap.Products); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&snap.Sales); err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	// VACUUM INTO writes a consistent, compacted copy without blocking readers.
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dbPath); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	snap.FileSize = info.Size()

	if err := writeMetadata(metaPath, snap); err != nil {
		if rmErr := os.Remove(dbPath); rmErr != nil {
			slog.Error("Failed to remove snapshot after metadata error", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	slog.Info("Created snapshot", "id", snap.ID, "sales", snap.Sales, "auto", auto)
	return &snap, nil
}

// Auto creates an automatic snapshot before a destructive operation named by
// reason, then prunes automatic snapshots beyond MaxAutoSnapshots.
func (m *SnapshotManager) Auto(ctx context.Context, reason string) (*Snapshot, error) {
	id := fmt.Sprintf("auto-%s-%s", reason, time.Now().Format("2006-01-02-150405.000"))
	snap, err := m.create(ctx, id, "Automatic snapshot before "+reason, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic snapshot: %w", err)
	}

	if err := m.pruneAuto(ctx); err != nil {
		slog.Warn("Failed to prune automatic snapshots", "error", err)
	}
	return snap, nil
}

func (m *SnapshotManager) pruneAuto(ctx context.Context) error {
	snaps, err := m.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, s := range snaps {
		if !s.IsAuto {
			continue
		}
		kept++
		if kept > MaxAutoSnapshots {
			if err := m.Delete(ctx, s.ID); err != nil {
				slog.Debug("Failed to delete old automatic snapshot", "error", err, "id", s.ID)
			}
		}
	}
	return nil
}

// List returns every snapshot, newest first. Unreadable metadata is skipped.
func (m *SnapshotManager) List(_ context.Context) ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	snaps := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		snap, err := readMetadata(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snaps = append(snaps, *snap)
	}

	slices.SortFunc(snaps, func(a, b Snapshot) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return snaps, nil
}

// Get returns the metadata for one snapshot.
func (m *SnapshotManager) Get(_ context.Context, id string) (*Snapshot, error) {
	_, metaPath, err := m.paths(id)
	if err != nil {
		return nil, err
	}
	snap, err := readMetadata(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return snap, err
}

// Restore replaces the live database with a snapshot. The store is closed
// and must be reopened by the caller.
func (m *SnapshotManager) Restore(ctx context.Context, id string) error {
	snapPath, _, err := m.paths(id)
	if err != nil {
		return err
	}
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if _, err := os.Stat(snapPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}
	if err := verifyIntegrity(snapPath); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}

	// Fold the WAL into the main file so the pre-restore backup is complete.
	if _, err := m.store.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	live := m.store.dbPath
	backup := live + ".restore-backup"
	if err := copyFile(live, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}

	if err := copyFile(snapPath, live); err != nil {
		if restoreErr := copyFile(backup, live); restoreErr != nil {
			slog.Error("Failed to roll back after restore error", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	// A stale WAL would be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(live + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove stale SQLite file", "file", live+suffix, "error", err)
		}
	}
	if err := os.Remove(backup); err != nil {
		slog.Warn("Failed to remove restore backup", "error", err)
	}

	slog.Info("Restored snapshot", "id", id, "database", live)
	return nil
}

// Delete removes a snapshot and its metadata.
func (m *SnapshotManager) Delete(_ context.Context, id string) error {
	snapPath, metaPath, err := m.paths(id)
	if err != nil {
		return err
	}

	if err := os.Remove(snapPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
		slog.Debug("Failed to remove snapshot metadata", "error", err, "path", metaPath)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabaseCorrupted, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: integrity check: %s", common.ErrDatabaseCorrupted, result)
	}
	return nil
}

// copyFile copies src over dst through a temporary file and rename.
func copyFile(src, dst string) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	destination, err := os.Create(filepath.Clean(tmp))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeMetadata(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
