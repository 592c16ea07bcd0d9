// Package datasync provides backup export and import between YAML files and the local store.
package datasync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/store"
)

// BackupFileName is the file written by Exporter.WriteFile.
const BackupFileName = "entries.yml"

const backupVersion = 1

// EntryStore is the part of the local store used for backups.
type EntryStore interface {
	FindAll(ctx context.Context) ([]entry.Entry, error)
	FindByID(ctx context.Context, id string) (*entry.Entry, error)
	Upsert(ctx context.Context, e entry.Entry) error
}

var _ EntryStore = (*store.SQLiteStore)(nil)

// Backup is the YAML document of a backup file.
type Backup struct {
	Version    int           `yaml:"version"`
	ExportedAt time.Time     `yaml:"exported_at"`
	Entries    []entry.Entry `yaml:"entries"`
}

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	EntriesNew     int
	EntriesSkipped int
	EntriesUpdated int
	EntriesInvalid int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer reads backup entries and writes them to the local store.
type Importer struct {
	store  EntryStore
	writer io.Writer
}

// NewImporter creates a new Importer. Progress lines are written to writer.
func NewImporter(store EntryStore, writer io.Writer) *Importer {
	return &Importer{
		store:  store,
		writer: writer,
	}
}

// ImportFile imports the entries of the backup at path.
func (imp *Importer) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	backup, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return imp.ImportEntries(ctx, backup.Entries, opts)
}

// ImportEntries inserts entries that do not exist yet. Existing entries are
// skipped unless opts.UpdateExisting is set; invalid entries are reported and skipped.
func (imp *Importer) ImportEntries(ctx context.Context, entries []entry.Entry, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			fmt.Fprintf(imp.writer, "  [WARN]  %q is invalid: %v\n", e.ID, err)
			result.EntriesInvalid++
			continue
		}

		existing, err := imp.store.FindByID(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("FindByID(%s) > %w", e.ID, err)
		}

		if existing != nil {
			if !opts.UpdateExisting {
				fmt.Fprintf(imp.writer, "  [SKIP]  %q (%s)\n", e.Title, e.ID)
				result.EntriesSkipped++
				continue
			}
			if !opts.DryRun {
				if err := imp.store.Upsert(ctx, e); err != nil {
					return nil, fmt.Errorf("Upsert(%s) > %w", e.ID, err)
				}
			}
			fmt.Fprintf(imp.writer, "  [UPDATE]  %q (%s)\n", e.Title, e.ID)
			result.EntriesUpdated++
			continue
		}

		if !opts.DryRun {
			if err := imp.store.Upsert(ctx, e); err != nil {
				return nil, fmt.Errorf("Upsert(%s) > %w", e.ID, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [NEW]  %q (%s)\n", e.Title, e.ID)
		result.EntriesNew++
	}

	return &result, nil
}

// Exporter reads the local store and produces backups.
type Exporter struct {
	store EntryStore
	now   func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(store EntryStore) *Exporter {
	return &Exporter{
		store: store,
		now:   time.Now,
	}
}

// Export reads all entries from the local store.
func (e *Exporter) Export(ctx context.Context) (*Backup, error) {
	entries, err := e.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.FindAll() > %w", err)
	}
	return &Backup{
		Version:    backupVersion,
		ExportedAt: e.now().UTC(),
		Entries:    entries,
	}, nil
}

// WriteFile exports all entries to BackupFileName under dir and returns the file path.
func (e *Exporter) WriteFile(ctx context.Context, dir string) (string, error) {
	backup, err := e.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	path := filepath.Join(dir, BackupFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(backup); err != nil {
		return "", fmt.Errorf("yaml.Encode(%s) > %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("yaml.Encoder.Close() > %w", err)
	}
	return path, nil
}

// ReadFile parses a backup file.
func ReadFile(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	if backup.Version > backupVersion {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", backup.Version, backupVersion)
	}
	return &backup, nil
}
