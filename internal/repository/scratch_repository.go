package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/vidfetch/internal/config"
	"github.com/iconidentify/vidfetch/internal/domain"
)

// FilesystemScratchRepository implements ScratchRepository below a single root.
// Each download gets <root>/<uuid>; nothing is indexed in memory, so the
// filesystem is the only shared state between requests.
type FilesystemScratchRepository struct {
	root string
}

// NewFilesystemScratchRepository creates a scratch repository rooted at cfg.TempPath.
func NewFilesystemScratchRepository(cfg config.ScratchConfig) *FilesystemScratchRepository {
	return &FilesystemScratchRepository{
		root: cfg.TempPath,
	}
}

// Root returns the scratch root directory.
func (r *FilesystemScratchRepository) Root() string {
	return r.root
}

// Create makes a fresh download directory.
func (r *FilesystemScratchRepository) Create(ctx context.Context) (domain.DownloadID, string, error) {
	if err := os.MkdirAll(r.root, 0755); err != nil {
		return "", "", fmt.Errorf("create scratch root: %w", err)
	}

	id := domain.DownloadID(uuid.New().String())
	dir := filepath.Join(r.root, id.String())
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create scratch directory: %w", err)
	}

	return id, dir, nil
}

// Resolve returns the path of filename inside the download directory id.
func (r *FilesystemScratchRepository) Resolve(ctx context.Context, id domain.DownloadID, filename string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	if !isBaseName(filename) {
		return "", domain.ErrInvalidDownloadID
	}

	path := filepath.Join(r.root, id.String(), filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrFileNotFound
		}
		return "", fmt.Errorf("stat scratch file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", domain.ErrFileNotFound
	}

	return path, nil
}

// Remove deletes the download directory id.
func (r *FilesystemScratchRepository) Remove(ctx context.Context, id domain.DownloadID) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(r.root, id.String())); err != nil {
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	return nil
}

// Sweep deletes download directories last modified before cutoff. A
// directory's age is taken from the newest entry inside it, so a download
// still writing its .part file is never reclaimed. Entries that are not
// download directories are left alone.
func (r *FilesystemScratchRepository) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scratch root: %w", err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !entry.IsDir() || validateID(domain.DownloadID(entry.Name())) != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed concurrently.
			continue
		}
		dir := filepath.Join(r.root, entry.Name())
		if !lastModified(dir, info.ModTime()).Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", entry.Name(), err))
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

// Stats walks the scratch root and sums directory count and file sizes.
// FreeBytes is 0 when the filesystem cannot be queried.
func (r *FilesystemScratchRepository) Stats(ctx context.Context) (*ScratchStats, error) {
	stats := &ScratchStats{Root: r.root}

	if _, err := os.Stat(r.root); err != nil {
		return nil, fmt.Errorf("stat scratch root: %w", err)
	}

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == r.root {
			return nil
		}
		if d.IsDir() {
			if filepath.Dir(path) == r.root {
				stats.Directories++
			}
			return nil
		}
		if info, err := d.Info(); err == nil {
			stats.UsedBytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk scratch root: %w", err)
	}
	stats.FreeBytes = freeDiskSpace(r.root)

	return stats, nil
}

// lastModified returns the newest modification time among dir and its contents.
func lastModified(dir string, latest time.Time) time.Time {
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}

func validateID(id domain.DownloadID) error {
	if _, err := uuid.Parse(id.String()); err != nil {
		return domain.ErrInvalidDownloadID
	}
	// uuid.Parse also accepts urn and braced forms; only the canonical one is a directory name.
	if len(id) != 36 {
		return domain.ErrInvalidDownloadID
	}
	return nil
}

func isBaseName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}
