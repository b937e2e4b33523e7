package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconidentify/vidfetch/internal/config"
	"github.com/iconidentify/vidfetch/internal/domain"
)

func newTestScratchRepo(t *testing.T) *FilesystemScratchRepository {
	t.Helper()
	return NewFilesystemScratchRepository(config.ScratchConfig{
		TempPath: filepath.Join(t.TempDir(), "scratch"),
	})
}

func TestFilesystemScratchRepository_Create(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	id1, dir1, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	id2, dir2, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if id1 == id2 {
		t.Error("ids should be unique")
	}
	if dir1 == dir2 {
		t.Error("directories should be unique")
	}
	if filepath.Dir(dir1) != repo.Root() {
		t.Errorf("dir %q should be directly under root %q", dir1, repo.Root())
	}
	if info, err := os.Stat(dir1); err != nil || !info.IsDir() {
		t.Errorf("directory should exist: %v", err)
	}
}

func TestFilesystemScratchRepository_Resolve(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	id, dir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("data"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name     string
		id       domain.DownloadID
		filename string
		wantErr  error
	}{
		{"existing file", id, "clip.mp4", nil},
		{"missing file", id, "other.mp4", domain.ErrFileNotFound},
		{"directory", id, "sub", domain.ErrFileNotFound},
		{"traversal", id, "../clip.mp4", domain.ErrInvalidDownloadID},
		{"dot dot", id, "..", domain.ErrInvalidDownloadID},
		{"empty name", id, "", domain.ErrInvalidDownloadID},
		{"backslash", id, `a\b.mp4`, domain.ErrInvalidDownloadID},
		{"non uuid id", domain.DownloadID("../../etc"), "passwd", domain.ErrInvalidDownloadID},
		{"braced uuid", domain.DownloadID("{" + id.String() + "}"), "clip.mp4", domain.ErrInvalidDownloadID},
		{"unknown id", domain.DownloadID("00000000-0000-4000-8000-000000000000"), "clip.mp4", domain.ErrFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := repo.Resolve(ctx, tt.id, tt.filename)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if path != filepath.Join(dir, tt.filename) {
				t.Errorf("Resolve() = %q, want %q", path, filepath.Join(dir, tt.filename))
			}
		})
	}
}

func TestFilesystemScratchRepository_Remove(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	id, dir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial.part"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := repo.Remove(ctx, id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should be gone")
	}

	if err := repo.Remove(ctx, domain.DownloadID("not-a-uuid")); !errors.Is(err, domain.ErrInvalidDownloadID) {
		t.Errorf("Remove(invalid) error = %v, want ErrInvalidDownloadID", err)
	}
}

func TestFilesystemScratchRepository_Sweep(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	oldID, oldDir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, newDir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Foreign entries in the root must survive any sweep.
	foreign := filepath.Join(repo.Root(), "keep-me")
	if err := os.Mkdir(foreign, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{oldDir, foreign} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed, err := repo.Sweep(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Errorf("old directory %s should be removed", oldID)
	}
	if _, err := os.Stat(newDir); err != nil {
		t.Error("recent directory should survive")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign directory should survive")
	}
}

func TestFilesystemScratchRepository_Sweep_ActiveDownload(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	_, activeDir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, idleDir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	part := filepath.Join(activeDir, "Long Clip.mp4.part")
	stale := filepath.Join(idleDir, "Old Clip.mp4")
	for _, f := range []string{part, stale} {
		if err := os.WriteFile(f, []byte("partial"), 0644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	// The .part file keeps growing; only the directory entries look old.
	for _, p := range []string{activeDir, idleDir, stale} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed, err := repo.Sweep(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(part); err != nil {
		t.Errorf("in-progress download should survive: %v", err)
	}
	if _, err := os.Stat(idleDir); !os.IsNotExist(err) {
		t.Error("idle directory should be removed")
	}
}

func TestFilesystemScratchRepository_Sweep_MissingRoot(t *testing.T) {
	repo := newTestScratchRepo(t)

	removed, err := repo.Sweep(context.Background(), time.Now())
	if err != nil {
		t.Errorf("Sweep on missing root should not fail: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestFilesystemScratchRepository_Stats(t *testing.T) {
	repo := newTestScratchRepo(t)
	ctx := context.Background()

	if _, err := repo.Stats(ctx); err == nil {
		t.Error("Stats on missing root should fail")
	}

	_, dir, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), make([]byte, 100), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, _, err := repo.Create(ctx); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Directories != 2 {
		t.Errorf("Directories = %d, want 2", stats.Directories)
	}
	if stats.UsedBytes != 100 {
		t.Errorf("UsedBytes = %d, want 100", stats.UsedBytes)
	}
	if stats.Root != repo.Root() {
		t.Errorf("Root = %q, want %q", stats.Root, repo.Root())
	}
	if stats.FreeBytes <= 0 {
		t.Errorf("FreeBytes = %d, want > 0", stats.FreeBytes)
	}
}
