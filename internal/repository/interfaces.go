package repository

import (
	"context"
	"time"

	"github.com/iconidentify/vidfetch/internal/domain"
)

// ScratchRepository manages request-scoped download directories.
type ScratchRepository interface {
	// Create makes a fresh, uniquely named directory for one download.
	Create(ctx context.Context) (domain.DownloadID, string, error)

	// Resolve returns the on-disk path of filename inside a download directory.
	Resolve(ctx context.Context, id domain.DownloadID, filename string) (string, error)

	// Remove deletes a download directory and everything in it.
	Remove(ctx context.Context, id domain.DownloadID) error

	// Sweep deletes download directories last modified before cutoff.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)

	// Stats reports usage of the scratch root.
	Stats(ctx context.Context) (*ScratchStats, error)
}

// ScratchStats contains scratch root usage.
type ScratchStats struct {
	Root        string
	Directories int
	UsedBytes   int64
	FreeBytes   int64
}
