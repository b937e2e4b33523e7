package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/vidfetch/internal/repository"
)

const (
	serviceName    = "video-downloader-api"
	serviceVersion = "1.0.0"
)

// ScratchStatter reports scratch root usage.
type ScratchStatter interface {
	Stats(ctx context.Context) (*repository.ScratchStats, error)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	scratch ScratchStatter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(scratch ScratchStatter) *HealthHandler {
	return &HealthHandler{
		scratch: scratch,
	}
}

// HealthResponse is the fixed liveness body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse is the JSON response for readiness checks.
type ReadyResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Scratch   *ScratchUsage `json:"scratch,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ScratchUsage summarizes the scratch root.
type ScratchUsage struct {
	Path        string `json:"path"`
	Directories int    `json:"directories"`
	UsedBytes   int64  `json:"used_bytes"`
	UsedHuman   string `json:"used_human"`
	FreeBytes   int64  `json:"free_bytes"`
	FreeHuman   string `json:"free_human"`
}

// Health handles GET /health and GET /api/video/health. The body is fixed
// and nothing is probed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.scratch.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Error:     "scratch directory unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, ReadyResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Scratch: &ScratchUsage{
			Path:        stats.Root,
			Directories: stats.Directories,
			UsedBytes:   stats.UsedBytes,
			UsedHuman:   humanize.IBytes(uint64(stats.UsedBytes)),
			FreeBytes:   stats.FreeBytes,
			FreeHuman:   humanize.IBytes(uint64(stats.FreeBytes)),
		},
	})
}
