package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/vidfetch/internal/domain"
	"github.com/iconidentify/vidfetch/pkg/validator"
)

// MediaService is the subset of service.MediaService used by MediaHandler.
type MediaService interface {
	Analyze(ctx context.Context, url string) (*domain.VideoInfo, error)
	Download(ctx context.Context, url, formatID string) (*domain.DownloadResult, error)
}

// FileResolver locates downloaded files for the file route.
type FileResolver interface {
	Resolve(ctx context.Context, id domain.DownloadID, filename string) (string, error)
}

// MediaHandler handles the /api/video endpoints.
type MediaHandler struct {
	mediaSvc MediaService
	files    FileResolver
	logger   *slog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(mediaSvc MediaService, files FileResolver, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaSvc: mediaSvc,
		files:    files,
		logger:   logger,
	}
}

// AnalyzeRequest is the JSON request body for analyze.
// Pointer fields distinguish an absent key from an empty value.
type AnalyzeRequest struct {
	URL *string `json:"url" validate:"required"`
}

// DownloadRequest is the JSON request body for download.
type DownloadRequest struct {
	URL      *string `json:"url" validate:"required"`
	FormatID *string `json:"format_id" validate:"required"`
}

// AnalyzeResponse wraps resolved metadata.
type AnalyzeResponse struct {
	Success bool              `json:"success"`
	Data    *domain.VideoInfo `json:"data"`
}

// DownloadResponse describes a finished download.
type DownloadResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
}

// Site is one entry of the supported sites listing.
type Site struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// SitesResponse is the supported sites listing.
type SitesResponse struct {
	Success bool   `json:"success"`
	Sites   []Site `json:"sites"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var supportedSites = []Site{
	{Name: "YouTube", Domain: "youtube.com"},
	{Name: "TikTok", Domain: "tiktok.com"},
	{Name: "Instagram", Domain: "instagram.com"},
	{Name: "Twitter/X", Domain: "twitter.com"},
	{Name: "Facebook", Domain: "facebook.com"},
	{Name: "Douyin", Domain: "douyin.com"},
	{Name: "Vimeo", Domain: "vimeo.com"},
	{Name: "Dailymotion", Domain: "dailymotion.com"},
}

// Analyze handles POST /api/video/analyze
func (h *MediaHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrMissingURL.Error())
		return
	}

	info, err := h.mediaSvc.Analyze(r.Context(), *req.URL)
	if err != nil {
		h.writeDomainError(w, "analyze", err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success: true,
		Data:    info,
	})
}

// Download handles POST /api/video/download
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		if missing := validator.MissingFields(err); len(missing) > 0 {
			h.logger.Debug("download request incomplete", "missing", missing)
		}
		writeError(w, http.StatusBadRequest, domain.ErrMissingFields.Error())
		return
	}

	result, err := h.mediaSvc.Download(r.Context(), *req.URL, *req.FormatID)
	if err != nil {
		h.writeDomainError(w, "download", err)
		return
	}

	writeJSON(w, http.StatusOK, DownloadResponse{
		Success:     true,
		DownloadURL: result.DownloadURL,
		Filename:    result.Filename,
		Title:       result.Title,
	})
}

// SupportedSites handles GET /api/video/supported-sites
func (h *MediaHandler) SupportedSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SitesResponse{
		Success: true,
		Sites:   slices.Clone(supportedSites),
	})
}

// File handles GET /api/video/file/{downloadID}/{filename}
func (h *MediaHandler) File(w http.ResponseWriter, r *http.Request) {
	id := domain.DownloadID(chi.URLParam(r, "downloadID"))
	filename := chi.URLParam(r, "filename")
	// chi routes on RawPath when the client used non-default escapes
	// (e.g. %2C), leaving the parameter encoded.
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidDownloadID.Error())
			return
		}
		filename = decoded
	}

	path, err := h.files.Resolve(r.Context(), id, filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDownloadID):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrFileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("resolve file failed", "download_id", id, "filename", filename, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get file")
		}
		return
	}

	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, domain.ErrFileNotFound.Error())
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stat file")
		return
	}

	if mtype, err := mimetype.DetectReader(file); err == nil {
		w.Header().Set("Content-Type", mtype.String())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)

	// http.ServeContent handles Range requests automatically
	http.ServeContent(w, r, filename, stat.ModTime(), file)
}

// writeDomainError maps a service error to its status code. Server-side
// failures are logged; client errors are not.
func (h *MediaHandler) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, domain.MessageOf(err))
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, domain.MessageOf(err))
	case domain.KindExtraction, domain.KindPostCondition:
		h.logger.Error(op+" failed", "kind", domain.KindOf(err).String(), "error", err)
		writeError(w, http.StatusInternalServerError, domain.MessageOf(err))
	default:
		h.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}
