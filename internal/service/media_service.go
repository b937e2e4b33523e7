package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/vidfetch/internal/config"
	"github.com/iconidentify/vidfetch/internal/domain"
	"github.com/iconidentify/vidfetch/internal/extractor"
	"github.com/iconidentify/vidfetch/internal/repository"
	"github.com/iconidentify/vidfetch/pkg/validator"
)

const (
	analyzePrefix  = "Failed to extract video info"
	downloadPrefix = "Failed to download video"

	outputTemplate = "%(title)s.%(ext)s"
)

// MediaService resolves formats and downloads media through an Extractor.
type MediaService struct {
	extractor    extractor.Extractor
	scratch      repository.ScratchRepository
	scratchCfg   config.ScratchConfig
	extractorCfg config.ExtractorConfig
	logger       *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(
	ex extractor.Extractor,
	scratch repository.ScratchRepository,
	scratchCfg config.ScratchConfig,
	extractorCfg config.ExtractorConfig,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		extractor:    ex,
		scratch:      scratch,
		scratchCfg:   scratchCfg,
		extractorCfg: extractorCfg,
		logger:       logger,
	}
}

// Analyze probes rawURL and returns its normalized metadata.
func (s *MediaService) Analyze(ctx context.Context, rawURL string) (*domain.VideoInfo, error) {
	u, err := normalizeURL("analyze", rawURL)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, u)
}

func (s *MediaService) analyze(ctx context.Context, u string) (*domain.VideoInfo, error) {
	desc, err := s.extractor.Probe(ctx, u, extractor.ProbeOptions())
	if err != nil {
		s.logger.Error("probe failed", "url", u, "error", err)
		return nil, domain.NewExtractionError("analyze", analyzePrefix, err)
	}

	info := ResolveFormats(desc)
	s.logger.Info("media analyzed",
		"url", u,
		"title", info.Title,
		"formats", len(info.Formats),
		"raw_formats", len(desc.Formats),
	)
	return info, nil
}

// Download fetches formatID of rawURL into a fresh scratch directory.
func (s *MediaService) Download(ctx context.Context, rawURL, formatID string) (*domain.DownloadResult, error) {
	if formatID == "" {
		return nil, domain.NewValidationError("download", domain.ErrMissingFields)
	}
	u, err := normalizeURL("download", rawURL)
	if err != nil {
		return nil, err
	}

	if s.extractorCfg.VerifyFormatID {
		info, err := s.analyze(ctx, u)
		if err != nil {
			return nil, err
		}
		if !info.HasFormat(formatID) {
			return nil, domain.NewValidationError("download", domain.ErrFormatNotOffered)
		}
	}

	id, dir, err := s.scratch.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	opts := extractor.FetchOptions(formatID, filepath.Join(dir, outputTemplate))
	desc, err := s.extractor.Fetch(ctx, u, opts)
	if err != nil {
		s.logger.Error("fetch failed",
			"url", u,
			"format_id", formatID,
			"download_id", id,
			"error", err,
		)
		s.discard(ctx, id)
		return nil, domain.NewExtractionError("download", downloadPrefix, err)
	}

	path, size, err := locateOutput(dir, desc.OutputPath())
	if err != nil {
		s.logger.Error("downloaded file missing",
			"url", u,
			"format_id", formatID,
			"download_id", id,
			"reported_path", desc.OutputPath(),
			"error", err,
		)
		s.discard(ctx, id)
		return nil, &domain.Error{
			Kind:    domain.KindPostCondition,
			Op:      "download",
			Message: domain.ErrDownloadFailed.Error(),
			Err:     errors.Join(domain.ErrDownloadFailed, err),
		}
	}

	filename := filepath.Base(path)
	title := domain.DefaultDownloadTitle
	if desc.Title != nil {
		title = *desc.Title
	}

	s.logger.Info("media downloaded",
		"url", u,
		"format_id", formatID,
		"download_id", id,
		"filename", filename,
		"size", humanize.IBytes(uint64(size)),
	)

	return &domain.DownloadResult{
		DownloadID:  id,
		Filename:    filename,
		DownloadURL: domain.FileURL(id, filename),
		Title:       title,
		Path:        path,
		Size:        size,
	}, nil
}

// discard removes a failed download's directory unless failures are kept.
func (s *MediaService) discard(ctx context.Context, id domain.DownloadID) {
	if s.scratchCfg.KeepFailed {
		return
	}
	if err := s.scratch.Remove(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Warn("failed to remove scratch directory", "download_id", id, "error", err)
	}
}

// locateOutput checks that the extractor's reported path is a regular file
// directly inside dir.
func locateOutput(dir, reported string) (string, int64, error) {
	if reported == "" {
		return "", 0, errors.New("extractor reported no output path")
	}

	path := reported
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	path = filepath.Clean(path)
	if filepath.Dir(path) != filepath.Clean(dir) {
		return "", 0, fmt.Errorf("output %q is outside the download directory", reported)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, fmt.Errorf("output %q does not exist", reported)
		}
		return "", 0, fmt.Errorf("stat output: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", 0, fmt.Errorf("output %q is not a regular file", reported)
	}

	return path, info.Size(), nil
}

// normalizeURL trims rawURL and checks it is an absolute URL.
func normalizeURL(op, rawURL string) (string, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return "", domain.NewValidationError(op, domain.ErrEmptyURL)
	}
	if !validator.IsValidURL(u) {
		return "", domain.NewValidationError(op, domain.ErrInvalidURL)
	}
	return u, nil
}
