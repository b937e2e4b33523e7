package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/iconidentify/vidfetch/internal/domain"
	"github.com/iconidentify/vidfetch/internal/repository"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockMediaService is a test implementation of MediaService.
type mockMediaService struct {
	info        *domain.VideoInfo
	result      *domain.DownloadResult
	analyzeErr  error
	downloadErr error

	analyzeCalls  int
	downloadCalls int
	lastURL       string
	lastFormatID  string
}

func (m *mockMediaService) Analyze(ctx context.Context, url string) (*domain.VideoInfo, error) {
	m.analyzeCalls++
	m.lastURL = url
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	return m.info, nil
}

func (m *mockMediaService) Download(ctx context.Context, url, formatID string) (*domain.DownloadResult, error) {
	m.downloadCalls++
	m.lastURL = url
	m.lastFormatID = formatID
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.result, nil
}

// mockScratch implements FileResolver and ScratchStatter.
type mockScratch struct {
	paths      map[string]string
	resolveErr error
	stats      *repository.ScratchStats
	statsErr   error
}

func newMockScratch() *mockScratch {
	return &mockScratch{
		paths: make(map[string]string),
		stats: &repository.ScratchStats{},
	}
}

func (m *mockScratch) Resolve(ctx context.Context, id domain.DownloadID, filename string) (string, error) {
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	if p, ok := m.paths[id.String()+"/"+filename]; ok {
		return p, nil
	}
	return "", domain.ErrFileNotFound
}

func (m *mockScratch) Stats(ctx context.Context) (*repository.ScratchStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}
