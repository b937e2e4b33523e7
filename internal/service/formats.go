package service

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/iconidentify/vidfetch/internal/domain"
	"github.com/iconidentify/vidfetch/internal/extractor"
)

const (
	maxVideoFormats = 3
	maxAudioFormats = 1
	bytesPerMB      = 1024 * 1024
)

// ResolveFormats shapes an extractor descriptor into VideoInfo.
//
// Muxed formats (video and audio) are sorted by descending height and capped
// at three; the first audio-only format in extractor order is appended.
// Everything else is dropped.
func ResolveFormats(desc *extractor.Descriptor) *domain.VideoInfo {
	var video, audio []domain.Format

	for _, f := range desc.Formats {
		switch {
		case f.HasVideo() && f.HasAudio():
			video = append(video, domain.Format{
				FormatID:  f.FormatID,
				Quality:   qualityLabel(f.Height),
				Container: containerLabel(f.Ext),
				Size:      sizeLabel(f.Bytes()),
				URL:       f.URL,
				HasVideo:  true,
				HasAudio:  true,
			})
		case f.IsAudioOnly() && len(audio) < maxAudioFormats:
			audio = append(audio, domain.Format{
				FormatID:  f.FormatID,
				Quality:   domain.QualityAudioOnly,
				Container: domain.ContainerAudio,
				Size:      sizeLabel(f.Bytes()),
				URL:       f.URL,
				HasVideo:  false,
				HasAudio:  true,
			})
		}
	}

	slices.SortStableFunc(video, func(a, b domain.Format) int {
		return qualityRank(b.Quality) - qualityRank(a.Quality)
	})
	if len(video) > maxVideoFormats {
		video = video[:maxVideoFormats]
	}

	formats := make([]domain.Format, 0, len(video)+len(audio))
	formats = append(formats, video...)
	formats = append(formats, audio...)

	return &domain.VideoInfo{
		Title:     stringOr(desc.Title, domain.DefaultTitle),
		Thumbnail: stringOr(desc.Thumbnail, ""),
		Duration:  floatOr(desc.Duration, 0),
		Uploader:  stringOr(desc.Uploader, domain.DefaultUploader),
		Formats:   formats,
	}
}

func qualityLabel(height *float64) string {
	if height == nil {
		return domain.QualityUnknown
	}
	return strconv.FormatFloat(*height, 'f', -1, 64) + "p"
}

// qualityRank is the numeric height encoded in a quality label, or 0 when the
// label is not a plain "<digits>p".
func qualityRank(quality string) int {
	digits := strings.ReplaceAll(quality, "p", "")
	if digits == "" {
		return 0
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func containerLabel(ext string) string {
	if ext == "" {
		return domain.ContainerDefault
	}
	return strings.ToUpper(ext)
}

// sizeLabel renders bytes as megabytes with one decimal. Sizes that round to
// zero, including unreported ones, are "Unknown".
func sizeLabel(bytes float64) string {
	mb := math.Round(bytes/bytesPerMB*10) / 10
	if mb <= 0 {
		return domain.SizeUnknown
	}
	return fmt.Sprintf("%.1f MB", mb)
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func floatOr(f *float64, fallback float64) float64 {
	if f == nil {
		return fallback
	}
	return *f
}
