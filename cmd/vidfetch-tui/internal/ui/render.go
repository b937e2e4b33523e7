package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/iconidentify/vidfetch/pkg/client"
)

var formatHeaders = []string{"ID", "QUALITY", "FORMAT", "SIZE", "STREAMS"}

// formatRow returns the table cells for one format.
func formatRow(f client.Format) []string {
	return []string{f.FormatID, f.Quality, f.Container, f.Size, streams(f)}
}

// formatAt returns the raw format id shown in table row (row 0 is the header).
// Cells hold escaped text, so ids are read from the analyzed info instead.
func formatAt(info *client.VideoInfo, row int) (string, bool) {
	if info == nil || row < 1 || row > len(info.Formats) {
		return "", false
	}
	return info.Formats[row-1].FormatID, true
}

func streams(f client.Format) string {
	switch {
	case f.HasVideo && f.HasAudio:
		return "video+audio"
	case f.HasVideo:
		return "video"
	case f.HasAudio:
		return "audio"
	default:
		return "-"
	}
}

func rowColor(f client.Format) tcell.Color {
	if !f.HasVideo {
		return tcell.ColorAqua
	}
	return tcell.ColorWhite
}

// formatDuration renders seconds as m:ss or h:mm:ss.
func formatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "-"
	}
	total := int(math.Round(seconds))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// summary is the info panel text for an analyzed item.
func summary(info *client.VideoInfo) string {
	return fmt.Sprintf("[white::b]%s[-:-:-]\n[gray]Uploader:[white] %s  [gray]Duration:[white] %s  [gray]Formats:[white] %d",
		tviewEscape(info.Title), tviewEscape(info.Uploader), formatDuration(info.Duration), len(info.Formats))
}
