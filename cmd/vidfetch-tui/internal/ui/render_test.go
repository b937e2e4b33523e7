package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/iconidentify/vidfetch/pkg/client"
)

func TestFormatRow(t *testing.T) {
	f := client.Format{FormatID: "22", Quality: "720p", Container: "MP4", Size: "12.3 MB", HasVideo: true, HasAudio: true}

	want := []string{"22", "720p", "MP4", "12.3 MB", "video+audio"}
	if got := formatRow(f); !reflect.DeepEqual(got, want) {
		t.Errorf("formatRow() = %v, want %v", got, want)
	}
	if len(formatRow(f)) != len(formatHeaders) {
		t.Error("row and header widths differ")
	}
}

func TestFormatAt(t *testing.T) {
	info := &client.VideoInfo{Formats: []client.Format{{FormatID: "22"}, {FormatID: "[hd]+140"}}}

	tests := []struct {
		name   string
		info   *client.VideoInfo
		row    int
		want   string
		wantOK bool
	}{
		{"header", info, 0, "", false},
		{"first", info, 1, "22", true},
		{"brackets kept raw", info, 2, "[hd]+140", true},
		{"past end", info, 3, "", false},
		{"no info", nil, 1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := formatAt(tt.info, tt.row)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("formatAt(%d) = %q, %v, want %q, %v", tt.row, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStreams(t *testing.T) {
	tests := []struct {
		video, audio bool
		want         string
	}{
		{true, true, "video+audio"},
		{true, false, "video"},
		{false, true, "audio"},
		{false, false, "-"},
	}

	for _, tt := range tests {
		if got := streams(client.Format{HasVideo: tt.video, HasAudio: tt.audio}); got != tt.want {
			t.Errorf("streams(%v,%v) = %q, want %q", tt.video, tt.audio, got, tt.want)
		}
	}
}

func TestRowColor(t *testing.T) {
	if got := rowColor(client.Format{HasAudio: true}); got != tcell.ColorAqua {
		t.Errorf("audio row color = %v", got)
	}
	if got := rowColor(client.Format{HasVideo: true, HasAudio: true}); got != tcell.ColorWhite {
		t.Errorf("video row color = %v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "-"},
		{-3, "-"},
		{5, "0:05"},
		{212.5, "3:33"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSummary_EscapesTags(t *testing.T) {
	s := summary(&client.VideoInfo{Title: "Live [red]now", Uploader: "u", Duration: 61, Formats: make([]client.Format, 2)})

	if !strings.Contains(s, "Live [red[]now") {
		t.Errorf("title should be escaped, got %q", s)
	}
	if !strings.Contains(s, "1:01") || !strings.Contains(s, "Formats:[white] 2") {
		t.Errorf("summary = %q", s)
	}
}
