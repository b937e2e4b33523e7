package validator

import "testing"

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"https youtube", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http with port", "http://example.com:8080/video", true},
		{"unreachable host still valid", "https://no-such-host.invalid/x", true},
		{"custom scheme", "ftp://files.example.com/clip.mp4", true},
		{"ip host", "http://127.0.0.1/v.mp4", true},
		{"empty", "", false},
		{"no scheme", "www.youtube.com/watch?v=abc", false},
		{"scheme only", "https://", false},
		{"host without scheme", "//example.com/path", false},
		{"opaque", "mailto:someone@example.com", false},
		{"host-port looks like scheme", "localhost:8080", false},
		{"plain text", "not a url", false},
		{"bad escape", "http://exa mple.com/%zz", false},
		{"leading space", " https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidURL(tt.raw); got != tt.want {
				t.Errorf("IsValidURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
