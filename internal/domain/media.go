package domain

import "net/url"

// DownloadID identifies one scratch directory holding a downloaded file.
type DownloadID string

// String returns the string representation of the DownloadID.
func (id DownloadID) String() string {
	return string(id)
}

// Quality and container labels used for the audio-only entry and for
// formats the extractor does not describe fully.
const (
	QualityUnknown   = "Unknown"
	QualityAudioOnly = "Audio Only"
	SizeUnknown      = "Unknown"
	ContainerAudio   = "MP3"
	ContainerDefault = "MP4"
)

// Defaults used when the extractor omits descriptive fields.
const (
	DefaultTitle         = "Unknown Title"
	DefaultUploader      = "Unknown"
	DefaultDownloadTitle = "Unknown"
)

// Format is one downloadable variant of a media item.
type Format struct {
	FormatID  string `json:"format_id"`
	Quality   string `json:"quality"`
	Container string `json:"format"`
	Size      string `json:"size"`
	URL       string `json:"url"`
	HasVideo  bool   `json:"has_video"`
	HasAudio  bool   `json:"has_audio"`
}

// VideoInfo is the normalized metadata returned by an analyze call.
type VideoInfo struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  float64  `json:"duration"`
	Uploader  string   `json:"uploader"`
	Formats   []Format `json:"formats"`
}

// HasFormat reports whether id is one of the resolved format identifiers.
func (v *VideoInfo) HasFormat(id string) bool {
	for _, f := range v.Formats {
		if f.FormatID == id {
			return true
		}
	}
	return false
}

// DownloadResult describes a file materialized in a scratch directory.
type DownloadResult struct {
	DownloadID  DownloadID
	Filename    string
	DownloadURL string
	Title       string
	Path        string
	Size        int64
}

// FileRoutePrefix is the path under which downloaded files are served.
const FileRoutePrefix = "/api/video/file"

// FileURL returns the retrieval path for filename inside download id.
// Only characters the URL parser escapes by default are escaped, so the
// server sees the decoded name in r.URL.Path. Filenames are base names and
// never contain a slash.
func FileURL(id DownloadID, filename string) string {
	u := url.URL{Path: FileRoutePrefix + "/" + id.String() + "/" + filename}
	return u.EscapedPath()
}
