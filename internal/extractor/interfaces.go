package extractor

import (
	"context"
)

// Extractor resolves media URLs into descriptors and materializes downloads.
// Implementations receive a fresh Options value on every call and must not
// keep per-call state between invocations.
type Extractor interface {
	// Probe fetches descriptor data only. No media bytes are downloaded.
	Probe(ctx context.Context, url string, opts Options) (*Descriptor, error)

	// Fetch downloads opts.Format to a path derived from opts.OutputTemplate.
	// The returned Descriptor.Filename names the materialized file.
	Fetch(ctx context.Context, url string, opts Options) (*Descriptor, error)
}

// Options configures a single extractor invocation.
type Options struct {
	Quiet          bool
	NoWarnings     bool
	Format         string
	OutputTemplate string
}

// ProbeOptions returns the options used for metadata-only extraction.
func ProbeOptions() Options {
	return Options{
		Quiet:      true,
		NoWarnings: true,
	}
}

// FetchOptions returns the options used to download formatID into outputTemplate.
func FetchOptions(formatID, outputTemplate string) Options {
	return Options{
		Quiet:          true,
		NoWarnings:     true,
		Format:         formatID,
		OutputTemplate: outputTemplate,
	}
}

// Descriptor is the extractor's description of one media item.
// Pointer fields are nil when the extractor did not report them.
type Descriptor struct {
	Title     *string     `json:"title"`
	Thumbnail *string     `json:"thumbnail"`
	Duration  *float64    `json:"duration"`
	Uploader  *string     `json:"uploader"`
	Ext       string      `json:"ext"`
	Formats   []RawFormat `json:"formats"`

	// Filename is the prepared output path (yt-dlp "_filename").
	Filename string `json:"_filename"`

	// RequestedDownloads is filled by yt-dlp after a real download.
	RequestedDownloads []RequestedDownload `json:"requested_downloads,omitempty"`
}

// RawFormat is one format entry exactly as the extractor reported it.
type RawFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	Height         *float64 `json:"height"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	URL            string   `json:"url"`
}

// RequestedDownload is a finished download reported by yt-dlp.
type RequestedDownload struct {
	Filepath string `json:"filepath"`
}

// HasVideo reports whether the format carries a video stream. A stream is
// absent only when its codec is explicitly "none".
func (f RawFormat) HasVideo() bool {
	return f.VCodec == nil || *f.VCodec != "none"
}

// HasAudio reports whether the format carries an audio stream.
func (f RawFormat) HasAudio() bool {
	return f.ACodec == nil || *f.ACodec != "none"
}

// IsAudioOnly reports whether the format has audio and explicitly no video.
func (f RawFormat) IsAudioOnly() bool {
	return f.HasAudio() && f.VCodec != nil && *f.VCodec == "none"
}

// Bytes returns filesize, falling back to filesize_approx. Zero means unknown.
func (f RawFormat) Bytes() float64 {
	if f.Filesize != nil && *f.Filesize != 0 {
		return *f.Filesize
	}
	if f.FilesizeApprox != nil {
		return *f.FilesizeApprox
	}
	return 0
}

// OutputPath returns the best known path of the materialized file.
func (d *Descriptor) OutputPath() string {
	for i := len(d.RequestedDownloads) - 1; i >= 0; i-- {
		if p := d.RequestedDownloads[i].Filepath; p != "" {
			return p
		}
	}
	return d.Filename
}

// Error is returned for any extractor failure. Message is the extractor's
// human-readable explanation and is what Error returns.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
