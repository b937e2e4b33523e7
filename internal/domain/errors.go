package domain

import "errors"

// Domain errors.
var (
	// ErrMissingURL is returned when the request carries no url field.
	ErrMissingURL = errors.New("URL is required")

	// ErrMissingFields is returned when a download request lacks url or format_id.
	ErrMissingFields = errors.New("URL and format_id are required")

	// ErrEmptyURL is returned when the url is blank after trimming.
	ErrEmptyURL = errors.New("URL cannot be empty")

	// ErrInvalidURL is returned when the url has no scheme or host.
	ErrInvalidURL = errors.New("Invalid URL format")

	// ErrFormatNotOffered is returned when format verification is enabled and
	// the requested format id is not among the resolved formats.
	ErrFormatNotOffered = errors.New("format_id is not offered for this URL")

	// ErrDownloadFailed is returned when the extractor reported success but
	// the expected file is not on disk.
	ErrDownloadFailed = errors.New("Download failed")

	// ErrFileNotFound is returned when a retrieval path points at nothing.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidDownloadID is returned when a retrieval path is malformed.
	ErrInvalidDownloadID = errors.New("invalid download reference")
)

// ErrorKind classifies failures so the HTTP edge can map them to status codes
// without inspecting messages.
type ErrorKind int

const (
	// KindValidation covers bad client input. No upstream call was made.
	KindValidation ErrorKind = iota + 1
	// KindExtraction covers any failure reported by the extractor.
	KindExtraction
	// KindPostCondition covers a download that reported success but left no file.
	KindPostCondition
	// KindNotFound covers retrieval of a file that does not exist.
	KindNotFound
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExtraction:
		return "extraction"
	case KindPostCondition:
		return "post_condition"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error carries a kind, the failing operation and a client-facing message.
// Err holds the underlying cause; for extraction failures that is the
// extractor error whose text is embedded in Message.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Op + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError wraps a sentinel validation error.
func NewValidationError(op string, err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: err.Error(),
		Err:     err,
	}
}

// NewExtractionError wraps an extractor failure behind a generic prefix,
// keeping the upstream message intact.
func NewExtractionError(op, prefix string, err error) *Error {
	return &Error{
		Kind:    KindExtraction,
		Op:      op,
		Message: prefix + ": " + err.Error(),
		Err:     err,
	}
}

// KindOf returns the kind of err, or 0 if err is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
