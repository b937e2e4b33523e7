package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/iconidentify/vidfetch/internal/config"
)

// YtDlp implements Extractor by running the yt-dlp binary.
type YtDlp struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewYtDlp creates a yt-dlp backed extractor.
// It resolves the configured binary in PATH; if that fails the name is kept
// as-is so calls fail with a regular extraction error instead of at startup.
func NewYtDlp(cfg config.ExtractorConfig, logger *slog.Logger) *YtDlp {
	binary := cfg.Binary
	if path, err := exec.LookPath(cfg.Binary); err == nil {
		binary = path
	} else {
		logger.Warn("yt-dlp binary not found in PATH", "binary", cfg.Binary, "error", err)
	}

	return &YtDlp{
		binary:  binary,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Probe runs yt-dlp in metadata-only mode.
func (y *YtDlp) Probe(ctx context.Context, url string, opts Options) (*Descriptor, error) {
	args := append(opts.args(), "-J", "--", url)
	return y.run(ctx, "probe", args, opts)
}

// Fetch downloads a single format and reports where the file landed.
func (y *YtDlp) Fetch(ctx context.Context, url string, opts Options) (*Descriptor, error) {
	args := append(opts.args(), "-J", "--no-simulate", "--", url)
	return y.run(ctx, "fetch", args, opts)
}

func (o Options) args() []string {
	var args []string
	if o.Quiet {
		args = append(args, "--quiet")
	}
	if o.NoWarnings {
		args = append(args, "--no-warnings")
	}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.OutputTemplate != "" {
		args = append(args, "-o", o.OutputTemplate)
	}
	return args
}

func (y *YtDlp) run(ctx context.Context, op string, args []string, opts Options) (*Descriptor, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	y.logger.Debug("yt-dlp finished",
		"op", op,
		"duration", time.Since(start),
		"exit_error", err,
	)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, &Error{Op: op, Message: fmt.Sprintf("yt-dlp timed out after %s", y.timeout), Err: ctxErr}
			}
			return nil, &Error{Op: op, Message: "yt-dlp was cancelled", Err: ctxErr}
		}
		return nil, &Error{Op: op, Message: stderrMessage(stderr.String(), err), Err: err}
	}

	var desc Descriptor
	if err := json.Unmarshal(stdout.Bytes(), &desc); err != nil {
		return nil, &Error{Op: op, Message: fmt.Sprintf("parse yt-dlp output: %v", err), Err: err}
	}

	if desc.Filename == "" && opts.OutputTemplate != "" {
		desc.Filename = renderTemplate(opts.OutputTemplate, &desc)
	}

	return &desc, nil
}

// stderrMessage picks the most useful line of yt-dlp's stderr. yt-dlp prefixes
// fatal problems with "ERROR:"; the last such line wins.
func stderrMessage(stderr string, err error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		return trimmed
	}
	return err.Error()
}

// renderTemplate substitutes the title and ext fields of an output template.
// It is only a fallback for output that lacks "_filename".
func renderTemplate(tmpl string, desc *Descriptor) string {
	title := "NA"
	if desc.Title != nil {
		title = *desc.Title
	}
	ext := desc.Ext
	if ext == "" {
		ext = "NA"
	}
	r := strings.NewReplacer("%(title)s", title, "%(ext)s", ext)
	return r.Replace(tmpl)
}
