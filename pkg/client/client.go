package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to a vidfetch server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Format is one downloadable variant offered by the server.
type Format struct {
	FormatID  string `json:"format_id"`
	Quality   string `json:"quality"`
	Container string `json:"format"`
	Size      string `json:"size"`
	URL       string `json:"url"`
	HasVideo  bool   `json:"has_video"`
	HasAudio  bool   `json:"has_audio"`
}

// VideoInfo is the analyze result.
type VideoInfo struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  float64  `json:"duration"`
	Uploader  string   `json:"uploader"`
	Formats   []Format `json:"formats"`
}

// Download is the download result.
type Download struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
}

// Site is one supported site.
type Site struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Health is the server health body.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type analyzeResponse struct {
	Success bool      `json:"success"`
	Data    VideoInfo `json:"data"`
}

type downloadResponse struct {
	Success bool `json:"success"`
	Download
}

type sitesResponse struct {
	Success bool   `json:"success"`
	Sites   []Site `json:"sites"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a new vidfetch client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze resolves the formats available for url.
func (c *Client) Analyze(ctx context.Context, url string) (*VideoInfo, error) {
	var resp analyzeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/video/analyze", map[string]string{"url": url}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Download asks the server to download formatID of url.
func (c *Client) Download(ctx context.Context, url, formatID string) (*Download, error) {
	body := map[string]string{"url": url, "format_id": formatID}
	var resp downloadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/video/download", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Download, nil
}

// SupportedSites returns the server's supported sites listing.
func (c *Client) SupportedSites(ctx context.Context) ([]Site, error) {
	var resp sitesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/video/supported-sites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sites, nil
}

// Health returns the server health body.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.doJSON(ctx, http.MethodGet, "/api/video/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Save streams the file behind a download result into dir and returns the
// local path and the number of bytes written.
func (c *Client) Save(ctx context.Context, d *Download, dir string) (string, int64, error) {
	name := filepath.Base(d.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", 0, errors.New("download has no filename")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+d.DownloadURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", 0, decodeError(resp)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	return path, n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}
