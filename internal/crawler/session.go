package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"livecrawl/internal/config"
	"livecrawl/pkg/utils"
)

// Errors returned while fetching upstream resources.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrMalformedListing     = errors.New("malformed listing response")
	ErrUploadDateMissing    = errors.New("uploadDate meta element not found")
)

// StatusError reports a response whose status was not 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatusCode, e.Code)
}

// Is makes errors.Is(err, ErrUnexpectedStatusCode) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatusCode
}

// Response is a fully read 200 OK response.
type Response struct {
	Body       []byte
	Duration   time.Duration
	StatusCode int
}

// Session is the HTTP client shared by every fetch task. It is safe for
// concurrent use; nothing in it is mutated after construction.
type Session struct {
	client       *http.Client
	headers      http.Header
	bufferSizeKb int
}

// NewSession creates a session from the crawler configuration.
func NewSession(cfg config.CrawlerConfig) *Session {
	return NewSessionWithClient(&http.Client{Timeout: cfg.Timeout()}, cfg)
}

// NewSessionWithClient creates a session around an existing HTTP client.
func NewSessionWithClient(client *http.Client, cfg config.CrawlerConfig) *Session {
	bufferSizeKb := cfg.BufferSizeKb
	if bufferSizeKb <= 0 {
		bufferSizeKb = config.DefaultBufferSizeKb
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &Session{
		client:       client,
		headers:      utils.BuildHeaders(userAgent, nil),
		bufferSizeKb: bufferSizeKb,
	}
}

// Get fetches url once. Non-200 responses are returned as *StatusError.
func (s *Session) Get(ctx context.Context, url string) (*Response, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Duration:   time.Since(startTime),
	}, nil
}
