package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultFetchTimeout = 12 * time.Second
	DefaultFetchEvery   = 100 * time.Millisecond
)

// Fetcher reads catalog sources from disk or over HTTP. Remote requests share
// one rate limiter.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher builds a Fetcher. Zero arguments fall back to the defaults.
func NewFetcher(timeout, every time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if every <= 0 {
		every = DefaultFetchEvery
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the bytes at location, which is a file path or an http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !IsRemote(location) {
		return os.ReadFile(location)
	}
	return f.GetBytes(ctx, location)
}

// GetBytes performs a rate limited GET and returns the body of a 200 response.
func (f *Fetcher) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
