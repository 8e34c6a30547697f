package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"salestats/internal/core"
)

// DefaultURL is the published product transaction dataset.
const DefaultURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

// maxBodyBytes caps the downloaded document.
const maxBodyBytes = 32 << 20

// HTTPSource downloads a JSON array of records. Calls go through a circuit
// breaker so an unreachable upstream fails fast; nothing is retried.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPSource creates a source for url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		url:     url,
		client:  newHTTPClient(timeout),
		breaker: newBreaker("seed-http"),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ForceAttemptHTTP2:     true,
		},
		Timeout: timeout,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Seed source circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
}

func (s *HTTPSource) Name() string { return "http:" + s.url }

// Fetch downloads and decodes the dataset.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Record, error) {
	body, err := s.breaker.Execute(func() (interface{}, error) {
		return s.download(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: seed source %s: %v", core.ErrStoreUnavailable, s.url, err)
		}
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(body.([]byte), &records); err != nil {
		return nil, fmt.Errorf("%w: decode seed document: %v", core.ErrInvalidRecord, err)
	}

	slog.InfoContext(ctx, "Fetched seed records", "source", s.url, "count", len(records))
	return records, nil
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build seed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", core.ErrStoreUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: unexpected status %d", core.ErrStoreUnavailable, s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStoreUnavailable, s.url, err)
	}
	return body, nil
}
