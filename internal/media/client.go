// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package media talks to the external blob/media store. The platform stores
// only the opaque URLs the media store returns; nothing here inspects or
// serves the blobs themselves.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/metrics"
)

// Config configures the media-store client.
type Config struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// Client uploads and deletes blobs on the media store. All calls go through
// a circuit breaker so a slow or down media store sheds load fast instead of
// stalling request handlers.
//
// The breaker uses real time for its interval and timeout calculations; unit
// tests exercise the HTTP path directly against httptest servers.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[string]
	name    string
}

// NewClient creates a media-store client.
// Breaker settings: opens after a 60% failure rate over at least 10 requests,
// counts reset every minute while closed, recovery probe after 30 seconds,
// 3 requests allowed half-open.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cbName := "media-store"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("media-store circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
		name:    cbName,
	}
}

// uploadResponse is the media store's reply to a successful upload.
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams one blob to the media store and returns the opaque URL under
// which it is served. The URL is what gets stored on Video/User documents.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	result, err := c.cb.Execute(func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/blobs?name="+url.QueryEscape(name), body)
		if err != nil {
			return "", fmt.Errorf("build upload request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("upload %s: %w", name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("upload %s: media store returned %d", name, resp.StatusCode)
		}

		var out uploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode upload response: %w", err)
		}
		if out.URL == "" {
			return "", fmt.Errorf("upload %s: media store returned empty url", name)
		}
		return out.URL, nil
	})
	c.record(err)
	return result, err
}

// Delete removes the blob behind an opaque URL. A 404 from the media store is
// treated as success so deletes stay idempotent.
func (c *Client) Delete(ctx context.Context, blobURL string) error {
	_, err := c.cb.Execute(func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, blobURL, nil)
		if err != nil {
			return "", fmt.Errorf("build delete request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("delete blob: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
			return "", fmt.Errorf("delete blob: media store returned %d", resp.StatusCode)
		}
		return "", nil
	})
	c.record(err)
	return err
}

func (c *Client) record(err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("media-store request rejected by circuit breaker")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
	}
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
