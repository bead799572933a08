/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package matching talks to the external matching engine that resolves
// a rule document into concrete tracks.
package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/resonance-stream/resonance/internal/models"
	"github.com/resonance-stream/resonance/internal/smartrules"
	"github.com/resonance-stream/resonance/internal/telemetry"
)

// ErrNotConfigured is returned when no engine URL is set.
var ErrNotConfigured = errors.New("matching engine not configured")

// DefaultTimeout bounds a single materialization request.
const DefaultTimeout = 15 * time.Second

// Client is an HTTP client for the matching engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a matching engine client. An empty baseURL yields a
// client whose calls fail with ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "matching").Logger(),
	}
}

// matchResponse is the engine's reply envelope.
type matchResponse struct {
	Tracks []models.TrackSummary `json:"tracks"`
}

// Materialize posts a rule document to the engine and returns the
// matched tracks in engine order.
func (c *Client) Materialize(ctx context.Context, doc smartrules.Document) ([]models.TrackSummary, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode rule document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/match", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.MatchingRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("matching engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		telemetry.MatchingRequestsTotal.WithLabelValues("error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("matching engine returned non-200")
		return nil, fmt.Errorf("matching engine status %d", resp.StatusCode)
	}

	var result matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		telemetry.MatchingRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode match response: %w", err)
	}

	telemetry.MatchingRequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug().
		Int("tracks", len(result.Tracks)).
		Dur("elapsed", time.Since(start)).
		Msg("materialized rule document")
	return result.Tracks, nil
}
