// Package sidecar provides an engine that calls an external tagger service
// over HTTP. The service is typically a small Python process wrapping a
// trained pipeline (e.g. "http://tagger:8001").
//
// Each engine owns its own http.Client, so every bridge worker keeps its own
// connection. The engine registers itself under the kind "sidecar".
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

func init() {
	engine.Register("sidecar", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg), nil
	})
}

// Client calls the sidecar's /annotate endpoint.
type Client struct {
	url        string
	language   string
	properties map[string]string
	timeout    time.Duration
	http       *http.Client
}

// New creates a Client for cfg.URL.
func New(cfg engine.Config) *Client {
	timeout := cfg.EffectiveTimeout()
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/") + "/annotate",
		language:   cfg.Language,
		properties: cfg.Properties,
		timeout:    timeout,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type annotateRequest struct {
	Text       string            `json:"text"`
	Language   string            `json:"language,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type annotateResponse struct {
	Tokens []engine.Unit `json:"tokens"`
	Error  string        `json:"error,omitempty"`
}

// Annotate sends text to the sidecar and returns its units.
func (c *Client) Annotate(text string) ([]engine.Unit, error) {
	body, err := json.Marshal(annotateRequest{Text: text, Language: c.language, Properties: c.properties})
	if err != nil {
		return nil, fmt.Errorf("sidecar: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sidecar: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sidecar: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("sidecar: decode: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("sidecar: %s", result.Error)
	}
	return result.Tokens, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
