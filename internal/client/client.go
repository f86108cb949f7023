// Package client talks to a tasklist server over its JSON API and change
// stream. A Client satisfies reactive.Backend and reactive.ChangeFeed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tasklist/internal/model"
	"tasklist/internal/realtime"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	backoff realtime.Backoff
	rng     *rand.Rand
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithBackoff(b realtime.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: 10 * time.Second},
		dialer:  &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		backoff: realtime.DefaultBackoff(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) Add(ctx context.Context, text string) (model.Task, error) {
	var created model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]string{"text": text}, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, id model.ID, text string, done bool) error {
	body := struct {
		ID   model.ID `json:"id"`
		Text string   `json:"text"`
		Done bool     `json:"done"`
	}{id, text, done}
	return c.do(ctx, http.MethodPut, "/api/tasks", body, nil)
}

func (c *Client) Delete(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) ClearAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/tasks/clear", nil, nil)
}

// Export downloads the task list rendered in format (json, csv or pdf).
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/tasks/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return apiError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(status int, data []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(data))
	}
	return &APIError{Status: status, Message: payload.Error}
}

// IsValidation reports whether the server rejected the request as invalid.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}
