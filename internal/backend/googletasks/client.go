// Package googletasks stores tasks in one Google Tasks list, the hosted
// backend-as-a-service variant.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklist/internal/model"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// OAuthClientFile and TokenFile live in the configured directory.
	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"

	PageSize   = 100
	APITimeout = 5 * time.Second

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"

	tasksScope = "https://www.googleapis.com/auth/tasks"
)

type Client struct {
	svc    *tasks.Service
	listID string
}

// New authenticates with the OAuth client and token stored in dir.
func New(ctx context.Context, dir, listID string) (*Client, error) {
	clientJSON, err := os.ReadFile(filepath.Join(dir, OAuthClientFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(filepath.Join(dir, TokenFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}

	// auto-refreshing
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return newClient(ctx, listID, option.WithHTTPClient(httpClient))
}

// NewWithHTTPClient talks to endpoint with a plain HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	return newClient(ctx, listID, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
}

func newClient(ctx context.Context, listID string, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID}, nil
}

// List returns every task of the list in API (position) order, completed
// and hidden ones included.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	out := []model.Task{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				out = append(out, toModel(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return out, nil
}

// Add appends a task after the current last one. Without a previous
// sibling the API inserts at the top, which would list newest first.
func (c *Client) Add(ctx context.Context, text string) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	all, err := c.List(ctx)
	if err != nil {
		return model.Task{}, err
	}
	call := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title:  text,
		Status: statusNeedsAction,
	})
	if len(all) > 0 {
		call = call.Previous(all[len(all)-1].ID.String())
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return model.Task{}, wrapError(err)
	}
	return toModel(created), nil
}

func (c *Client) Update(ctx context.Context, id model.ID, text string, done bool) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{Title: text, Status: statusNeedsAction}
	if done {
		patch.Status = statusCompleted
	} else {
		// Clearing completion requires an explicit null.
		patch.NullFields = []string{"Completed"}
	}
	_, err := c.svc.Tasks.Patch(c.listID, id.String(), patch).Context(ctx).Do()
	return ignoreNotFound(err)
}

func (c *Client) Delete(ctx context.Context, id model.ID) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	err := c.svc.Tasks.Delete(c.listID, id.String()).Context(ctx).Do()
	return ignoreNotFound(err)
}

// ClearAll deletes every task in the list. The API's own clear call only
// hides completed tasks, so each task is deleted individually.
func (c *Client) ClearAll(ctx context.Context) error {
	all, err := c.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range all {
		if err := c.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasklists.Get(c.listID).Context(ctx).Do()
	return wrapError(err)
}

func toModel(t *tasks.Task) model.Task {
	return model.Task{
		ID:   model.ID(t.Id),
		Text: t.Title,
		Done: t.Status == statusCompleted,
	}
}

func ignoreNotFound(err error) error {
	if isStatus(err, http.StatusNotFound) {
		return nil
	}
	return wrapError(err)
}

func isStatus(err error, code int) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("request timed out: %w", err)
	case isStatus(err, http.StatusUnauthorized), isStatus(err, http.StatusForbidden):
		return fmt.Errorf("token expired or revoked: %w", err)
	case isStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %v", model.ErrNotFound, err)
	default:
		return err
	}
}
