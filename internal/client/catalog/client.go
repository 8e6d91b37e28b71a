// Package catalog talks to the Nexus content API: course listing, course
// detail, and the user's learning path. When no endpoint is configured the
// client serves built-in mock data so the rest of the app works offline.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/client/storage"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

const (
	apiKeyStorageKey = "catalog/api-key"

	retryAttempts    = 3
	retryBaseBackoff = 150 * time.Millisecond
)

// ListParams filters ListCourses. Empty fields match everything.
type ListParams struct {
	Query    string
	Category string
}

// Client is the Nexus API client. A zero base URL puts it in mock mode.
type Client struct {
	baseURL string
	http    *http.Client
	secrets storage.Store
	log     logging.Logger
}

// Option customizes the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client. baseURL may be empty (mock mode); secrets holds the
// API key at rest.
func New(baseURL string, secrets storage.Store, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		secrets: secrets,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MockMode reports whether the client serves built-in data.
func (c *Client) MockMode() bool {
	return c.baseURL == ""
}

// SetAPIKey stores the key sent as x-api-key on every request.
func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	return c.secrets.Set(ctx, apiKeyStorageKey, []byte(key))
}

// APIKey returns the stored key, empty when none is set.
func (c *Client) APIKey(ctx context.Context) (string, error) {
	raw, err := c.secrets.Get(ctx, apiKeyStorageKey)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ListCourses returns the catalog filtered by params.
func (c *Client) ListCourses(ctx context.Context, params ListParams) ([]models.Course, error) {
	if c.MockMode() {
		return filterMockCourses(params), nil
	}

	q := url.Values{}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	path := "/courses"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var courses []models.Course
	if err := c.getJSON(ctx, path, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse returns one course by id, common.ErrorNotFound when it does not
// exist.
func (c *Client) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	if c.MockMode() {
		for _, course := range mockCourses {
			if course.ID == id {
				found := course
				return &found, nil
			}
		}
		return nil, fmt.Errorf("course %s: %w", id, common.ErrorNotFound)
	}

	var course models.Course
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(id), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetUserPath returns the personalized learning path for userID.
func (c *Client) GetUserPath(ctx context.Context, userID string) (*models.PathProgress, error) {
	if c.MockMode() {
		path := mockPath
		path.UserID = userID
		path.Nodes = append([]models.PathNode(nil), mockPath.Nodes...)
		return &path, nil
	}

	var progress models.PathProgress
	if err := c.getJSON(ctx, "/paths/"+url.PathEscape(userID), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// apiError is a non-2xx Nexus response.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("nexus error %d", e.StatusCode)
}

// getJSON performs a GET and decodes the body into out. Responses with
// status >= 500 are retried with exponential backoff; 4xx fails immediately.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBaseBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.doOnce(ctx, path, out)
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
			c.log.Debug(ctx, "retrying nexus request", "path", path, "status", apiErr.StatusCode)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) doOnce(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	key, err := c.APIKey(ctx)
	if err != nil {
		return fmt.Errorf("load api key: %w", err)
	}
	if key != "" {
		req.Header.Set("x-api-key", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nexus request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read nexus response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, common.ErrorNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode nexus response: %w", err)
	}
	return nil
}
