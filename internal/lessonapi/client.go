// Package lessonapi talks to the lessons backend: catalog, search, order
// creation and inventory updates.
package lessonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alextreichler/lessonshop/internal/models"
	"go.llib.dev/frameless/pkg/httpkit"
	"go.llib.dev/frameless/pkg/resilience"
)

// API is the backend surface the storefront depends on.
type API interface {
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	SearchLessons(ctx context.Context, query string) ([]models.Lesson, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	UpdateSpace(ctx context.Context, lessonID string, space int) error
}

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: %s %s status=%d body=%s", e.Method, e.Path, e.Code, e.Body)
}

// DefaultRetry is the backoff used for failed calls. Transport errors,
// timeouts, rate limiting and 5xx replies are retried; other statuses are
// returned as they are.
var DefaultRetry = resilience.ExponentialBackoff{
	Delay:    100 * time.Millisecond,
	Attempts: 3,
}

type Client struct {
	origin string
	client *http.Client
}

type Option func(*Client)

// WithRetry replaces DefaultRetry.
func WithRetry(backoff resilience.ExponentialBackoff) Option {
	return func(c *Client) {
		c.client.Transport = httpkit.RetryRoundTripper{RetryStrategy: backoff}
	}
}

// NewClient returns a client for the backend at origin. timeout bounds each
// call including its retries. Orders carry an idempotency key, so retrying
// them cannot book twice.
func NewClient(origin string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		origin: strings.TrimRight(origin, "/"),
		client: &http.Client{
			Transport: httpkit.RetryRoundTripper{RetryStrategy: DefaultRetry},
			Timeout:   timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Origin() string { return c.origin }

func (c *Client) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := c.do(ctx, http.MethodGet, "/lessons", nil, nil, nil, &lessons); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return c.resolve(lessons), nil
}

func (c *Client) SearchLessons(ctx context.Context, query string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	q := url.Values{"q": []string{query}}
	if err := c.do(ctx, http.MethodGet, "/lessons/search", q, nil, nil, &lessons); err != nil {
		return nil, fmt.Errorf("search lessons %q: %w", query, err)
	}
	return c.resolve(lessons), nil
}

func (c *Client) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	var headers http.Header
	if order.IdempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{order.IdempotencyKey}}
	}
	created := &models.Order{}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, headers, order, created); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateSpace(ctx context.Context, lessonID string, space int) error {
	body := models.SpaceUpdate{Space: &space}
	if err := c.do(ctx, http.MethodPut, "/lessons/"+url.PathEscape(lessonID), nil, nil, body, nil); err != nil {
		return fmt.Errorf("update space of lesson %s: %w", lessonID, err)
	}
	return nil
}

func (c *Client) resolve(lessons []models.Lesson) []models.Lesson {
	if lessons == nil {
		return []models.Lesson{}
	}
	for i := range lessons {
		lessons[i].ResolveImage(c.origin)
	}
	return lessons
}

// do sends in as JSON when non-nil and decodes the reply into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers http.Header, in, out interface{}) error {
	u := c.origin + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// Some backends answer 201/204 without a body.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
