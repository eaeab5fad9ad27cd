package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var Logger = logger.GetLogger("client")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http.Client used for all requests
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the timeout of a single request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client is a typed wrapper around the todo HTTP API.
// Every method issues exactly one request, there are no retries and nothing is cached.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a Client for the service reachable at baseURL (e.g. http://localhost:8787).
// A missing scheme defaults to http.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List returns all todos.
func (c *Client) List(ctx context.Context) ([]todo.Todo, error) {
	var todos []todo.Todo
	if err := c.doJSON(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create stores d and returns the record as stored by the service.
func (c *Client) Create(ctx context.Context, d todo.Draft) (todo.Todo, error) {
	var t todo.Todo
	err := c.doJSON(ctx, http.MethodPost, "/todos", d, &t)
	return t, err
}

// Get returns the todo with the given id. A missing todo yields an error for which IsNotFound is true.
func (c *Client) Get(ctx context.Context, id string) (todo.Todo, error) {
	var t todo.Todo
	err := c.doJSON(ctx, http.MethodGet, todoPath(id), nil, &t)
	return t, err
}

// Update merges p into the todo with the given id and returns the result.
func (c *Client) Update(ctx context.Context, id string, p todo.Patch) (todo.Todo, error) {
	var t todo.Todo
	err := c.doJSON(ctx, http.MethodPut, todoPath(id), p, &t)
	return t, err
}

// Delete removes the todo with the given id and returns the confirmation message.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var msg messageResponse
	if err := c.doJSON(ctx, http.MethodDelete, todoPath(id), nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Seed resets the demo todos and returns the confirmation message.
func (c *Client) Seed(ctx context.Context) (string, error) {
	var msg messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/todos/seed", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Random returns a random todo. If the service answers with a text message instead
// the returned error wraps ErrNoTodo.
func (c *Client) Random(ctx context.Context) (todo.Todo, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return todo.Todo{}, err
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return todo.Todo{}, fmt.Errorf("%w: %s", ErrNoTodo, strings.TrimSpace(string(body)))
	}

	var t todo.Todo
	if err := json.Unmarshal(body, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("client: decode response: %w", err)
	}
	return t, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

type messageResponse struct {
	Message string `json:"message"`
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

// endpoint appends the escaped path to the base URL, keeping any path prefix of the base URL
func (c *Client) endpoint(path string) (string, error) {
	u := *c.baseURL
	joined, err := url.Parse(strings.TrimSuffix(u.EscapedPath(), "/") + path)
	if err != nil {
		return "", err
	}
	u.Path, u.RawPath = joined.Path, joined.RawPath
	return u.String(), nil
}

// doJSON sends in as JSON body (if not nil) and decodes the response into out
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// do performs a single request and returns the response with its fully read body.
// Non-2xx responses are returned as *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fullURL, err := c.endpoint(path)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("client: read response: %w", err)
	}
	Logger.Debugf("%s %s => %d took %s", method, fullURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	return resp, data, nil
}

func isJSON(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType) == "application/json"
}
