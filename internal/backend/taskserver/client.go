// Package taskserver implements the service.Service interface against a
// remote task-management server speaking JSON over HTTP.
package taskserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskforge/internal/config"
	"taskforge/internal/service"
)

const (
	// HealthPath is probed to establish connectivity.
	HealthPath = "/health"

	// TodosPath is the task collection.
	TodosPath = "/api/todos"

	// SearchPath searches tasks.
	SearchPath = "/api/todos/search"

	// ProjectsPath lists projects.
	ProjectsPath = "/api/projects"

	// DefaultTimeout bounds each request when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Client implements service.Service over HTTP.
// It is safe for concurrent use; requests are never serialised or retried.
type Client struct {
	httpClient *http.Client
	idle       interface{ CloseIdleConnections() }
	timeout    time.Duration
	agent      string
	project    string
	logger     *log.Logger

	mu      sync.RWMutex
	baseURL string

	conn      service.ConnState
	closeOnce sync.Once
}

var _ service.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger that receives failures and probe outcomes.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTargetAgent sets the target_agent sent with created tasks.
func WithTargetAgent(agent string) Option {
	return func(c *Client) { c.agent = agent }
}

// WithDefaultProject sets the project used when a task names none.
func WithDefaultProject(project string) Option {
	return func(c *Client) { c.project = project }
}

// New creates a client for the task server described by cfg.
// No connection is attempted; call Probe before issuing operations.
func New(cfg *config.Config, logger *log.Logger) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{Transport: base}

	// Bearer token for servers behind an auth proxy
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient = &http.Client{Transport: &oauth2.Transport{Base: base, Source: src}}
	}

	c := NewWithHTTPClient(cfg.BaseURL(), httpClient,
		WithTimeout(cfg.Timeout),
		WithLogger(logger),
		WithTargetAgent(cfg.TargetAgent),
		WithDefaultProject(cfg.DefaultProject),
	)
	c.idle = base
	return c
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		httpClient: httpClient,
		idle:       httpClient,
		timeout:    DefaultTimeout,
		agent:      config.DefaultTargetAgent,
		project:    config.DefaultProject,
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Configure(baseURL)
	return c
}

// Configure sets the target endpoint, e.g. "http://localhost:8000".
// The URL is not validated beyond what the transport enforces per request.
func (c *Client) Configure(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Connected returns the outcome of the most recent probe.
func (c *Client) Connected() bool {
	return c.conn.Connected()
}

// Probe issues GET /health and replaces the connected flag with the outcome.
// True iff the server answers 2xx; any other outcome is false.
func (c *Client) Probe(ctx context.Context) bool {
	status, _, err := c.do(ctx, http.MethodGet, HealthPath, nil, nil)
	ok := err == nil && isSuccess(status)
	c.conn.Set(ok)

	switch {
	case err != nil:
		c.logger.Printf("could not connect to task server at %s: %s", c.BaseURL(), errorMessage(err))
	case !ok:
		c.logger.Printf("task server health check failed: status %d", status)
	default:
		c.logger.Printf("task server connection successful: %s", c.BaseURL())
	}
	return ok
}

// StartProbe runs Probe in the background.
func (c *Client) StartProbe(ctx context.Context) *service.Probe {
	return service.StartProbe(ctx, c.Probe)
}

type createRequest struct {
	Description string `json:"description"`
	Project     string `json:"project"`
	Priority    string `json:"priority"`
	TargetAgent string `json:"target_agent"`
}

// CreateTask issues POST /api/todos.
func (c *Client) CreateTask(ctx context.Context, description, project, priority string) service.Result[service.CreatedTask] {
	if !c.Connected() {
		return service.Fail[service.CreatedTask](service.MsgNotConnected)
	}
	if strings.TrimSpace(project) == "" {
		project = c.project
	}
	body := createRequest{
		Description: description,
		Project:     project,
		Priority:    service.ParsePriority(priority).String(),
		TargetAgent: c.agent,
	}
	return call[service.CreatedTask](ctx, c, "create task", http.MethodPost, TodosPath, nil, body)
}

type completeRequest struct {
	TodoID  string  `json:"todo_id"`
	Comment *string `json:"comment"`
}

// CompleteTask issues PUT /api/todos/{id}/complete.
// An empty id fails without a request.
func (c *Client) CompleteTask(ctx context.Context, taskID, comment string) service.Result[service.CompletedTask] {
	if !c.Connected() {
		return service.Fail[service.CompletedTask](service.MsgNotConnected)
	}
	if strings.TrimSpace(taskID) == "" {
		return service.Fail[service.CompletedTask](service.MsgNoServerID)
	}
	body := completeRequest{TodoID: taskID}
	if comment != "" {
		body.Comment = &comment
	}
	path := TodosPath + "/" + url.PathEscape(taskID) + "/complete"
	return call[service.CompletedTask](ctx, c, "complete task", http.MethodPut, path, nil, body)
}

// SearchTasks issues GET /api/todos/search. A non-positive limit uses
// service.DefaultSearchLimit.
func (c *Client) SearchTasks(ctx context.Context, query string, limit int) service.Result[service.SearchResults] {
	if !c.Connected() {
		return service.Fail[service.SearchResults](service.MsgNotConnected)
	}
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	return call[service.SearchResults](ctx, c, "search tasks", http.MethodGet, SearchPath, params, nil)
}

// ListProjects issues GET /api/projects.
func (c *Client) ListProjects(ctx context.Context) service.Result[service.ProjectList] {
	if !c.Connected() {
		return service.Fail[service.ProjectList](service.MsgNotConnected)
	}
	return call[service.ProjectList](ctx, c, "list projects", http.MethodGet, ProjectsPath, nil, nil)
}

// Close releases idle connections. Only the first call has an effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.idle != nil {
			c.idle.CloseIdleConnections()
		}
	})
	return nil
}

// call performs one request and maps the outcome to a result.
func call[T service.Payload](ctx context.Context, c *Client, op, method, path string, params url.Values, body any) service.Result[T] {
	status, data, err := c.do(ctx, method, path, params, body)
	if err != nil {
		msg := errorMessage(err)
		c.logger.Printf("%s failed: %s", op, msg)
		return service.Fail[T](msg)
	}
	if !isSuccess(status) {
		c.logger.Printf("%s failed: server returned %d", op, status)
		return service.Failf[T]("server error: %d", status)
	}
	return service.Succeed(service.Decode[T](data))
}

// do sends one request bounded by the client timeout and returns the
// status code and body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.BaseURL() + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// errorMessage turns a transport error into a user-facing message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	return err.Error()
}
