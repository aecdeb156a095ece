// Package googletasks implements the service.Service interface using Google
// Tasks API. Projects map to task lists.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskforge/internal/config"
	"taskforge/internal/service"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// StatusCompleted is the Google Tasks status for finished tasks.
	StatusCompleted = "completed"
)

// errLimitReached stops paging once a search has enough matches.
var errLimitReached = errors.New("search limit reached")

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	idle    interface{ CloseIdleConnections() }
	timeout time.Duration
	agent   string
	project string
	logger  *log.Logger

	conn      service.ConnState
	closeOnce sync.Once
}

var _ service.Service = (*Client)(nil)

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	httpClient, err := HTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewWithHTTPClient(ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.timeout = cfg.Timeout
	c.agent = cfg.TargetAgent
	c.project = cfg.DefaultProject
	if logger != nil {
		c.logger = logger
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Client{
		svc:     svc,
		idle:    httpClient,
		timeout: APITimeout,
		agent:   config.DefaultTargetAgent,
		project: config.DefaultProject,
		logger:  log.New(io.Discard, "", 0),
	}, nil
}

// Configure points the client at another API endpoint (used with emulators
// and in tests).
func (c *Client) Configure(baseURL string) {
	c.svc.BasePath = strings.TrimRight(baseURL, "/") + "/"
}

// Connected returns the outcome of the most recent probe.
func (c *Client) Connected() bool {
	return c.conn.Connected()
}

// Probe fetches a single task list to check credentials and reachability.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Tasklists.List().MaxResults(1).Context(ctx).Do()
	c.conn.Set(err == nil)
	if err != nil {
		c.logger.Printf("could not reach Google Tasks: %s", wrapError(err))
		return false
	}
	c.logger.Printf("Google Tasks connection successful")
	return true
}

// StartProbe runs Probe in the background.
func (c *Client) StartProbe(ctx context.Context) *service.Probe {
	return service.StartProbe(ctx, c.Probe)
}

// CreateTask inserts a task into the list named after the project,
// creating the list when it does not exist. The returned id has the form
// "<listID>/<taskID>".
func (c *Client) CreateTask(ctx context.Context, description, project, priority string) service.Result[service.CreatedTask] {
	if !c.Connected() {
		return service.Fail[service.CreatedTask](service.MsgNotConnected)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if strings.TrimSpace(project) == "" {
		project = c.project
	}
	listID, err := c.ensureList(ctx, project)
	if err != nil {
		return fail[service.CreatedTask](c, "create task", err)
	}

	notes := fmt.Sprintf("priority: %s\nagent: %s", service.ParsePriority(priority), c.agent)
	task, err := c.svc.Tasks.Insert(listID, &tasks.Task{Title: description, Notes: notes}).Context(ctx).Do()
	if err != nil {
		return fail[service.CreatedTask](c, "create task", err)
	}
	return service.Succeed(service.CreatedTask{TodoID: service.TextID(joinID(listID, task.Id))})
}

// CompleteTask marks a task as completed and appends the comment to its notes.
func (c *Client) CompleteTask(ctx context.Context, taskID, comment string) service.Result[service.CompletedTask] {
	if !c.Connected() {
		return service.Fail[service.CompletedTask](service.MsgNotConnected)
	}
	if strings.TrimSpace(taskID) == "" {
		return service.Fail[service.CompletedTask](service.MsgNoServerID)
	}
	listID, id, ok := splitID(taskID)
	if !ok {
		return service.Failf[service.CompletedTask]("invalid task id: %s", taskID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &tasks.Task{Status: StatusCompleted}
	if comment != "" {
		current, err := c.svc.Tasks.Get(listID, id).Context(ctx).Do()
		if err != nil {
			return fail[service.CompletedTask](c, "complete task", err)
		}
		patch.Notes = strings.TrimSpace(current.Notes + "\ncomment: " + comment)
	}

	task, err := c.svc.Tasks.Patch(listID, id, patch).Context(ctx).Do()
	if err != nil {
		return fail[service.CompletedTask](c, "complete task", err)
	}
	return service.Succeed(service.CompletedTask{TodoID: service.TextID(taskID), Status: task.Status})
}

// SearchTasks matches query against task titles and notes in every list,
// returning at most limit items.
func (c *Client) SearchTasks(ctx context.Context, query string, limit int) service.Result[service.SearchResults] {
	if !c.Connected() {
		return service.Fail[service.SearchResults](service.MsgNotConnected)
	}
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lists, err := c.listLists(ctx)
	if err != nil {
		return fail[service.SearchResults](c, "search tasks", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var items []service.TaskRecord
	for _, list := range lists {
		err := c.svc.Tasks.List(list.Id).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, task := range resp.Items {
					if !strings.Contains(strings.ToLower(task.Title), q) && !strings.Contains(strings.ToLower(task.Notes), q) {
						continue
					}
					items = append(items, toRecord(list, task))
					if len(items) >= limit {
						return errLimitReached
					}
				}
				return nil
			})
		if errors.Is(err, errLimitReached) {
			break
		}
		if err != nil {
			return fail[service.SearchResults](c, "search tasks", err)
		}
	}
	return service.Succeed(service.SearchResults{Items: items})
}

// ListProjects returns the task list titles in API order.
func (c *Client) ListProjects(ctx context.Context) service.Result[service.ProjectList] {
	if !c.Connected() {
		return service.Fail[service.ProjectList](service.MsgNotConnected)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lists, err := c.listLists(ctx)
	if err != nil {
		return fail[service.ProjectList](c, "list projects", err)
	}
	var out service.ProjectList
	for _, list := range lists {
		out.Projects = append(out.Projects, service.ProjectName(list.Title))
	}
	return service.Succeed(out)
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

func (c *Client) listLists(ctx context.Context) ([]*tasks.TaskList, error) {
	var out []*tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		out = append(out, resp.Items...)
		return nil
	})
	return out, err
}

// ensureList finds the list titled name (case-insensitive, trimmed) or creates it.
func (c *Client) ensureList(ctx context.Context, name string) (string, error) {
	lists, err := c.listLists(ctx)
	if err != nil {
		return "", err
	}
	for _, list := range lists {
		if strings.EqualFold(strings.TrimSpace(list.Title), strings.TrimSpace(name)) {
			return list.Id, nil
		}
	}
	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// fail logs an API error and maps it to a failed result.
func fail[T any](c *Client, op string, err error) service.Result[T] {
	msg := wrapError(err)
	c.logger.Printf("%s failed: %s", op, msg)
	return service.Fail[T](msg)
}

func toRecord(list *tasks.TaskList, task *tasks.Task) service.TaskRecord {
	status := "pending"
	if task.Status == StatusCompleted {
		status = "completed"
	}
	return service.TaskRecord{
		TodoID:      service.TextID(joinID(list.Id, task.Id)),
		Description: task.Title,
		Project:     list.Title,
		Priority:    priorityFromNotes(task.Notes),
		Status:      status,
	}
}

// priorityFromNotes reads the "priority:" line written by CreateTask.
func priorityFromNotes(notes string) string {
	for _, line := range strings.Split(notes, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "priority:"); ok {
			return service.ParsePriority(v).String()
		}
	}
	return service.PriorityMedium.String()
}

func joinID(listID, taskID string) string {
	return listID + "/" + taskID
}

func splitID(id string) (listID, taskID string, ok bool) {
	listID, taskID, ok = strings.Cut(id, "/")
	if !ok || listID == "" || taskID == "" {
		return "", "", false
	}
	return listID, taskID, true
}

// wrapError maps API errors onto the shared failure messages.
func wrapError(err error) string {
	var apiErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("server error: %d", apiErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	return err.Error()
}
