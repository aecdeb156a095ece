// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskforge/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// It starts healthy and connected.
type FakeService struct {
	mu       sync.Mutex
	conn     service.ConnState
	baseURL  string
	tasks    []service.TaskRecord
	projects []string
	nextID   int
	calls    map[string]int
	closed   int

	// Healthy is the outcome of the next Probe.
	Healthy bool

	// Failure injection: a non-empty message makes the operation fail with it.
	CreateFail   string
	CompleteFail string
	SearchFail   string
	ProjectsFail string

	// NoIDs makes CreateTask succeed without returning an id.
	NoIDs bool
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates a healthy, connected FakeService.
func NewFakeService() *FakeService {
	f := &FakeService{
		Healthy: true,
		calls:   make(map[string]int),
	}
	f.conn.Set(true)
	return f
}

// SetConnected replaces the connected flag without probing.
func (f *FakeService) SetConnected(connected bool) {
	f.conn.Set(connected)
}

// SetProjects sets the list returned by ListProjects.
func (f *FakeService) SetProjects(projects ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = projects
}

// AddTask seeds a pending task.
func (f *FakeService) AddTask(id, description, project, priority string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.TaskRecord{
		TodoID:      service.TextID(id),
		Description: description,
		Project:     project,
		Priority:    priority,
		Status:      "pending",
	})
}

// Task returns the task with the given id.
func (f *FakeService) Task(id string) (service.TaskRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID() == id {
			return t, true
		}
	}
	return service.TaskRecord{}, false
}

// Tasks returns every stored task.
func (f *FakeService) Tasks() []service.TaskRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.TaskRecord, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns how many times op was invoked and reached the backend
// (i.e. was not short-circuited).
func (f *FakeService) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Closed returns how many times Close was called.
func (f *FakeService) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Configure implements service.Service.
func (f *FakeService) Configure(baseURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseURL = baseURL
}

// BaseURL returns the configured URL.
func (f *FakeService) BaseURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.baseURL
}

// Probe implements service.Service.
func (f *FakeService) Probe(ctx context.Context) bool {
	f.mu.Lock()
	f.calls["probe"]++
	healthy := f.Healthy
	f.mu.Unlock()

	f.conn.Set(healthy)
	return healthy
}

// StartProbe implements service.Service.
func (f *FakeService) StartProbe(ctx context.Context) *service.Probe {
	return service.StartProbe(ctx, f.Probe)
}

// Connected implements service.Service.
func (f *FakeService) Connected() bool {
	return f.conn.Connected()
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, description, project, priority string) service.Result[service.CreatedTask] {
	if !f.Connected() {
		return service.Fail[service.CreatedTask](service.MsgNotConnected)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++

	if f.CreateFail != "" {
		return service.Fail[service.CreatedTask](f.CreateFail)
	}

	f.nextID++
	id := fmt.Sprintf("todo-%d", f.nextID)
	f.tasks = append(f.tasks, service.TaskRecord{
		TodoID:      service.TextID(id),
		Description: description,
		Project:     project,
		Priority:    service.ParsePriority(priority).String(),
		Status:      "pending",
	})
	if f.NoIDs {
		return service.Succeed(service.CreatedTask{})
	}
	return service.Succeed(service.CreatedTask{TodoID: service.TextID(id)})
}

// CompleteTask implements service.Service.
func (f *FakeService) CompleteTask(ctx context.Context, taskID, comment string) service.Result[service.CompletedTask] {
	if !f.Connected() {
		return service.Fail[service.CompletedTask](service.MsgNotConnected)
	}
	if taskID == "" {
		return service.Fail[service.CompletedTask](service.MsgNoServerID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["complete"]++

	if f.CompleteFail != "" {
		return service.Fail[service.CompletedTask](f.CompleteFail)
	}

	for i, t := range f.tasks {
		if t.ID() == taskID {
			f.tasks[i].Status = "completed"
			return service.Succeed(service.CompletedTask{TodoID: t.TodoID, Status: "completed"})
		}
	}
	return service.Fail[service.CompletedTask]("server error: 404")
}

// SearchTasks implements service.Service.
func (f *FakeService) SearchTasks(ctx context.Context, query string, limit int) service.Result[service.SearchResults] {
	if !f.Connected() {
		return service.Fail[service.SearchResults](service.MsgNotConnected)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["search"]++

	if f.SearchFail != "" {
		return service.Fail[service.SearchResults](f.SearchFail)
	}
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}

	q := strings.ToLower(query)
	var items []service.TaskRecord
	for _, t := range f.tasks {
		if len(items) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(t.Description), q) || strings.Contains(strings.ToLower(t.Project), q) {
			items = append(items, t)
		}
	}
	return service.Succeed(service.SearchResults{Items: items})
}

// ListProjects implements service.Service.
func (f *FakeService) ListProjects(ctx context.Context) service.Result[service.ProjectList] {
	if !f.Connected() {
		return service.Fail[service.ProjectList](service.MsgNotConnected)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["projects"]++

	if f.ProjectsFail != "" {
		return service.Fail[service.ProjectList](f.ProjectsFail)
	}

	var list service.ProjectList
	for _, p := range f.projects {
		list.Projects = append(list.Projects, service.ProjectName(p))
	}
	return service.Succeed(list)
}

// Close implements service.Service.
func (f *FakeService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}
