// Package service defines the backend-agnostic interface for remote task operations.
package service

import "context"

// Service defines the interface for remote task backends.
// Commands never import a backend package directly.
//
// None of the operations return an error: every failure is reported as a
// Failure result, and the probe reports false.
type Service interface {
	// Configure sets the target endpoint. It does not connect.
	Configure(baseURL string)

	// Probe checks connectivity and replaces the connected flag with the outcome.
	Probe(ctx context.Context) bool

	// StartProbe runs Probe in the background and returns a handle to it.
	StartProbe(ctx context.Context) *Probe

	// Connected returns the outcome of the most recent probe.
	Connected() bool

	// CreateTask creates a task. An unrecognised priority is sent as medium.
	CreateTask(ctx context.Context, description, project, priority string) Result[CreatedTask]

	// CompleteTask marks a task completed. comment may be empty.
	CompleteTask(ctx context.Context, taskID, comment string) Result[CompletedTask]

	// SearchTasks searches tasks; limit bounds the number of results the
	// backend returns and is not applied locally.
	SearchTasks(ctx context.Context, query string, limit int) Result[SearchResults]

	// ListProjects returns the known projects.
	ListProjects(ctx context.Context) Result[ProjectList]

	// Close releases transport resources. Safe to call if nothing was sent.
	Close() error
}

// Failure messages shared by all backends.
const (
	MsgNotConnected = "not connected"
	MsgNoServerID   = "no server-assigned id"
)

// DefaultSearchLimit is used when a search is issued with a non-positive limit.
const DefaultSearchLimit = 20
