package service

import "context"

// Offline is a Service that never connects. Every operation fails with
// MsgNotConnected.
type Offline struct{}

var _ Service = Offline{}

func (Offline) Configure(string)           {}
func (Offline) Probe(context.Context) bool { return false }
func (Offline) Connected() bool            { return false }
func (Offline) Close() error               { return nil }

func (o Offline) StartProbe(ctx context.Context) *Probe {
	return StartProbe(ctx, o.Probe)
}

func (Offline) CreateTask(context.Context, string, string, string) Result[CreatedTask] {
	return Fail[CreatedTask](MsgNotConnected)
}

func (Offline) CompleteTask(context.Context, string, string) Result[CompletedTask] {
	return Fail[CompletedTask](MsgNotConnected)
}

func (Offline) SearchTasks(context.Context, string, int) Result[SearchResults] {
	return Fail[SearchResults](MsgNotConnected)
}

func (Offline) ListProjects(context.Context) Result[ProjectList] {
	return Fail[ProjectList](MsgNotConnected)
}
