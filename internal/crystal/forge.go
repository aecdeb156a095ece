package crystal

import (
	"context"
	"strings"

	"taskforge/internal/service"
)

// Forge creates and completes crystals, keeping the inventory and the
// remote service in step. Remote failures never block the local change.
type Forge struct {
	inv *Inventory
	svc service.Service
}

// NewForge couples an inventory with a remote service.
func NewForge(inv *Inventory, svc service.Service) *Forge {
	return &Forge{inv: inv, svc: svc}
}

// Inventory returns the underlying inventory.
func (f *Forge) Inventory() *Inventory { return f.inv }

// Create forges a crystal. The remote task is created first so the crystal
// can carry the server id; the crystal is added whatever the remote outcome.
func (f *Forge) Create(ctx context.Context, description, project, priority string) (Crystal, service.Result[service.CreatedTask]) {
	p := service.ParsePriority(priority)
	project = strings.ToLower(strings.TrimSpace(project))

	var res service.Result[service.CreatedTask]
	if f.svc != nil {
		res = f.svc.CreateTask(ctx, description, project, p.String())
	} else {
		res = service.Fail[service.CreatedTask](service.MsgNotConnected)
	}

	c := Crystal{
		Description: description,
		Project:     project,
		Priority:    p.String(),
	}
	if created, ok := res.Unwrap(); ok {
		c.ServerID = created.ID()
	}
	return f.inv.Add(c), res
}

// Complete removes the crystal referenced by ref and reports the completion
// to the remote service. The local removal is not rolled back when the
// remote call fails.
func (f *Forge) Complete(ctx context.Context, ref, comment string) (Crystal, service.Result[service.CompletedTask], error) {
	c, err := f.inv.Get(ref)
	if err != nil {
		return Crystal{}, service.Result[service.CompletedTask]{}, err
	}

	f.inv.Remove(c.ID)

	var res service.Result[service.CompletedTask]
	if f.svc != nil {
		res = f.svc.CompleteTask(ctx, c.ServerID, comment)
	} else {
		res = service.Fail[service.CompletedTask](service.MsgNotConnected)
	}
	return c, res, nil
}
