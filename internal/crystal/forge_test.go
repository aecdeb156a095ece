package crystal_test

import (
	"context"
	"errors"
	"testing"

	"taskforge/internal/crystal"
	"taskforge/internal/service"
	"taskforge/internal/testutil"
)

func TestForgeCreate_Synced(t *testing.T) {
	svc := testutil.NewFakeService()
	forge := crystal.NewForge(crystal.NewInventory(""), svc)

	c, res := forge.Create(context.Background(), "fix bug", "Terraria", "HIGH")
	if !res.OK() {
		t.Fatalf("expected success, got %v", res)
	}
	if c.ServerID != "todo-1" {
		t.Errorf("expected server id todo-1, got %q", c.ServerID)
	}
	if c.Project != "terraria" || c.Priority != "high" {
		t.Errorf("unexpected crystal %+v", c)
	}
	if forge.Inventory().Len() != 1 {
		t.Error("expected crystal in inventory")
	}
}

func TestForgeCreate_DisconnectedKeepsLocalCrystal(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetConnected(false)
	forge := crystal.NewForge(crystal.NewInventory(""), svc)

	c, res := forge.Create(context.Background(), "fix bug", "terraria", "bogus")
	if res.OK() || res.Message() != service.MsgNotConnected {
		t.Errorf("expected not connected failure, got %v", res)
	}
	if c.Synced() {
		t.Error("crystal should not carry a server id")
	}
	if c.Priority != "medium" {
		t.Errorf("expected medium priority, got %q", c.Priority)
	}
	if forge.Inventory().Len() != 1 {
		t.Error("local crystal must be created regardless of remote failure")
	}
	if svc.Calls("create") != 0 {
		t.Error("expected no backend call while disconnected")
	}
}

func TestForgeComplete_RemovesRegardlessOfRemote(t *testing.T) {
	svc := testutil.NewFakeService()
	forge := crystal.NewForge(crystal.NewInventory(""), svc)

	synced, _ := forge.Create(context.Background(), "fix bug", "terraria", "high")
	svc.CompleteFail = "server error: 500"

	got, res, err := forge.Complete(context.Background(), "1", "done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != synced.ID {
		t.Errorf("completed wrong crystal: %+v", got)
	}
	if res.OK() || res.Message() != "server error: 500" {
		t.Errorf("expected server error, got %v", res)
	}
	if forge.Inventory().Len() != 0 {
		t.Error("local crystal must be removed even when the remote call fails")
	}
}

func TestForgeComplete_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	forge := crystal.NewForge(crystal.NewInventory(""), svc)
	c, _ := forge.Create(context.Background(), "fix bug", "terraria", "high")

	_, res, err := forge.Complete(context.Background(), c.ServerID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success, got %v", res)
	}
	task, _ := svc.Task(c.ServerID)
	if task.Status != "completed" {
		t.Errorf("expected remote task completed, got %q", task.Status)
	}
}

func TestForgeComplete_LocalOnlyCrystal(t *testing.T) {
	svc := testutil.NewFakeService()
	inv := crystal.NewInventory("")
	inv.Add(crystal.Crystal{Description: "made offline"})
	forge := crystal.NewForge(inv, svc)

	_, res, err := forge.Complete(context.Background(), "1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message() != service.MsgNoServerID {
		t.Errorf("expected %q, got %q", service.MsgNoServerID, res.Message())
	}
	if inv.Len() != 0 {
		t.Error("expected crystal removed")
	}
	if svc.Calls("complete") != 0 {
		t.Error("expected no backend call for a crystal without server id")
	}
}

func TestForgeComplete_UnknownRef(t *testing.T) {
	forge := crystal.NewForge(crystal.NewInventory(""), testutil.NewFakeService())
	if _, _, err := forge.Complete(context.Background(), "7", ""); !errors.Is(err, crystal.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
