package service_test

import (
	"context"
	"testing"
	"time"

	"taskforge/internal/service"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want service.Priority
	}{
		{"low", service.PriorityLow},
		{"HIGH", service.PriorityHigh},
		{"  urgent ", service.PriorityUrgent},
		{"critical", service.PriorityCritical},
		{"medium", service.PriorityMedium},
		{"", service.PriorityMedium},
		{"blocker", service.PriorityMedium},
		{"p0", service.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := service.ParsePriority(tt.in); got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	for i, p := range service.Priorities {
		if p.Rank() != i {
			t.Errorf("%s: expected rank %d, got %d", p, i, p.Rank())
		}
	}
	if service.Priority("whatever").Rank() != service.PriorityMedium.Rank() {
		t.Error("unknown priority should rank as medium")
	}
}

func TestResult(t *testing.T) {
	ok := service.Succeed(service.CreatedTask{TodoID: "abc"})
	if !ok.OK() || ok.Message() != "" {
		t.Errorf("unexpected success result: %v", ok)
	}
	if ok.Payload().ID() != "abc" {
		t.Errorf("expected payload id abc, got %q", ok.Payload().ID())
	}

	fail := service.Failf[service.ProjectList]("server error: %d", 503)
	if fail.OK() {
		t.Error("expected failure")
	}
	if fail.Message() != "server error: 503" {
		t.Errorf("unexpected message %q", fail.Message())
	}
	if _, ok := fail.Unwrap(); ok {
		t.Error("Unwrap should report failure")
	}
}

func TestDecode_CreatedTask(t *testing.T) {
	got := service.Decode[service.CreatedTask]([]byte(`{"todo_id":"abc123","extra":true}`))
	if got.ID() != "abc123" {
		t.Errorf("expected abc123, got %q", got.ID())
	}
	if string(got.Raw) != `{"todo_id":"abc123","extra":true}` {
		t.Errorf("raw body not kept: %s", got.Raw)
	}

	numeric := service.Decode[service.CreatedTask]([]byte(`{"id": 42}`))
	if numeric.ID() != "42" {
		t.Errorf("expected numeric id 42, got %q", numeric.ID())
	}
}

func TestDecode_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "<html>oops</html>"},
		{"wrong type", `{"items": "nope"}`},
		{"array", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Decode[service.SearchResults]([]byte(tt.body))
			if len(got.Items) != 0 {
				t.Errorf("expected no items, got %v", got.Items)
			}
		})
	}
}

func TestDecode_SearchResults(t *testing.T) {
	body := `{"items":[
		{"todo_id":"t1","description":"fix crystal","project":"terraria","priority":"high","status":"pending"},
		{"id":7,"description":"write docs","status":"completed"}
	]}`
	got := service.Decode[service.SearchResults]([]byte(body))
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].ID() != "t1" || got.Items[0].Priority != "high" {
		t.Errorf("unexpected first item %+v", got.Items[0])
	}
	if got.Items[1].ID() != "7" || got.Items[1].Project != "" {
		t.Errorf("unexpected second item %+v", got.Items[1])
	}
}

func TestDecode_ProjectList(t *testing.T) {
	body := `{"projects":["terraria",{"name":"omnispindle"},{"other":1},""]}`
	got := service.Decode[service.ProjectList]([]byte(body))

	names := got.Names()
	if len(names) != 2 || names[0] != "terraria" || names[1] != "omnispindle" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestConnState(t *testing.T) {
	var s service.ConnState
	if s.Connected() {
		t.Fatal("zero value should be disconnected")
	}
	s.Set(true)
	if !s.Connected() {
		t.Error("expected connected")
	}
	s.Set(false)
	if s.Connected() {
		t.Error("expected flag replaced by latest outcome")
	}
}

func TestStartProbe_Wait(t *testing.T) {
	p := service.StartProbe(context.Background(), func(ctx context.Context) bool {
		return true
	})

	if !p.Wait(context.Background()) {
		t.Fatal("expected probe to report true")
	}
	connected, finished := p.Result()
	if !connected || !finished {
		t.Errorf("expected finished true result, got %v %v", connected, finished)
	}
}

func TestStartProbe_Cancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := service.StartProbe(context.Background(), func(ctx context.Context) bool {
		select {
		case <-ctx.Done():
			return false
		case <-release:
			return true
		}
	})

	if _, finished := p.Result(); finished {
		t.Fatal("probe should still be running")
	}

	p.Cancel()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not finish after cancel")
	}
	if connected, _ := p.Result(); connected {
		t.Error("cancelled probe should resolve false")
	}
}

func TestProbeWait_ContextExpires(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := service.StartProbe(context.Background(), func(ctx context.Context) bool {
		<-release
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if p.Wait(ctx) {
		t.Error("Wait should return false when its context ends first")
	}
}
