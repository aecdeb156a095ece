package commands_test

import (
	"errors"
	"testing"

	"taskforge/internal/commands"
	"taskforge/internal/config"
	"taskforge/internal/service"
)

func TestParseCreateArgs(t *testing.T) {
	cfg, _ := config.New(t.TempDir())

	tests := []struct {
		name     string
		args     []string
		priority service.Priority
		project  string
		desc     string
	}{
		{"description only", []string{"fix", "the", "portal"}, service.PriorityMedium, "madness_interactive", "fix the portal"},
		{"priority", []string{"high", "fix", "portal"}, service.PriorityHigh, "madness_interactive", "fix portal"},
		{"priority case", []string{"URGENT", "ship"}, service.PriorityUrgent, "madness_interactive", "ship"},
		{"priority and project", []string{"low", "terraria", "fix", "crystal"}, service.PriorityLow, "terraria", "fix crystal"},
		{"project case", []string{"critical", "OmniSpindle", "deploy"}, service.PriorityCritical, "omnispindle", "deploy"},
		{"unknown project is description", []string{"high", "garden", "weed"}, service.PriorityHigh, "madness_interactive", "garden weed"},
		{"project without priority", []string{"terraria", "fix", "it"}, service.PriorityMedium, "madness_interactive", "terraria fix it"},
		{"lone priority word", []string{"high"}, service.PriorityMedium, "madness_interactive", "high"},
		{"priority then project word only", []string{"high", "terraria"}, service.PriorityHigh, "madness_interactive", "terraria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := commands.ParseCreateArgs(cfg, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Priority != tt.priority {
				t.Errorf("priority = %q, want %q", got.Priority, tt.priority)
			}
			if got.Project != tt.project {
				t.Errorf("project = %q, want %q", got.Project, tt.project)
			}
			if got.Description != tt.desc {
				t.Errorf("description = %q, want %q", got.Description, tt.desc)
			}
		})
	}
}

func TestParseCreateArgs_DescriptionRequired(t *testing.T) {
	cfg, _ := config.New(t.TempDir())

	for _, args := range [][]string{nil, {}, {"  "}} {
		if _, err := commands.ParseCreateArgs(cfg, args); !errors.Is(err, commands.ErrDescriptionRequired) {
			t.Errorf("args %q: expected ErrDescriptionRequired, got %v", args, err)
		}
	}
}

func TestParseCreateArgs_ConfiguredProjects(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.Projects = []string{"hammerspoon"}

	got, err := commands.ParseCreateArgs(cfg, []string{"high", "hammerspoon", "bind", "keys"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Project != "hammerspoon" || got.Description != "bind keys" {
		t.Errorf("unexpected parse %+v", got)
	}
}

func TestProjectArg(t *testing.T) {
	if got := commands.ProjectArg([]string{"Madness", "Interactive"}); got != "madness_interactive" {
		t.Errorf("got %q", got)
	}
	if got := commands.ProjectArg(nil); got != "" {
		t.Errorf("expected empty project, got %q", got)
	}
}
