package commands

import (
	"errors"
	"strings"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/service"
)

// ErrDescriptionRequired indicates createtask got no description.
var ErrDescriptionRequired = errors.New("description required")

// CreateArgs is a parsed createtask invocation.
type CreateArgs struct {
	Priority    service.Priority
	Project     string
	Description string
}

// ParseCreateArgs parses "[priority] [project] <description...>".
//
// Rules:
//  1. The first word is a priority only when more words follow it.
//  2. After a priority, the next word is a project only when it is a
//     configured project and more words follow it.
//  3. Everything else is the description.
//
// A project is never recognised without a priority before it, so
// "terraria fix it" is a description in the default project.
func ParseCreateArgs(cfg *config.Config, args []string) (CreateArgs, error) {
	parsed := CreateArgs{
		Priority: service.PriorityMedium,
		Project:  cfg.DefaultProject,
	}

	rest := args
	if len(rest) > 1 && service.IsPriority(rest[0]) {
		parsed.Priority = service.ParsePriority(rest[0])
		rest = rest[1:]
		if len(rest) > 1 && cfg.IsProject(rest[0]) {
			parsed.Project = strings.ToLower(rest[0])
			rest = rest[1:]
		}
	}

	parsed.Description = strings.TrimSpace(strings.Join(rest, " "))
	if parsed.Description == "" {
		return CreateArgs{}, ErrDescriptionRequired
	}
	return parsed, nil
}

// ProjectArg joins words into a project key: "Madness Interactive" becomes
// "madness_interactive".
func ProjectArg(args []string) string {
	return strings.ToLower(strings.Join(args, "_"))
}

// loadForge opens the inventory and couples it with svc.
func loadForge(cfg *config.Config, svc service.Service) (*crystal.Forge, error) {
	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		return nil, err
	}
	return crystal.NewForge(inv, svc), nil
}
