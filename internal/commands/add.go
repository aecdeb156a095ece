package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/exitcode"
	"taskforge/internal/output"
	"taskforge/internal/service"
)

func init() {
	Register(&CreateTaskCmd{})
}

// CreateTaskCmd implements the createtask command.
type CreateTaskCmd struct{}

func (c *CreateTaskCmd) Name() string      { return "createtask" }
func (c *CreateTaskCmd) Aliases() []string { return []string{"add"} }
func (c *CreateTaskCmd) Synopsis() string  { return "Forge a task crystal" }
func (c *CreateTaskCmd) Usage() string {
	return "taskforge createtask [priority] [project] <description...>"
}
func (c *CreateTaskCmd) NeedsRemote() bool { return true }

func (c *CreateTaskCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateTaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	parsed, err := ParseCreateArgs(cfg, args)
	if err != nil {
		if errors.Is(err, ErrDescriptionRequired) {
			fmt.Fprintln(errOut, "error: description required")
			fmt.Fprintln(errOut, "usage: "+c.Usage())
			fmt.Fprintln(errOut, "example: taskforge createtask high terraria Fix crystal completion effects")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	forge, err := loadForge(cfg, svc)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	crystal, res := forge.Create(ctx, parsed.Description, parsed.Project, parsed.Priority.String())
	if err := forge.Inventory().Save(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	if !res.OK() {
		fmt.Fprintf(errOut, "warning: not synced: %s\n", res.Message())
	}

	if !cfg.Quiet {
		st := output.NewStyler(out)
		fmt.Fprintf(out, "crystal forged: %s\n", crystal.Description)
		fmt.Fprintf(out, "priority: %s | project: %s\n", st.PriorityTag(crystal.Priority), output.ProjectTitle(crystal.Project))
		if crystal.Synced() {
			fmt.Fprintf(out, "synced: %s\n", crystal.ServerID)
		}
	}
	return exitcode.Success
}
