package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/output"
	"taskforge/internal/service"
)

func init() {
	Register(&ListTasksCmd{})
}

// ListTasksCmd implements the listtasks command.
type ListTasksCmd struct{}

func (c *ListTasksCmd) Name() string      { return "listtasks" }
func (c *ListTasksCmd) Aliases() []string { return []string{"ls"} }
func (c *ListTasksCmd) Synopsis() string  { return "List local task crystals" }
func (c *ListTasksCmd) Usage() string     { return "taskforge listtasks" }
func (c *ListTasksCmd) NeedsRemote() bool { return false }

func (c *ListTasksCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListTasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	crystals := inv.All()
	if len(crystals) == 0 {
		fmt.Fprintln(out, "no task crystals yet (forge one with: taskforge createtask <description>)")
		return exitcode.Success
	}

	st := output.NewStyler(out)
	unsynced := 0
	for i, cr := range crystals {
		output.FormatCrystal(out, st, i+1, cr)
		if !cr.Synced() {
			unsynced++
		}
	}

	if unsynced > 0 {
		fmt.Fprintf(out, "total: %d task crystals (%d local only)\n", len(crystals), unsynced)
	} else {
		fmt.Fprintf(out, "total: %d task crystals\n", len(crystals))
	}
	return exitcode.Success
}
