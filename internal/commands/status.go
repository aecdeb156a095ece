package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show sync configuration and connectivity" }
func (c *StatusCmd) Usage() string     { return "taskforge status" }
func (c *StatusCmd) NeedsRemote() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

// Run prints the status. Exits with BackendError when sync is enabled but
// the service is unreachable.
func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "backend:    %s\n", cfg.Backend)
	if cfg.Backend == config.BackendTaskServer {
		fmt.Fprintf(out, "endpoint:   %s\n", cfg.BaseURL())
	}

	code := exitcode.Success
	switch {
	case !cfg.Enabled:
		fmt.Fprintln(out, "sync:       disabled")
	case svc.Connected():
		fmt.Fprintln(out, "sync:       connected")
	default:
		fmt.Fprintln(out, "sync:       unreachable")
		code = exitcode.BackendError
	}

	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}
	local := 0
	for _, cr := range inv.All() {
		if !cr.Synced() {
			local++
		}
	}
	fmt.Fprintf(out, "crystals:   %d (%d local only)\n", inv.Len(), local)
	if last := inv.LastSync(); !last.IsZero() {
		fmt.Fprintf(out, "last saved: %s\n", last.Local().Format("2006-01-02 15:04"))
	}
	return code
}
