package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/output"
	"taskforge/internal/service"
)

const (
	// DefaultServerSearchLimit is the --limit default for searchcrystals.
	DefaultServerSearchLimit = 10

	// localSearchShown caps how many local matches are printed.
	localSearchShown = 5
)

func init() {
	Register(&SearchCmd{})
}

// SearchCmd implements the searchcrystals command.
type SearchCmd struct {
	limit int
}

// SetLimit sets the server result limit (for testing).
func (c *SearchCmd) SetLimit(n int) {
	c.limit = n
}

func (c *SearchCmd) Name() string      { return "searchcrystals" }
func (c *SearchCmd) Aliases() []string { return []string{"search"} }
func (c *SearchCmd) Synopsis() string  { return "Search local crystals and server tasks" }
func (c *SearchCmd) Usage() string     { return "taskforge searchcrystals [--limit <n>] <query...>" }
func (c *SearchCmd) NeedsRemote() bool { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.limit, "limit", DefaultServerSearchLimit, "")
	fs.IntVar(&c.limit, "n", DefaultServerSearchLimit, "")
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	query := strings.ToLower(strings.TrimSpace(strings.Join(args, " ")))
	if query == "" {
		fmt.Fprintln(errOut, "error: search query required")
		return exitcode.UserError
	}
	if c.limit < 1 {
		fmt.Fprintf(errOut, "error: invalid limit: %d\n", c.limit)
		return exitcode.UserError
	}

	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	st := output.NewStyler(out)
	if !cfg.Quiet {
		fmt.Fprintf(out, "searching for: %s\n", query)
	}

	matches := inv.Search(query)
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matching crystals in inventory")
	} else {
		fmt.Fprintf(out, "local crystals (%d matches):\n", len(matches))
		for i, m := range matches {
			if i == localSearchShown {
				fmt.Fprintf(out, "  ... and %d more matches\n", len(matches)-localSearchShown)
				break
			}
			output.FormatCrystalBrief(out, st, m)
		}
	}

	res := svc.SearchTasks(ctx, query, c.limit)
	results, ok := res.Unwrap()
	switch {
	case !ok:
		fmt.Fprintf(out, "server search unavailable: %s\n", res.Message())
	case len(results.Items) == 0:
		fmt.Fprintln(out, "no matching tasks on server")
	default:
		fmt.Fprintf(out, "server results (%d matches):\n", len(results.Items))
		for _, item := range results.Items {
			output.FormatServerTask(out, st, item)
		}
	}
	return exitcode.Success
}
