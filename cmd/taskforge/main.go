// Package main is the entry point for the taskforge CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskforge/internal/backend/googletasks"
	"taskforge/internal/backend/taskserver"
	"taskforge/internal/cli"
	"taskforge/internal/commands"
	"taskforge/internal/config"
	"taskforge/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// newService builds the backend named in the config.
func newService(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendTaskServer:
		return taskserver.New(cfg, logger), nil
	case config.BackendGoogleTasks:
		if !cfg.HasToken() {
			return nil, fmt.Errorf("not logged in (run: %s login)", config.AppName)
		}
		return googletasks.New(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}
