//go:build !android

package main

import (
	"context"

	"github.com/duelgame/shell"
	"github.com/duelgame/shell/driver/desktop"
)

// runSession opens a desktop window and runs the app until it is closed.
// desktop.Main owns the main goroutine; the app runs in the callback.
func runSession(cfg shell.Config) error {
	var runErr error
	var stats shell.SessionStats
	desktop.Main(cfg, func(src shell.EventSource) {
		renderer := &arenaRenderer{}
		app := shell.New(cfg, shell.WithRenderer(renderer.render))
		runErr = app.Run(context.Background(), src)
		stats = app.Stats()
	})
	if runErr != nil {
		return runErr
	}
	printStats(stats)
	return nil
}
