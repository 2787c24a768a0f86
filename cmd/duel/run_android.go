//go:build android

package main

import (
	"context"

	"github.com/duelgame/shell"
	"github.com/duelgame/shell/driver/android"
)

// runSession runs the app inside the Android activity event loop.
// android.Main marks the config's window as volatile: the OS destroys the
// native window on every suspend.
func runSession(cfg shell.Config) error {
	var runErr error
	android.Main(cfg, func(cfg shell.Config, src shell.EventSource) {
		renderer := &arenaRenderer{}
		app := shell.New(cfg, shell.WithRenderer(renderer.render))
		runErr = app.Run(context.Background(), src)
	})
	return runErr
}
