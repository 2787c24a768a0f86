package main

import (
	"context"

	"github.com/duelgame/shell"
	"github.com/duelgame/shell/driver/replay"
)

// runHeadless renders the requested number of frames into the software
// backend without opening a window, then shuts down. Useful for smoke tests
// and for profiling the render path.
func runHeadless(cfg shell.Config, frames int) error {
	src := replay.NewManual(4)
	src.Send(shell.EventWindowCreated{Handle: "headless"})
	src.Send(shell.EventWindowResized{Width: cfg.Width, Height: cfg.Height})

	renderer := &arenaRenderer{}
	rendered := 0
	app := shell.New(cfg,
		shell.WithDevice(mustSoftwareDevice()),
		shell.WithRenderer(func(fc *shell.FrameContext) error {
			if err := renderer.render(fc); err != nil {
				return err
			}
			rendered++
			if rendered >= frames {
				_ = src.Close()
			}
			return nil
		}),
	)

	if err := app.Run(context.Background(), src); err != nil {
		return err
	}
	printStats(app.Stats())
	return nil
}

func mustSoftwareDevice() shell.Device {
	dev, err := shell.NewDevice(shell.DeviceSoftware)
	if err != nil {
		panic(err)
	}
	return dev
}
