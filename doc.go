// Package shell is the cross-platform window and GPU-surface lifecycle core
// for the duel game.
//
// Desktop window systems and the Android activity runtime deliver lifecycle
// and resize events with different timing and guarantees. shell normalizes
// both into one ordered event stream, feeds it through a small state machine,
// and keeps the swapchain configuration in lockstep so that a frame is never
// presented to a stale or absent surface.
//
// The moving parts:
//
//   - Event sources (driver/desktop, driver/android, driver/replay) translate
//     raw platform callbacks into shell.Event values, in arrival order.
//   - Machine consumes events and decides when the application is Active,
//     Suspended or Destroyed, driving the SurfaceManager on each transition.
//   - SurfaceManager owns the process-wide GPU device and the per-window
//     swapchain, creating, reconfiguring and releasing them as the machine
//     dictates.
//   - FrameLoop runs while the machine is Active: it acquires a frame target,
//     hands it to the application's render callback together with the elapsed
//     time, and presents the result.
//
// Everything above runs on a single goroutine; see App.Run.
//
// GPU access goes through the Device and Swapchain interfaces. A software
// device is always registered as a fallback; importing the gpu/wgpu package
// registers the hardware-accelerated backend:
//
//	import _ "github.com/duelgame/shell/gpu/wgpu"
//
// Minimal usage:
//
//	cfg := shell.DefaultConfig().WithTitle("duel").WithSize(1280, 720)
//	app := shell.New(cfg, shell.WithRenderer(drawFrame))
//	desktop.Main(cfg, func(src shell.EventSource) {
//		if err := app.Run(context.Background(), src); err != nil {
//			log.Fatal(err)
//		}
//	})
//
// By default shell produces no log output; call SetLogger to enable it.
package shell
