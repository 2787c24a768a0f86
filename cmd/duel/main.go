// duel opens the game window and runs the render loop.
//
// Usage:
//
//	duel                 - Open the window and run until closed
//	duel --frames 300    - Render 300 frames headless and exit
//	duel backends        - List the available GPU device backends
//
// Global flags:
//
//	--config <path>      - Config file (default: ~/.duel/shell.yaml, ./duel.yaml)
//	--log-level <level>  - debug, info, warn or error (default: warn)
package main

import (
	"fmt"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/duelgame/shell"

	// Register the hardware device backend.
	_ "github.com/duelgame/shell/gpu/wgpu"
)

var (
	flagConfig   string
	flagLogLevel string
	flagFrames   int
	flagFPS      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "duel - two fighters, one arena",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		cfg, err := shell.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagFPS > 0 {
			cfg = cfg.WithFrameRate(flagFPS)
		}
		if flagFrames > 0 {
			return runHeadless(cfg, flagFrames)
		}
		return runSession(cfg)
	},
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available GPU device backends",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Registered device backends (in priority order):")
		for _, name := range shell.DeviceBackends() {
			fmt.Printf("  %s\n", name)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.Flags().IntVar(&flagFrames, "frames", 0, "Render N frames headless and exit")
	rootCmd.Flags().IntVar(&flagFPS, "fps", 0, "Override the configured frame rate")

	rootCmd.AddCommand(backendsCmd)
}

func setupLogging() {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           parseLevel(flagLogLevel),
	})
	shell.SetLogger(slog.New(logger))
}

func parseLevel(s string) charmlog.Level {
	switch s {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}

func printStats(stats shell.SessionStats) {
	fmt.Printf("frames: %d presented, %d dropped, %d skipped; %d surface reconfigurations\n",
		stats.Frames.Presented, stats.Frames.Dropped, stats.Frames.Skipped,
		stats.SurfaceReconfigures)
}
