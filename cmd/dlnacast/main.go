// Dlnacast is a command-line control point for DLNA/UPnP media renderers.
//
// It discovers renderers on the local network over SSDP, remembers them by
// nickname, and drives playback (cast, pause, seek, volume) over the UPnP
// AVTransport and RenderingControl services. No hardware or vendor app is
// required; any renderer answering ssdp:all works.
//
// Usage:
//
//	dlnacast [command] [flags]
//
// Running without arguments launches the interactive device picker.
// See 'dlnacast --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avkit/dlnacast/internal/logging"
	"github.com/avkit/dlnacast/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dlnacast",
	Short: "DLNA/UPnP media renderer control point",
	Long: `A command-line control point for DLNA/UPnP media renderers.

Discovers renderers on the local network, remembers them by nickname,
and drives playback over UPnP AVTransport and RenderingControl.

If no command is specified, the interactive device picker will launch
and the selected renderer becomes the default target.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: pick a renderer when no subcommand provided
		return runPick(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dlnacast %s (commit: %s)\n", version.Version, version.Commit)
	},
}
