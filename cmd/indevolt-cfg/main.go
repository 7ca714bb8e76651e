// Indevolt-cfg is a command-line utility for Indevolt power-control
// devices.
//
// It provides network discovery, direct point reads and writes, device
// configuration display, and an interactive device browser. The tool
// communicates with devices over their HTTP RPC interface on the local
// network.
//
// Usage:
//
//	indevolt-cfg [command] [flags]
//
// Running without arguments launches the interactive browser.
// See 'indevolt-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/indevolt/indevolt-go/internal/logging"
	"github.com/indevolt/indevolt-go/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indevolt-cfg",
	Short: "Indevolt Device Configuration Utility",
	Long: `A standalone utility for Indevolt power-control devices.

Provides network discovery, direct data point reads and writes, device
configuration display, and an interactive device browser.

If no command is specified, the interactive browser will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the browser when no subcommand provided
		return runBrowse(cmd, args)
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
		fmt.Printf("indevolt-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
