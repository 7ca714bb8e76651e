// Indevolt-sim runs a simulated Indevolt power-control device.
//
// The simulator answers UDP discovery probes and serves the device RPC
// endpoints from an in-memory point table. It is useful for developing
// and testing client tooling without hardware on the network.
//
// Usage:
//
//	indevolt-sim run [flags]
//
// See 'indevolt-sim run --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/indevolt/indevolt-go/internal/logging"
	"github.com/indevolt/indevolt-go/internal/simulator"
	"github.com/indevolt/indevolt-go/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indevolt-sim",
	Short: "Indevolt Device Simulator",
	Long: `A simulated Indevolt power-control device.

Answers UDP discovery probes and serves the device RPC endpoints from an
in-memory point table, so client tooling can be developed and tested
without hardware on the network.

Note: For talking to devices, use the separate 'indevolt-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command and flags
var (
	httpAddr   string
	probeAddr  string
	deviceName string
	deviceType string
	logLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the simulated device",
	Long: `Start the simulated device and block until interrupted.

By default the simulator binds the standard device ports on all
interfaces, so 'indevolt-cfg scan' on the same network segment will find
it. Use loopback addresses to keep it local to one machine.`,
	Example: `  # Simulate a device on the standard ports
  indevolt-sim run

  # Keep the simulator on loopback with verbose logging
  indevolt-sim run --http-addr 127.0.0.1:8080 --probe-addr 127.0.0.1:8099 --log-level debug

  # Simulate a first-generation unit
  indevolt-sim run --type CMS-SP1000 --name "bench unit"`,
	RunE: runSimulator,
}

func init() {
	runCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "RPC listen address")
	runCmd.Flags().StringVar(&probeAddr, "probe-addr", ":8099", "UDP discovery probe listen address")
	runCmd.Flags().StringVar(&deviceName, "name", "Indevolt Simulator", "Advertised device name")
	runCmd.Flags().StringVar(&deviceType, "type", "CMS-SP2000", "Reported model type")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runSimulator(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	device := simulator.New(simulator.Config{
		Name:       deviceName,
		DeviceType: deviceType,
		HTTPAddr:   httpAddr,
		ProbeAddr:  probeAddr,
	})

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	fmt.Printf("Simulated device %q listening\n", deviceName)
	fmt.Printf("  RPC:   %s\n", device.RPCAddr())
	fmt.Printf("  Probe: %s\n", device.ProbeAddr())
	fmt.Println("Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	device.Stop()

	return nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("indevolt-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
