package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/indevolt/indevolt-go/internal/discovery"
	"github.com/indevolt/indevolt-go/internal/indevolt"
	"github.com/indevolt/indevolt-go/internal/points"
	"github.com/indevolt/indevolt-go/internal/tui"
)

// Command flags
var (
	deviceHost   string
	devicePort   int
	scanTimeout  int
	useMDNS      bool
	outputFormat string
	rpcTimeout   int
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceHost, "device", "", "Device address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", indevolt.DefaultPort, "Device RPC port")
	rootCmd.PersistentFlags().IntVar(&rpcTimeout, "rpc-timeout", 10, "RPC request timeout in seconds")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pointsCmd)
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Indevolt devices on the network",
	Long: `Scan for Indevolt devices using UDP broadcast discovery.

This command broadcasts a discovery probe and collects announcements for
the full scan window, then lists every device that replied with its
address, RPC port, and advertised metadata.`,
	Example: `  # Scan with the default 3-second window
  indevolt-cfg scan

  # Longer scan for slow networks
  indevolt-cfg scan --timeout 10

  # Fall back to mDNS discovery
  indevolt-cfg scan --mdns

  # JSON output for scripting
  indevolt-cfg scan --format json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 3, "Scan timeout in seconds")
	scanCmd.Flags().BoolVar(&useMDNS, "mdns", false, "Use mDNS discovery instead of UDP broadcast")
	scanCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout := time.Duration(scanTimeout) * time.Second

	var devices []*discovery.Device
	if useMDNS {
		fmt.Printf("Scanning for Indevolt devices via mDNS (timeout: %ds)...\n\n", scanTimeout)
		var err error
		devices, err = discovery.ScanForDevices(timeout)
		if err != nil {
			return fmt.Errorf("mDNS scan failed: %w", err)
		}
	} else {
		fmt.Printf("Scanning for Indevolt devices (timeout: %ds)...\n\n", scanTimeout)
		devices = discovery.Discover(timeout)
	}

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(devices, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil

	case "compact":
		for _, device := range devices {
			fmt.Println(device.String())
		}
		return nil
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered on and connected to your LAN")
		fmt.Println("  - Broadcast discovery does not cross subnets or VLANs")
		fmt.Println("  - Some WiFi access points filter broadcast traffic")
		fmt.Println("  - Try --mdns as an alternative discovery method")
		fmt.Println("  - Use --device to specify the address manually")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	for i, device := range devices {
		name := device.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%d. %s\n", i+1, name)
		fmt.Printf("   Address: %s:%d\n", device.Host, device.Port)
		if len(device.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", device.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'indevolt-cfg info --device <addr>' to view device configuration")
	fmt.Println("Use 'indevolt-cfg browse' for the interactive browser")

	return nil
}

// infoCmd displays device configuration
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device configuration",
	Long: `Display the system configuration of an Indevolt device.

Connects to the device, retrieves its configuration, and prints it as
indented JSON. The reported model type is used to derive the hardware
generation, which appears in the device section.`,
	Example: `  # Show config with auto-discovery
  indevolt-cfg info

  # Show config for a specific device
  indevolt-cfg info --device 192.168.1.40`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := deviceClient()
	if err != nil {
		return err
	}

	config, err := client.GetConfig()
	if err != nil {
		return deviceFailure(err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))

	return nil
}

// getCmd reads data points
var getCmd = &cobra.Command{
	Use:   "get <point> [point...]",
	Short: "Read data points from a device",
	Long: `Read one or more data points from an Indevolt device.

Points are referenced by numeric ID or by catalog name (see
'indevolt-cfg points' for the list of known names). Values are printed
one per line with the unit from the catalog where known.`,
	Example: `  # Read battery state of charge by name
  indevolt-cfg get battery_soc --device 192.168.1.40

  # Read several points by ID and name
  indevolt-cfg get 1664 pv_power output_power --device 192.168.1.40`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ids := make([]int, 0, len(args))
	for _, ref := range args {
		id, err := points.Resolve(ref)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	client, err := deviceClient()
	if err != nil {
		return err
	}

	result, err := client.FetchData(ids...)
	if err != nil {
		return deviceFailure(err)
	}

	for _, id := range ids {
		label := strconv.Itoa(id)
		unit := ""
		if p, ok := points.Get(id); ok {
			label = p.Name
			unit = p.Unit
		}

		value, ok := result[strconv.Itoa(id)]
		if !ok {
			fmt.Printf("%s: (no value)\n", label)
			continue
		}

		if unit != "" {
			fmt.Printf("%s: %v %s\n", label, value, unit)
		} else {
			fmt.Printf("%s: %v\n", label, value)
		}
	}

	return nil
}

// setCmd writes a control point
var setCmd = &cobra.Command{
	Use:   "set <point> <value> [value...]",
	Short: "Write values to a control point",
	Long: `Write one or more integer values to a single control point.

The point is referenced by numeric ID or catalog name. Writing to a
point the catalog does not mark writable is allowed but prompts a
warning, since firmware may expose writable points the catalog has not
caught up with.`,
	Example: `  # Limit output power to 600 W
  indevolt-cfg set output_limit 600 --device 192.168.1.40

  # Write by numeric ID
  indevolt-cfg set 47015 2 --device 192.168.1.40`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	id, err := points.Resolve(args[0])
	if err != nil {
		return err
	}

	values := make([]int, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, v)
	}

	if p, ok := points.Get(id); ok && !p.Writable {
		fmt.Fprintf(os.Stderr, "Warning: point %s (%d) is not marked writable in the catalog\n", p.Name, p.ID)
	}

	client, err := deviceClient()
	if err != nil {
		return err
	}

	fmt.Printf("Writing %v to point %d on %s:%d...\n", values, id, client.Host, client.Port)

	if _, err := client.SetData(id, values...); err != nil {
		return deviceFailure(err)
	}

	fmt.Println("✓ Write accepted")
	return nil
}

// browseCmd launches the interactive device browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive device browser",
	Long: `Launch an interactive TUI that scans for devices and shows live
telemetry and configuration for the selected device.

This is the recommended way to explore devices for most users.`,
	Example: `  # Launch the browser
  indevolt-cfg browse
  # Or simply (browse is the default):
  indevolt-cfg`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&scanTimeout, "timeout", 3, "Scan timeout in seconds")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the browser requires an interactive terminal; use 'indevolt-cfg scan' instead")
	}

	if err := tui.Run(time.Duration(scanTimeout) * time.Second); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}

	return nil
}

// pointsCmd lists the known point catalog
var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List known data and control points",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-8s %-16s %-6s %-8s %s\n", "ID", "NAME", "UNIT", "ACCESS", "DESCRIPTION")
		for _, p := range points.All() {
			access := "read"
			if p.Writable {
				access = "write"
			}
			fmt.Printf("%-8d %-16s %-6s %-8s %s\n", p.ID, p.Name, p.Unit, access, p.Description)
		}
	},
}

// deviceClient resolves the target device (via flag or discovery) and
// returns a configured client for it.
func deviceClient() (*indevolt.Client, error) {
	host, port, err := targetDevice()
	if err != nil {
		return nil, err
	}

	client := indevolt.NewClient(host, port)
	if rpcTimeout > 0 {
		client.SetTimeout(time.Duration(rpcTimeout) * time.Second)
	}
	return client, nil
}

// targetDevice returns the device address from the --device flag, or
// runs a short discovery scan when none was given.
func targetDevice() (string, int, error) {
	if deviceHost != "" {
		return deviceHost, devicePort, nil
	}

	fmt.Println("No device address specified, attempting auto-discovery...")
	devices := discovery.Discover(discovery.DefaultTimeout)

	if len(devices) == 0 {
		return "", 0, fmt.Errorf("no devices found. Use --device to specify the address manually")
	}

	if len(devices) > 1 {
		fmt.Printf("Found %d devices:\n", len(devices))
		for i, device := range devices {
			fmt.Printf("%d. %s (%s:%d)\n", i+1, device.Name, device.Host, device.Port)
		}
		return "", 0, fmt.Errorf("multiple devices found. Use --device to specify which one")
	}

	device := devices[0]
	fmt.Printf("Found device: %s (%s:%d)\n\n", device.Name, device.Host, device.Port)
	return device.Host, device.Port, nil
}

// deviceFailure wraps a device error with a short message and prints
// troubleshooting advice to stderr.
func deviceFailure(err error) error {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, indevolt.GetTroubleshootingHint(err))
	return fmt.Errorf("%s", indevolt.GetShortErrorMessage(err))
}
