package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/avkit/dlnacast/internal/api"
	"github.com/avkit/dlnacast/internal/config"
	"github.com/avkit/dlnacast/internal/control"
	"github.com/avkit/dlnacast/internal/discovery"
	"github.com/avkit/dlnacast/internal/tui"
)

// Command flags
var (
	deviceQuery   string
	scanTimeout   int
	generation    int
	searchAll     bool
	noAutoplay    bool
	serveAddr     string
	rescanSeconds int
)

func init() {
	// Common flags for renderer commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceQuery, "device", "", "Target renderer (name, nickname, or name@ip)")
	rootCmd.PersistentFlags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (0 uses the configured default)")
	rootCmd.PersistentFlags().IntVar(&generation, "generation", 0, "UPnP service generation (0 uses the configured default)")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(castCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

// newScanner builds a scanner from saved preferences, with flags taking
// precedence.
func newScanner(reg *config.Registry) *discovery.Scanner {
	s := &discovery.Scanner{}
	if reg.Preferences != nil {
		s.Timeout = time.Duration(reg.Preferences.ScanTimeout) * time.Second
		s.Generation = reg.Preferences.Generation
	}
	if scanTimeout > 0 {
		s.Timeout = time.Duration(scanTimeout) * time.Second
	}
	if generation > 0 {
		s.Generation = generation
	}
	return s
}

// rememberDevices records scan results in the registry so renderers can be
// addressed by name or nickname later.
func rememberDevices(reg *config.Registry, devices []*discovery.Device) {
	for _, d := range devices {
		entry := reg.EnsureDevice(d.Key())
		entry.LastIP = d.IP
		entry.LastPort = d.Port
		entry.LastSeen = time.Now()
		entry.HasAVTransport = d.HasAVTransport
	}
	if err := reg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saving device registry: %v\n", err)
	}
}

// resolveDevice scans the network and returns the renderer the command
// targets: the --device query when given, the configured default otherwise.
// With neither, a single discovered renderer is used as is; more than one
// opens the interactive picker.
func resolveDevice() (*discovery.Device, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	scanner := newScanner(reg)
	devices, err := scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	rememberDevices(reg, devices)

	query := deviceQuery
	if query == "" && reg.Preferences != nil {
		query = reg.Preferences.DefaultDevice
	}

	if query == "" {
		switch len(devices) {
		case 0:
			return nil, fmt.Errorf("no renderers found. Try a longer --timeout")
		case 1:
			fmt.Printf("Using %s\n", devices[0])
			return devices[0], nil
		default:
			dev, err := tui.PickDevice(scanner)
			if err != nil {
				return nil, err
			}
			if dev == nil {
				return nil, fmt.Errorf("no renderer selected")
			}
			return dev, nil
		}
	}

	// Full key, nickname, or friendly name, via the registry first.
	if key, _ := reg.FindDevice(query); key != "" {
		for _, d := range devices {
			if d.Key() == key {
				return d, nil
			}
		}
	}
	for _, d := range devices {
		if d.Key() == query || d.Name == query {
			return d, nil
		}
	}
	return nil, fmt.Errorf("renderer %q not found on the network", query)
}

// discoverCmd lists renderers on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan for DLNA renderers on the network",
	Long: `Scan for DLNA/UPnP renderers using SSDP discovery.

This command multicasts an M-SEARCH request and displays every device that
answers, with its address and whether it exposes the AVTransport playback
service. By default the search targets AVTransport devices; --all widens it
to every SSDP-capable device on the network.`,
	Example: `  # Scan with the configured timeout (default 5s)
  dlnacast discover

  # Longer scan for sleepy renderers
  dlnacast discover --timeout 15

  # Search for first-generation services only
  dlnacast discover --generation 1

  # List everything that speaks SSDP, renderer or not
  dlnacast discover --all`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&searchAll, "all", false, "Search for all SSDP devices, not just AVTransport renderers")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	scanner := newScanner(reg)
	if searchAll {
		scanner.ST = discovery.SearchTargetAll
	}

	fmt.Printf("Scanning for renderers (timeout: %s)...\n\n", scanner.Timeout)

	// Print devices as they answer rather than after the scan window.
	count := 0
	sess, err := scanner.Start(func(d *discovery.Device) {
		count++
		fmt.Printf("%d. %s\n", count, d.Name)
		fmt.Printf("   IP:       %s:%d\n", d.IP, d.Port)
		if entry := reg.GetDevice(d.Key()); entry != nil && entry.Nickname != "" {
			fmt.Printf("   Nickname: %s\n", entry.Nickname)
		}
		if d.HasAVTransport {
			fmt.Printf("   Playback: yes\n")
		} else {
			fmt.Printf("   Playback: no (no AVTransport service)\n")
		}
		fmt.Println()
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	sess.Wait()
	if err := sess.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	devices := sess.Devices()
	rememberDevices(reg, devices)

	if len(devices) == 0 {
		fmt.Println("No renderers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the renderer is powered on and on the same network")
		fmt.Println("  - Some renderers only answer while their screen is on")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Multicast may be blocked on guest or corporate WiFi")
		return nil
	}

	fmt.Println("Use 'dlnacast cast <url> --device <name>' to start playback")
	fmt.Println("Use 'dlnacast' without arguments to pick a default renderer")
	return nil
}

// pickCmd launches the interactive device picker
var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick the default renderer interactively",
	Long: `Launch an interactive picker for choosing the default renderer.

The selected renderer is saved as the default target, so later commands
work without the --device flag. This is also what running dlnacast with
no arguments does.`,
	RunE: runPick,
}

func runPick(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	dev, err := tui.PickDevice(newScanner(reg))
	if err != nil {
		return err
	}
	if dev == nil {
		return nil
	}

	rememberDevices(reg, []*discovery.Device{dev})
	reg.SetDefaultDevice(dev.Key())
	if err := reg.Save(); err != nil {
		return fmt.Errorf("saving default renderer: %w", err)
	}

	fmt.Printf("Default renderer set to %s\n", dev)
	return nil
}

// castCmd sets a media URL on the renderer and starts playback
var castCmd = &cobra.Command{
	Use:   "cast <url>",
	Short: "Cast a media URL to a renderer",
	Long: `Send a media URL to a renderer and start playback.

The URL must be reachable from the renderer itself, not just from this
machine; renderers fetch the media directly. Playback starts immediately
unless --no-autoplay is given.`,
	Example: `  # Cast to the default renderer
  dlnacast cast http://192.168.1.2:8000/movie.mp4

  # Cast to a specific renderer by nickname
  dlnacast cast http://192.168.1.2:8000/movie.mp4 --device tv

  # Queue without starting playback
  dlnacast cast http://192.168.1.2:8000/movie.mp4 --no-autoplay`,
	Args: cobra.ExactArgs(1),
	RunE: runCast,
}

func init() {
	castCmd.Flags().BoolVar(&noAutoplay, "no-autoplay", false, "Set the URL without starting playback")
}

func runCast(cmd *cobra.Command, args []string) error {
	dev, err := resolveDevice()
	if err != nil {
		return err
	}
	if !dev.HasAVTransport {
		return fmt.Errorf("%s has no AVTransport service and cannot play media", dev.Name)
	}

	url := args[0]
	fmt.Printf("Casting to %s...\n", dev)
	control.NewClient(dev).PlayMedia(url, !noAutoplay)

	if noAutoplay {
		fmt.Println("✓ Media queued (use 'dlnacast play' to start)")
	} else {
		fmt.Println("✓ Playback started")
	}
	return nil
}

// playCmd resumes paused playback
var playCmd = &cobra.Command{
	Use:     "play",
	Aliases: []string{"resume"},
	Short:   "Resume playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simpleAction(func(c *control.Client) { c.Resume() }, "Playback resumed")
	},
}

// pauseCmd pauses playback
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simpleAction(func(c *control.Client) { c.Pause() }, "Playback paused")
	},
}

// stopCmd stops playback
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simpleAction(func(c *control.Client) { c.Stop() }, "Playback stopped")
	},
}

// seekCmd jumps to an absolute position
var seekCmd = &cobra.Command{
	Use:   "seek <seconds>",
	Short: "Seek to a position in the current media",
	Long: `Seek to an absolute position in the currently playing media,
given in seconds from the start.`,
	Example: `  # Jump to the 90 second mark
  dlnacast seek 90

  # Jump to 1h30m
  dlnacast seek 5400`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

func runSeek(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q: expected seconds", args[0])
	}

	dev, err := resolveDevice()
	if err != nil {
		return err
	}
	control.NewClient(dev).Seek(seconds)
	fmt.Printf("✓ Position set to %s\n", control.FormatSeekTarget(seconds))
	return nil
}

// volumeCmd reads or sets the renderer volume
var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Get or set renderer volume",
	Long: `Read the current volume, or set it when a level (0-100) is given.

Volume control uses the RenderingControl service, which some devices
expose even when they cannot play media.`,
	Example: `  # Show current volume
  dlnacast volume

  # Set volume to 35
  dlnacast volume 35 --device tv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func runVolume(cmd *cobra.Command, args []string) error {
	dev, err := resolveDevice()
	if err != nil {
		return err
	}
	client := control.NewClient(dev)

	if len(args) == 0 {
		volume, ok := control.Volume(client.GetVolume())
		if !ok {
			return fmt.Errorf("%s did not report a volume", dev.Name)
		}
		fmt.Printf("Volume: %d\n", volume)
		return nil
	}

	level, err := strconv.Atoi(args[0])
	if err != nil || level < 0 || level > 100 {
		return fmt.Errorf("invalid volume %q: expected 0-100", args[0])
	}
	client.SetVolume(level)
	fmt.Printf("✓ Volume set to %d\n", level)
	return nil
}

// muteCmd mutes the renderer
var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute the renderer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simpleAction(func(c *control.Client) { c.Mute() }, "Muted")
	},
}

// unmuteCmd unmutes the renderer
var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute the renderer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simpleAction(func(c *control.Client) { c.Unmute() }, "Unmuted")
	},
}

// nicknameCmd assigns a short alias to a remembered renderer
var nicknameCmd = &cobra.Command{
	Use:   "nickname <name-or-key> <nickname>",
	Short: "Give a renderer a short nickname",
	Long: `Assign a nickname to a remembered renderer so it can be targeted
with --device <nickname> instead of its full name.

The renderer must have been seen by a previous scan.`,
	Example: `  dlnacast nickname LivingRoomTV tv
  dlnacast nickname "LivingRoomTV@192.168.1.50" tv`,
	Args: cobra.ExactArgs(2),
	RunE: runNickname,
}

func runNickname(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	key, entry := reg.FindDevice(args[0])
	if entry == nil {
		return fmt.Errorf("renderer %q not in the registry; run 'dlnacast discover' first", args[0])
	}
	entry.Nickname = args[1]
	if err := reg.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ %s is now %q\n", key, args[1])
	return nil
}

// statusCmd shows what the renderer is doing
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show renderer playback status",
	Long: `Show the renderer's transport state, current media URI, and
playback position.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dev, err := resolveDevice()
	if err != nil {
		return err
	}
	client := control.NewClient(dev)

	fmt.Printf("Renderer: %s\n", dev)

	if state, ok := control.TransportState(client.TransportInfo()); ok {
		fmt.Printf("State:    %s\n", state)
	} else {
		fmt.Println("State:    unknown (no reply)")
	}
	if uri, ok := control.MediaURI(client.MediaInfo()); ok && uri != "" {
		fmt.Printf("Media:    %s\n", uri)
	}
	if position, ok := control.Position(client.PositionInfo()); ok {
		fmt.Printf("Position: %s\n", position)
	}
	return nil
}

// serveCmd runs the HTTP control API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control API",
	Long: `Run a long-lived HTTP daemon exposing discovery and playback
control as a JSON API.

The daemon rescans the network periodically, so its device list stays
current without per-request discovery latency.`,
	Example: `  # Serve on the default address
  dlnacast serve

  # Bind a specific address, rescan every minute
  dlnacast serve --addr 0.0.0.0:9190 --rescan 60`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:9190", "Listen address for the API")
	serveCmd.Flags().IntVar(&rescanSeconds, "rescan", 30, "Seconds between background rescans")
}

func runServe(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := api.NewServer(newScanner(reg), time.Duration(rescanSeconds)*time.Second)
	fmt.Printf("Serving control API on http://%s\n", serveAddr)
	return server.Run(ctx, serveAddr)
}

// simpleAction resolves the target renderer and fires one transport action.
func simpleAction(do func(*control.Client), ok string) error {
	dev, err := resolveDevice()
	if err != nil {
		return err
	}
	do(control.NewClient(dev))
	fmt.Printf("✓ %s\n", ok)
	return nil
}
