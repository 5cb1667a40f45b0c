package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanderkohnstamm/mavshark/internal/app"
	"github.com/sanderkohnstamm/mavshark/internal/util"
)

var (
	// Logging related
	debug bool

	// Recording related
	recordPath   string
	recordFilter string

	// Heartbeat related
	heartbeatSystemID    int
	heartbeatComponentID int

	// Transport related
	follow bool

	// Display related
	refreshRate int

	rootCmd = &cobra.Command{
		Use:   "mavshark [connection]",
		Short: "MAVLink telemetry inspector",
		Long: `mavshark attaches to a MAVLink stream and shows a live table of
message types per sender, with rates, counters and a field-level
detail pane. Received traffic can be journaled and played back later
with "mavshark replay".

Connection strings:
  tcpin:host:port     listen for one TCP peer
  tcpout:host:port    connect to a TCP endpoint
  udpin:host:port     bind and learn the peer from inbound traffic
  udpout:host:port    send-to/receive-from a fixed UDP endpoint
  udpbcast:host:port  like udpout, with broadcast enabled
  serial:device:baud  serial port
  file:path           read a raw capture (see --follow)

Examples:
  mavshark                                  # udpin:0.0.0.0:14550
  mavshark tcpout:10.0.0.1:5760
  mavshark serial:/dev/ttyUSB0:57600 --heartbeat-sys-id 255
  mavshark udpin:0.0.0.0:14550 --record flight.jsonl --record-filter HEARTBEAT,ATTITUDE
  mavshark file:capture.tlog --follow`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspect,
	}
)

const (
	defaultConnection = "udpin:0.0.0.0:14550"
	defaultLogFile    = "~/.mavshark/logs/app.log"
)

func init() {
	// Recording flags
	rootCmd.Flags().StringVarP(&recordPath, "record", "r", "",
		"Journal received messages to this file (one JSON object per line)")
	rootCmd.Flags().StringVar(&recordFilter, "record-filter", "",
		"Comma-separated message names or ids to record (empty = all)")

	// Heartbeat flags
	rootCmd.Flags().IntVar(&heartbeatSystemID, "heartbeat-sys-id", -1,
		"Send GCS heartbeats with this system id (-1 = disabled)")
	rootCmd.Flags().IntVar(&heartbeatComponentID, "heartbeat-comp-id", 1,
		"Component id for outgoing heartbeats")

	// Transport flags
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false,
		"With file: connections, keep reading as the file grows")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().IntVar(&refreshRate, "refresh-rate", app.DefaultRefreshRate,
		"Display refresh rate in Hz (1-60)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	initLogging()
	defer util.CloseLogger()

	connection := defaultConnection
	if len(args) > 0 {
		connection = args[0]
	}

	config := &app.Config{
		ConnectionSpec:       connection,
		Follow:               follow,
		RecordPath:           recordPath,
		RecordFilter:         recordFilter,
		HeartbeatSystemID:    heartbeatSystemID,
		HeartbeatComponentID: heartbeatComponentID,
		RefreshRate:          refreshRate,
	}

	orchestrator, err := app.NewLive(config)
	if err != nil {
		return err
	}

	return orchestrator.Run(signalContext())
}

// signalContext cancels on Ctrl+C delivered as a signal, for the
// window before raw mode routes it through the keyboard reader.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

func initLogging() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	if err := util.InitLogger(logLevel, expandPath(defaultLogFile), debug); err != nil {
		// Run with logging disabled rather than refuse to start.
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
