package commands

import (
	"github.com/spf13/cobra"

	"github.com/sanderkohnstamm/mavshark/internal/app"
	"github.com/sanderkohnstamm/mavshark/internal/util"
)

var replayCmd = &cobra.Command{
	Use:   "replay <path>",
	Short: "Play back a recorded journal",
	Long: `Loads a journal written with --record and replays it into the same
dashboard with the recorded timing. Playback starts paused; press
Space to play, +/- to change speed, and c for cursor stepping.

Examples:
  mavshark replay flight.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	initLogging()
	defer util.CloseLogger()

	config := &app.Config{
		ReplayPath:  args[0],
		RefreshRate: refreshRate,
	}

	orchestrator, err := app.NewReplay(config)
	if err != nil {
		return err
	}

	return orchestrator.Run(signalContext())
}
