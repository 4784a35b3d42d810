package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-docent/internal/log"
	"github.com/teslashibe/go-docent/pkg/docent"
	"github.com/teslashibe/go-docent/pkg/movement"
)

var (
	simTransport string
	simDelay     time.Duration
)

var robotSimCmd = &cobra.Command{
	Use:   "robot-sim",
	Short: "Run a simulated robot on the movement transport",
	Long: `Run a simulated robot that listens for movement commands, prints each
destination, waits the travel delay and announces arrival.

Use it with a shared broker so a tour in another terminal has a robot to
drive.

Examples:
  docent robot-sim --transport redis
  docent robot-sim --transport nats --delay 500ms`,
	Args: cobra.NoArgs,
	RunE: runRobotSim,
}

func init() {
	robotSimCmd.Flags().StringVar(&simTransport, "transport", "", "Movement transport: redis, nats (memory only works in-process)")
	robotSimCmd.Flags().DurationVar(&simDelay, "delay", -1, "Travel delay before announcing arrival (default from config)")
	rootCmd.AddCommand(robotSimCmd)
}

func runRobotSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simTransport != "" {
		cfg.Transport.Kind = simTransport
	}
	if simDelay >= 0 {
		cfg.Transport.TravelDelay = simDelay
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	bus, err := docent.DialBus(ctx, cfg.Transport, log.L())
	if err != nil {
		return err
	}
	defer bus.Close()

	topics := docent.Topics(cfg.Transport)
	sim := movement.NewSimulator(bus, topics, cfg.Transport.TravelDelay, log.L())
	out := cmd.OutOrStdout()
	sim.OnCommand = func(dest string) {
		fmt.Fprint(out, "Received on ")
		infoColor.Fprint(out, topics.Movement)
		fmt.Fprintf(out, ": %s\n", dest)
	}

	printInfo(cmd.ErrOrStderr(), "Robot simulator on %s (%s -> %s). Press Ctrl+C to stop.",
		cfg.Transport.Kind, topics.Movement, topics.Arrived)
	return sim.Run(ctx)
}
