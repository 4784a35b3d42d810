package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-docent/internal/config"
	"github.com/teslashibe/go-docent/pkg/docent"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/speech"
)

var (
	tourScript    string
	tourTransport string
	tourTextOnly  bool
	tourWeb       bool
	tourPort      int
	tourSize      int
)

var tourCmd = &cobra.Command{
	Use:   "tour",
	Short: "Run one guided tour",
	Long: `Run one guided tour with a visitor.

The visitor types at the "You:" prompt (or a script supplies the lines). The
guide picks exhibits, sends the robot to each one, answers questions and asks
whether to continue. When the tour ends the robot is sent home and the session
record is saved.

Examples:
  # Talk to the guide in the terminal, no audio
  docent tour --text-only

  # Replay a scripted visitor against a Redis-connected robot
  docent tour --script visitor.txt --transport redis

  # Watch the dialogue live at http://localhost:8181
  docent tour --web`,
	Args: cobra.NoArgs,
	RunE: runTour,
}

func init() {
	tourCmd.Flags().StringVar(&tourScript, "script", "", "Read visitor lines from a file instead of the terminal")
	tourCmd.Flags().StringVar(&tourTransport, "transport", "", "Movement transport: memory, redis, nats")
	tourCmd.Flags().BoolVar(&tourTextOnly, "text-only", false, "Print replies without speaking them")
	tourCmd.Flags().BoolVar(&tourWeb, "web", false, "Serve the live dashboard")
	tourCmd.Flags().IntVar(&tourPort, "port", 0, "Dashboard port (with --web)")
	tourCmd.Flags().IntVar(&tourSize, "size", 0, "Exhibits selected per fill")
	rootCmd.AddCommand(tourCmd)
}

func runTour(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyTourFlags(&cfg)

	opts := docent.Options{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
	}
	if tourScript != "" {
		data, err := os.ReadFile(tourScript)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		opts.Listener = speech.NewScriptListener(speech.ParseScript(string(data))...)
	}

	app, err := docent.New(cfg, opts)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx := cmd.Context()
	if err := app.Init(ctx); err != nil {
		return err
	}
	if w := app.Web(); w != nil {
		printInfo(cmd.ErrOrStderr(), "Dashboard: http://localhost:%d", cfg.Web.Port)
	}

	rec, err := app.RunTour(ctx)
	if rec != nil {
		printSummary(cmd.OutOrStdout(), rec, cfg)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if app.Web() != nil && ctx.Err() == nil {
		printInfo(cmd.ErrOrStderr(), "Tour finished. Dashboard stays up; press Ctrl+C to exit.")
		<-ctx.Done()
	}
	return nil
}

func applyTourFlags(cfg *config.Config) {
	if tourTransport != "" {
		cfg.Transport.Kind = tourTransport
	}
	if tourTextOnly {
		cfg.TTS.Enabled = false
	}
	if tourWeb {
		cfg.Web.Enabled = true
	}
	if tourPort > 0 {
		cfg.Web.Port = tourPort
	}
	if tourSize > 0 {
		cfg.Tour.Size = tourSize
	}
}

func printSummary(w io.Writer, rec *record.Record, cfg config.Config) {
	fmt.Fprintln(w)
	printSuccess(w, "Tour %s ended (%s)", shortID(rec.SessionID), rec.Reason)
	fmt.Fprintf(w, "  Visited:  %s\n", joinOrNone(rec.Visited))
	if len(rec.Upcoming) > 0 {
		fmt.Fprintf(w, "  Skipped:  %s\n", strings.Join(rec.Upcoming, ", "))
	}
	switch cfg.Record.Kind {
	case "file":
		dimColor.Fprintf(w, "  Record:   %s/%s.json\n", cfg.Record.Dir, rec.SessionID)
	case "redis":
		dimColor.Fprintf(w, "  Record:   %s:%s\n", record.DefaultRedisPrefix, rec.SessionID)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
