// Command docent runs a voice-driven museum tour guide.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-docent/cmd/docent/commands"
)

// Version information, set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := commands.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
