package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-docent/internal/config"
	"github.com/teslashibe/go-docent/internal/log"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Docent - voice-driven museum tour guide",
	Long: `Docent talks with a museum visitor, picks exhibits that match their
interests, sends the robot to each one and answers questions along the way.

Configuration comes from docent.yaml, a .env file and the environment
(OPENAI_API_KEY, DOCENT_TRANSPORT, REDIS_ADDR, NATS_URL, LOG_LEVEL).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx available to subcommands.
// Errors are printed once here, in color.
func ExecuteContext(ctx context.Context) error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
}

// loadConfig reads the config file and environment, applies the global
// flags and sets up logging. Logs go to stderr so they do not interleave
// with the dialogue on stdout.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log.InitWithOptions(log.Options{Level: cfg.Log.Level, File: cfg.Log.File, Output: os.Stderr})
	return cfg, nil
}
