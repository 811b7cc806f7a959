// Package cli provides the agilerisk command-line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
)

var (
	verbose bool
	logger  *slog.Logger
	cfg     *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "agilerisk",
	Short: "Sprint delay-risk prediction service",
	Long: `Agilerisk ingests per-sprint telemetry, trains a delay-risk classifier
and serves delay probabilities with a recommendation for in-progress sprints.

Configuration is read from the environment (DB_*, REDIS_*, JWT_*, MODEL_*,
MQTT_*, SERVER_*, CORS_*).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))

		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(tokenCmd)
}
