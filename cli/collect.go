package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JorjanDorjan/ML-for-agile-methodology/collector"
	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Ingest sprint telemetry from MQTT",
	Long: `Collect subscribes to MQTT_TOPIC on MQTT_BROKER and inserts every valid
sprint message into the sprints table.`,
	RunE: runCollect,
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache := openCache(ctx)
	defer cache.Close()

	return collector.New(repository.NewSprintRepository(pool), cache, logger).Run(ctx, cfg.MQTT)
}
