package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE:  runMigrate,
}

var seedMigrate bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo sprint history when the sprints table is empty",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", true, "run migrations before seeding")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := repository.OpenGorm(cfg.Database.GetDSN())
	if err != nil {
		return err
	}
	if err := repository.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := repository.OpenGorm(cfg.Database.GetDSN())
	if err != nil {
		return err
	}
	if seedMigrate {
		if err := repository.Migrate(cmd.Context(), db); err != nil {
			return err
		}
	}
	n, err := repository.SeedDemo(cmd.Context(), db)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "sprints table already populated, nothing seeded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d demo sprints inserted\n", n)
	return nil
}
