package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the delay-risk model",
	Long: `Train fits a new model on every labelled sprint and replaces the stored
artifact. The previous artifact is kept when training fails.

Examples:
  agilerisk train
  MODEL_BACKEND=sqlite MODEL_PATH=data/model.db agilerisk train`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache := openCache(ctx)
	defer cache.Close()

	store, closeStore, err := openArtifactStore()
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewTrainingService(repository.NewSprintRepository(pool), store, trainerConfig(cfg.Model), cache, logger)
	a, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "model %s trained on %d sprints (%d held out), accuracy %.2f\n",
		a.ID, a.TrainRows+a.HeldOutRows, a.HeldOutRows, a.Accuracy)
	return nil
}
