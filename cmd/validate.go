package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetops/rotaplan/config"
	"github.com/fleetops/rotaplan/infra/ingest"
	"github.com/fleetops/rotaplan/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ingest and validate the data tables without solving",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyPlannerOverride(cfg); err != nil {
		return err
	}
	cfg.Logging.Apply()
	logg := logger.New("validate")

	params, err := ingest.Load(cfg.DataDir, cfg.Planner)
	if err != nil {
		return err
	}
	logg.Infof("parameter set valid: %d aircraft, %d engines (%d spare), horizon %d weeks",
		params.NumAircraft(), len(params.Engines), len(params.ExtraIDs()), params.Horizon)
	return nil
}
