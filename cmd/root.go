package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetops/rotaplan/config"
	"github.com/fleetops/rotaplan/core/planner"
)

var (
	cfgPath        string
	plannerCfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "rotaplan",
	Short: "Weekly engine rotation planner",
	Long: "rotaplan computes a minimum-cost weekly schedule rotating aircraft engines\n" +
		"through installation, maintenance, leasing and purchase over a fixed horizon.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&plannerCfgPath, "planner-config", "",
		"standalone planner parameters file overriding the planner section")
}

// applyPlannerOverride replaces the planner section with a standalone
// parameters file when one is given on the command line.
func applyPlannerOverride(cfg *config.Config) error {
	if plannerCfgPath == "" {
		return nil
	}
	pc, err := planner.LoadConfig(plannerCfgPath)
	if err != nil {
		return fmt.Errorf("load planner config: %w", err)
	}
	pc.SetDefaults()
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("planner config %s: %w", plannerCfgPath, err)
	}
	cfg.Planner = pc
	return nil
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
