// Package cmd - simulate command
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finsim/core/simulate"
	"finsim/internal/config"
	"finsim/internal/logging"
)

var (
	simulateFormat         string
	simulatePeriods        int
	simulateSeed           int64
	simulateIncludeInitial bool
)

// simulateCmd represents the simulate command: the Simulation Driver
// (§4.E) run over a fixed number of periods.
var simulateCmd = &cobra.Command{
	Use:   "simulate [path]",
	Short: "Run a model forward over a number of periods",
	Long: `Load a model document and advance its global variables period by
period, evaluating the model at each step.

Examples:
  finsim simulate --periods 24 ./model.hcl
  finsim simulate --format json --periods 12 --seed 7 ./model.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFormat, "format", "f", "table", "output format (table, json)")
	simulateCmd.Flags().IntVarP(&simulatePeriods, "periods", "n", 12, "number of growth periods to simulate")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random Source seed (0 uses the configured default)")
	simulateCmd.Flags().BoolVar(&simulateIncludeInitial, "include-initial", true, "include the t=0 report before any growth step")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path := args[0]
	logging.Info("loading model", zap.String("path", path))

	m, err := loadModel(path)
	if err != nil {
		return err
	}

	if simulatePeriods <= 0 {
		return fmt.Errorf("--periods must be positive")
	}

	cfg := *config.Get()
	if simulateSeed != 0 {
		cfg.Random.Seed = simulateSeed
	}
	cfg.Simulation.IncludeInitial = simulateIncludeInitial

	reports, err := simulate.Run(m, simulatePeriods, &cfg, nil)
	if err != nil {
		return fmt.Errorf("simulating model: %w", err)
	}

	now := time.Now()
	for _, rep := range reports {
		rep.Timestamp = now
	}

	return printReports(reports, simulateFormat)
}
