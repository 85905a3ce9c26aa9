// Package cmd - report command
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finsim/core/calc"
	"finsim/core/model"
	"finsim/core/random"
	"finsim/core/report"
	"finsim/core/scope"
	"finsim/core/simulate"
	"finsim/internal/config"
	"finsim/internal/document"
	"finsim/internal/logging"
)

var reportFormat string

// reportCmd represents the report command: a single-period evaluation
// of a model, with no growth applied (§4.D "single_report").
var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Evaluate a model for a single period",
	Long: `Load a model document and evaluate it once, at period 0, with no
growth applied to any global variable.

Examples:
  finsim report ./model.hcl
  finsim report --format json ./model.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "output format (table, json)")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := args[0]
	logging.Info("loading model", zap.String("path", path))

	m, err := loadModel(path)
	if err != nil {
		return err
	}

	cfg := config.Get()
	globalScope := scope.NewGlobal(simulate.InitialGlobals(m, nil))
	rnd := random.New(cfg.Seed())

	rep, err := calc.Run(m, globalScope, rnd, 0)
	if err != nil {
		return fmt.Errorf("evaluating model: %w", err)
	}
	rep.Timestamp = time.Now()

	return printReports([]*report.Report{rep}, reportFormat)
}

func loadModel(path string) (*model.Model, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	m, err := model.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	return m, nil
}

func printReports(reports []*report.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "table", "":
		for _, rep := range reports {
			printReportTable(rep)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func printReportTable(rep *report.Report) {
	fmt.Printf("┌─────────────────────────────────────────────────────────────────────────┐\n")
	fmt.Printf("│ PERIOD %-66d │\n", rep.Period)
	fmt.Printf("├─────────────────────────────────────────────────────────────────────────┤\n")

	printCategories("COST", rep.Costs)
	printCategories("INCOME", rep.Income)

	fmt.Printf("├─────────────────────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ %-50s %20s │\n", "TOTAL COST", money(rep.TotalCost))
	fmt.Printf("│ %-50s %20s │\n", "TOTAL INCOME", money(rep.TotalIncome))
	fmt.Printf("│ %-50s %20s │\n", "NET RESULT", money(rep.NetResult))
	fmt.Printf("└─────────────────────────────────────────────────────────────────────────┘\n")
}

func printCategories(label string, cats []report.CategoryTotals) {
	for _, cat := range cats {
		fmt.Printf("│ [%s] %-43s %20s │\n", label, truncate(cat.Name, 43), money(cat.Total))
		for _, res := range cat.Resources {
			fmt.Printf("│   └─ %-46s %20s │\n", truncate(res.Name, 46), money(res.Total))
		}
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
