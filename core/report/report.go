// Package report defines the Report structure of §6.3.
package report

import (
	"time"

	"github.com/google/uuid"
)

// CategoryTotals holds the per-resource totals for one category,
// preserving declared order (§4.D "Report assembly").
type CategoryTotals struct {
	Name      string          `json:"name"`
	Resources []ResourceTotal `json:"resources"`
	Total     float64         `json:"total"`
}

// ResourceTotal is one resource's computed contribution.
type ResourceTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Report is the structured result of one calculation-engine run (§6.3).
// The timestamp and RunID are host/boundary metadata: the core sets
// RunID (so a host can correlate every Report emitted by one
// simulate() call) but leaves Timestamp for the host to stamp, per §6.3
// "a timestamp set by the host".
type Report struct {
	RunID     uuid.UUID `json:"run_id"`
	Period    int       `json:"period"`
	Timestamp time.Time `json:"timestamp"`

	Globals map[string]float64 `json:"globals"`

	Costs  []CategoryTotals `json:"costs"`
	Income []CategoryTotals `json:"income"`

	TotalCost   float64 `json:"total_cost"`
	TotalIncome float64 `json:"total_income"`
	NetResult   float64 `json:"net_result"`
}
