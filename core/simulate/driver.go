// Package simulate implements §4.E: the Simulation Driver that advances
// a Model's global variables period by period and invokes the
// Calculation Engine at each step.
package simulate

import (
	"finsim/core/calc"
	"finsim/core/growth"
	"finsim/core/model"
	"finsim/core/random"
	"finsim/core/report"
	"finsim/core/scope"
	"finsim/internal/config"
	"finsim/internal/logging"

	"go.uber.org/zap"
)

// Run executes periods steps of m under cfg, returning one Report per
// step, or periods+1 when cfg.Simulation.IncludeInitial is set (the
// extra Report reflecting t=0 before any growth step is applied). When
// IncludeInitial is false the first of the periods Reports still
// reflects t=0 (§4.E Termination, "N reports where the first uses
// t=0") and growth steps run for t=1..periods-1.
//
// overrides replaces entries of the initial global scope before period
// 0 is evaluated; it has no effect on later periods, which are always
// derived from the Model's own GrowthSpecs (§4.E "Host overrides apply
// only to the initial global scope").
func Run(m *model.Model, periods int, cfg *config.Config, overrides map[string]float64) ([]*report.Report, error) {
	rnd := random.New(cfg.Seed())

	initial := InitialGlobals(m, overrides)
	globalScope := scope.NewGlobal(initial)

	var reports []*report.Report

	if cfg.Simulation.IncludeInitial {
		rep, err := calc.Run(m, globalScope, rnd, 0)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)

		for t := 1; t <= periods; t++ {
			globalScope = advance(m, globalScope, t)
			rep, err := calc.Run(m, globalScope, rnd, t)
			if err != nil {
				return nil, err
			}
			reports = append(reports, rep)
		}
	} else {
		rep, err := calc.Run(m, globalScope, rnd, 0)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)

		for t := 1; t < periods; t++ {
			globalScope = advance(m, globalScope, t)
			rep, err := calc.Run(m, globalScope, rnd, t)
			if err != nil {
				return nil, err
			}
			reports = append(reports, rep)
		}
	}

	// Every Report of one run shares the first Report's RunID.
	for _, rep := range reports[1:] {
		rep.RunID = reports[0].RunID
	}

	logging.Info("simulation complete", zap.Int("periods", periods), zap.Int("reports", len(reports)))
	return reports, nil
}

// InitialGlobals builds the t=0 global map: const values verbatim, each
// variable's GrowthSpec evaluated at t=0 (its declared start for Linear
// and Increment, the first coefficient for Polynomial, and N0 for
// Logistic, i.e. K*0.001 when start is zero; see growth.Apply), clamped, then
// overridden by any host-supplied values. Exported so a single-report
// host operation can build the same t=0 scope Run uses internally.
func InitialGlobals(m *model.Model, overrides map[string]float64) map[string]float64 {
	g := make(map[string]float64, len(m.Globals.Const)+len(m.Globals.Variables))
	for name, v := range m.Globals.Const {
		g[name] = v
	}
	for _, v := range m.Globals.Variables {
		val := growth.Apply(v.Spec.Growth, v.Spec.Start, 0)
		g[v.Name] = clampVariable(v.Spec, val)
	}
	for name, v := range overrides {
		g[name] = v
	}
	return g
}

// advance derives the period-t global scope from prev: const values and
// any host override baked into the initial scope carry forward
// unchanged, while each variable is recomputed from its own GrowthSpec
// and start value — the Model, not the previous period's scope, is the
// source of truth for growth (§4.E step 1, "growth laws are closed-form
// in t, not recurrences over the previous value").
func advance(m *model.Model, prev *scope.Scope, t int) *scope.Scope {
	next := prev.Globals()
	for _, v := range m.Globals.Variables {
		if t%v.Spec.Period != 0 {
			continue
		}
		val := growth.Apply(v.Spec.Growth, v.Spec.Start, t)
		next[v.Name] = clampVariable(v.Spec, val)
	}
	return scope.NewGlobal(next)
}

func clampVariable(spec model.VariableSpec, v float64) float64 {
	return growth.Clamp(v, spec.Min != nil, derefOr(spec.Min, 0), spec.Max != nil, derefOr(spec.Max, 0))
}

func derefOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
