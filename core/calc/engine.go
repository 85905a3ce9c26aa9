// Package calc implements §4.D: the Calculation Engine that evaluates
// every Resource of a Model against a global Scope and assembles a
// Report.
package calc

import (
	"math"

	"finsim/core/ast"
	"finsim/core/eval"
	"finsim/core/model"
	"finsim/core/random"
	"finsim/core/report"
	"finsim/core/scope"
	ferrors "finsim/internal/errors"
	"finsim/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run evaluates every resource in m against globalScope and assembles a
// Report. period is recorded on the Report for the host's convenience;
// it carries no semantic weight for this single call (the Simulation
// Driver advances it between calls).
func Run(m *model.Model, globalScope *scope.Scope, rnd *random.Source, period int) (*report.Report, error) {
	rep := &report.Report{
		RunID:   uuid.New(),
		Period:  period,
		Globals: globalScope.Globals(),
	}

	for _, cat := range m.CostCategories {
		ct, err := runCategory(cat, globalScope, rnd)
		if err != nil {
			return nil, err
		}
		rep.Costs = append(rep.Costs, ct)
		rep.TotalCost += ct.Total
	}

	for _, cat := range m.IncomeCategories {
		ct, err := runCategory(cat, globalScope, rnd)
		if err != nil {
			return nil, err
		}
		rep.Income = append(rep.Income, ct)
		rep.TotalIncome += ct.Total
	}

	rep.NetResult = rep.TotalIncome - rep.TotalCost

	logging.Debug("period evaluated",
		zap.Int("period", period),
		zap.Float64("total_cost", rep.TotalCost),
		zap.Float64("total_income", rep.TotalIncome),
		zap.Float64("net_result", rep.NetResult),
	)

	return rep, nil
}

func runCategory(cat model.Category, globalScope *scope.Scope, rnd *random.Source) (report.CategoryTotals, error) {
	ct := report.CategoryTotals{Name: cat.Name}
	for _, res := range cat.Resources {
		total, err := runResource(res, globalScope, rnd)
		if err != nil {
			logging.Error("resource evaluation failed", zap.String("resource", res.Path), zap.Error(err))
			return ct, ferrors.ResourcePath(err, res.Path)
		}
		ct.Resources = append(ct.Resources, report.ResourceTotal{Name: res.Name, Total: total})
		ct.Total += total
	}
	return ct, nil
}

// runResource implements §4.D's per-resource procedure.
func runResource(res *model.Resource, globalScope *scope.Scope, rnd *random.Source) (float64, error) {
	local := globalScope.Child()
	fn := res.Function

	for _, pp := range fn.Preprocess {
		v, err := eval.Eval(pp.AST, local, rnd)
		if err != nil {
			return 0, err
		}
		local.Set(pp.Name, v)
	}

	if fn.IsDirect {
		return eval.Eval(fn.DirectAST, local, rnd)
	}

	switch fn.Body {
	case model.BodyDirect:
		return eval.Eval(fn.DirectAST, local, rnd)

	case model.BodyCases:
		for _, c := range fn.Cases {
			cond, err := eval.Eval(c.ConditionAST, local, rnd)
			if err != nil {
				return 0, err
			}
			if cond != 0.0 {
				return eval.Eval(c.ResultAST, local, rnd)
			}
		}
		return 0, ferrors.NoMatchingCase()

	case model.BodyForLoop:
		return runForLoop(fn.ForLoop, local, rnd)

	case model.BodyExec:
		if err := execStatements(fn.ExecAST, local, rnd); err != nil {
			return 0, err
		}
		return local.Get("result")

	default:
		return 0, ferrors.ModelError("resource has no calculation body")
	}
}

// runForLoop implements §4.D's ForLoop dispatch, including the
// degenerate policy for n <= 0.
func runForLoop(fl model.ForLoop, local *scope.Scope, rnd *random.Source) (float64, error) {
	nRaw, err := eval.Eval(fl.IteratorAST, local, rnd)
	if err != nil {
		return 0, err
	}
	n := int(math.Trunc(nRaw))

	if n <= 0 {
		// "for sum/average the result is 0.0; for min/max the result is
		// 0.0 (documented degenerate policy)" (§4.D).
		return 0.0, nil
	}

	var sum, mx, mn float64
	for i := 1; i <= n; i++ {
		iterFrame := local.Child()
		iterFrame.Set("i", float64(i))
		if err := execStatements(fl.ExecAST, iterFrame, rnd); err != nil {
			return 0, err
		}
		v, err := iterFrame.Get("result")
		if err != nil {
			return 0, err
		}
		switch i {
		case 1:
			mx, mn = v, v
		default:
			if v > mx {
				mx = v
			}
			if v < mn {
				mn = v
			}
		}
		sum += v
	}

	switch fl.Aggregation {
	case model.AggSum:
		return sum, nil
	case model.AggAverage:
		return sum / float64(n), nil
	case model.AggMax:
		return mx, nil
	case model.AggMin:
		return mn, nil
	default:
		return 0, ferrors.InvalidAggregation(string(fl.Aggregation))
	}
}

// execStatements runs a statement list against sc in order; bare
// expression statements are evaluated and discarded, assignments store
// into sc's innermost layer (§4.B "Source forms accepted as statements").
func execStatements(stmts []*ast.Node, sc *scope.Scope, rnd *random.Source) error {
	for _, stmt := range stmts {
		if _, err := eval.Eval(stmt, sc, rnd); err != nil {
			return err
		}
	}
	return nil
}
