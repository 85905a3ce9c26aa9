package model

import (
	"fmt"

	"finsim/core/ast"
	"finsim/core/growth"
	"finsim/core/parser"
	"finsim/core/scope"
	"finsim/internal/document"
	ferrors "finsim/internal/errors"
)

// Build constructs an immutable Model from a parsed configuration
// document, validating §3's invariants and parsing every expression
// string into an AST exactly once (§9 "Cached parsing") so resources
// never re-parse their source on every evaluation.
func Build(doc *document.Document) (*Model, error) {
	m := &Model{}

	globals, err := buildGlobals(doc.Global)
	if err != nil {
		return nil, err
	}
	m.Globals = globals

	for _, c := range doc.CostCategories {
		cat, err := buildCategory(c, "cost")
		if err != nil {
			return nil, err
		}
		m.CostCategories = append(m.CostCategories, cat)
	}
	for _, c := range doc.IncomeCategories {
		cat, err := buildCategory(c, "income")
		if err != nil {
			return nil, err
		}
		m.IncomeCategories = append(m.IncomeCategories, cat)
	}

	return m, nil
}

func buildGlobals(g document.Global) (Globals, error) {
	out := Globals{Const: map[string]float64{}}

	names := map[string]bool{}
	for _, c := range g.Const {
		if scope.Reserved[c.Name] {
			return out, ferrors.ModelErrorf("global.const.%s: %s", c.Name, ferrors.ReservedName(c.Name).Message)
		}
		if names[c.Name] {
			return out, ferrors.ModelErrorf("global name collision: %s declared more than once", c.Name)
		}
		names[c.Name] = true
		out.Const[c.Name] = c.Value
	}

	for _, v := range g.Variables {
		if scope.Reserved[v.Name] {
			return out, ferrors.ModelErrorf("global.variable.%s: %s", v.Name, ferrors.ReservedName(v.Name).Message)
		}
		if names[v.Name] {
			return out, ferrors.ModelErrorf("global name collision: %s declared more than once", v.Name)
		}
		names[v.Name] = true

		spec, err := buildVariableSpec(v)
		if err != nil {
			return out, err
		}
		out.Variables = append(out.Variables, Variable{Name: v.Name, Spec: spec})
	}

	return out, nil
}

func buildVariableSpec(v document.VariableDoc) (VariableSpec, error) {
	spec := VariableSpec{Start: v.Start, Period: 1}
	if v.Period != nil {
		if *v.Period <= 0 {
			return spec, ferrors.ModelErrorf("global.variable.%s.period must be positive", v.Name)
		}
		spec.Period = *v.Period
	}
	spec.Max = v.Max
	spec.Min = v.Min

	switch {
	case v.GrowthRate != nil:
		g, err := buildGrowthSpec(v.Name, *v.GrowthRate)
		if err != nil {
			return spec, err
		}
		spec.Growth = g
	case v.Increment != nil:
		// "A VariableSpec with only increment (no growth_rate) uses this
		// form" (§3 GrowthSpec Increment).
		spec.Growth = growth.Spec{Kind: growth.Increment, Step: *v.Increment}
	default:
		return spec, ferrors.ModelErrorf("global.variable.%s must declare growth_rate or increment", v.Name)
	}

	return spec, nil
}

func buildGrowthSpec(varName string, g document.GrowthRateDoc) (growth.Spec, error) {
	switch g.Type {
	case "linear":
		return growth.Spec{Kind: growth.Linear, Rate: g.Rate}, nil
	case "polynomial":
		if len(g.Coefficients) == 0 {
			return growth.Spec{}, ferrors.ModelErrorf("global.variable.%s.growth_rate.polynomial requires coefficients", varName)
		}
		return growth.Spec{Kind: growth.Polynomial, Coefficients: g.Coefficients}, nil
	case "logistic":
		if g.K <= 0 {
			return growth.Spec{}, ferrors.ModelErrorf("global.variable.%s.growth_rate.logistic requires k > 0", varName)
		}
		return growth.Spec{Kind: growth.Logistic, K: g.K, R: g.R}, nil
	default:
		return growth.Spec{}, ferrors.ModelErrorf("global.variable.%s.growth_rate has unsupported type: %s", varName, g.Type)
	}
}

func buildCategory(c document.CategoryDoc, branch string) (Category, error) {
	cat := Category{Name: c.Name, Description: c.Description}
	for _, r := range c.Resources {
		path := fmt.Sprintf("%s.%s.%s", branch, c.Name, r.Name)
		res, err := buildResource(r, path)
		if err != nil {
			return cat, err
		}
		cat.Resources = append(cat.Resources, res)
	}
	return cat, nil
}

func buildResource(r document.ResourceDoc, path string) (*Resource, error) {
	fn, err := buildCalcFn(r, path)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:              r.Name,
		UseCase:           r.UseCase,
		CalculationMethod: r.CalculationMethod,
		BillingMethod:     r.BillingMethod,
		Unit:              r.Unit,
		Function:          fn,
		Path:              path,
	}, nil
}

func buildCalcFn(r document.ResourceDoc, path string) (CalcFn, error) {
	var fn CalcFn

	if r.Direct != nil {
		node, err := parseExpr(*r.Direct, path+".direct")
		if err != nil {
			return fn, err
		}
		fn.IsDirect = true
		fn.DirectExpr = *r.Direct
		fn.DirectAST = node
		return fn, nil
	}

	present := 0
	if r.Result != nil {
		present++
	}
	if len(r.Cases) > 0 {
		present++
	}
	if r.For != nil {
		present++
	}
	if r.Exec != nil {
		present++
	}
	if present != 1 {
		return fn, ferrors.ModelErrorf("%s: exactly one of result|cases|for|exec must be present", path)
	}

	for _, pp := range r.Preprocess {
		if scope.Reserved[pp.Name] {
			return fn, ferrors.ModelErrorf("%s.preprocess.%s: %s", path, pp.Name, ferrors.ReservedName(pp.Name).Message)
		}
		node, err := parseExpr(pp.Expr, path+".preprocess."+pp.Name)
		if err != nil {
			return fn, err
		}
		fn.Preprocess = append(fn.Preprocess, Preprocess{Name: pp.Name, Expr: pp.Expr, AST: node})
	}

	switch {
	case r.Result != nil:
		node, err := parseExpr(*r.Result, path+".result")
		if err != nil {
			return fn, err
		}
		fn.Body = BodyDirect
		fn.DirectExpr = *r.Result
		fn.DirectAST = node

	case len(r.Cases) > 0:
		fn.Body = BodyCases
		for i, c := range r.Cases {
			condNode, err := parseExpr(c.Case, fmt.Sprintf("%s.case[%d].condition", path, i))
			if err != nil {
				return fn, err
			}
			resNode, err := parseExpr(c.Result, fmt.Sprintf("%s.case[%d].result", path, i))
			if err != nil {
				return fn, err
			}
			fn.Cases = append(fn.Cases, Case{
				ConditionExpr: c.Case, ConditionAST: condNode,
				ResultExpr: c.Result, ResultAST: resNode,
			})
		}

	case r.For != nil:
		fn.Body = BodyForLoop
		agg := Aggregation(r.For.Aggregation)
		switch agg {
		case AggSum, AggAverage, AggMax, AggMin:
		default:
			return fn, ferrors.InvalidAggregation(r.For.Aggregation)
		}
		iterNode, err := parseExpr(r.For.Iterator, path+".for.iterator")
		if err != nil {
			return fn, err
		}
		fl := ForLoop{IteratorExpr: r.For.Iterator, IteratorAST: iterNode, Aggregation: agg, ExecStmts: r.For.Exec}
		for i, stmt := range r.For.Exec {
			node, err := parseStmt(stmt, fmt.Sprintf("%s.for.exec[%d]", path, i))
			if err != nil {
				return fn, err
			}
			fl.ExecAST = append(fl.ExecAST, node)
		}
		if err := requireResultAssignment(fl.ExecAST); err != nil {
			return fn, ferrors.ModelErrorf("%s.for: %v", path, err)
		}
		fn.ForLoop = fl

	case r.Exec != nil:
		fn.Body = BodyExec
		fn.ExecStmts = r.Exec
		for i, stmt := range r.Exec {
			node, err := parseStmt(stmt, fmt.Sprintf("%s.exec[%d]", path, i))
			if err != nil {
				return fn, err
			}
			fn.ExecAST = append(fn.ExecAST, node)
		}
		if err := requireResultAssignment(fn.ExecAST); err != nil {
			return fn, ferrors.ModelErrorf("%s: %v", path, err)
		}
	}

	return fn, nil
}

// requireResultAssignment enforces §3 invariant 4: "A for body's last
// executed statement must assign to result". The same rule is applied
// to a plain exec body, whose final value of result is its total (§4.D).
func requireResultAssignment(stmts []*ast.Node) error {
	if len(stmts) == 0 {
		return fmt.Errorf("body must contain at least one statement assigning to result")
	}
	last := stmts[len(stmts)-1]
	if last.Kind != ast.Assign || last.Target != "result" {
		return fmt.Errorf("last statement must assign to result")
	}
	return nil
}

func parseExpr(src, where string) (*ast.Node, error) {
	node, err := parser.ParseExpression(src)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.TypeParseError, "parsing "+where, err)
	}
	return node, nil
}

func parseStmt(src, where string) (*ast.Node, error) {
	stmts, err := parser.ParseStatements(src)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.TypeParseError, "parsing "+where, err)
	}
	if len(stmts) != 1 {
		return nil, ferrors.ModelErrorf("%s: expected exactly one statement", where)
	}
	return stmts[0], nil
}
