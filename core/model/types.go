// Package model defines the immutable Model (§3) and builds one from a
// parsed configuration document (§6.1).
package model

import (
	"finsim/core/ast"
	"finsim/core/growth"
)

// Globals is the (const, variable) pair of §3.
type Globals struct {
	Const     map[string]float64
	Variables []Variable // ordered, per the ordered-mapping requirement
}

// Variable is one entry of an ordered global.variable mapping.
type Variable struct {
	Name   string
	Spec   VariableSpec
}

// VariableSpec mirrors §3's VariableSpec.
type VariableSpec struct {
	Start  float64
	Max    *float64
	Min    *float64
	Period int // default 1
	Growth growth.Spec
}

// Category is an ordered sequence of Resources under a description (§3).
type Category struct {
	Name        string
	Description string
	Resources   []*Resource
}

// BodyKind identifies a structured CalcFn's Body variant.
type BodyKind int

const (
	BodyDirect BodyKind = iota
	BodyCases
	BodyForLoop
	BodyExec
)

// Case is one (condition, result) pair of a Cases body.
type Case struct {
	ConditionExpr string
	ConditionAST  *ast.Node
	ResultExpr    string
	ResultAST     *ast.Node
}

// Aggregation identifies a for-loop's reduction.
type Aggregation string

const (
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
	AggMax     Aggregation = "max"
	AggMin     Aggregation = "min"
)

// ForLoop is a ForLoop CalcFn body (§3).
type ForLoop struct {
	IteratorExpr string
	IteratorAST  *ast.Node
	Aggregation  Aggregation
	ExecStmts    []string
	ExecAST      []*ast.Node
}

// Preprocess is one ordered name->expr entry evaluated before a
// resource's body (§3, §4.D step 2).
type Preprocess struct {
	Name string
	Expr string
	AST  *ast.Node
}

// CalcFn is the tagged variant of §3: Direct | Structured(preprocess +
// Body in {Cases, ForLoop, Exec, Direct-result}).
type CalcFn struct {
	// IsDirect is true for the bare "top-level string" form: only
	// DirectExpr/DirectAST are populated, no preprocess, no Body.
	IsDirect  bool
	DirectExpr string
	DirectAST  *ast.Node

	Preprocess []Preprocess

	Body     BodyKind
	Cases    []Case
	ForLoop  ForLoop
	ExecStmts []string
	ExecAST   []*ast.Node
}

// Resource is a leaf of the cost/income tree (§3).
type Resource struct {
	Name              string
	UseCase           string
	CalculationMethod string
	BillingMethod     string
	Unit              string
	Function          CalcFn
	// Path is "branch.category.resource" (e.g. "cost.hosting.server"),
	// recorded on evaluation errors (§7).
	Path string
}

// Model is the parsed, immutable representation of a configuration
// document (§3 Lifecycle: "Model is built once, immutable thereafter").
type Model struct {
	Globals Globals

	// CostCategories and IncomeCategories preserve declared order.
	CostCategories   []Category
	IncomeCategories []Category
}
