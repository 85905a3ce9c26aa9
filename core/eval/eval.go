// Package eval implements §4.C: a pure function of (AST, Scope, Random
// Source state) producing a Value or an error.
package eval

import (
	"math"

	"finsim/core/ast"
	"finsim/core/random"
	"finsim/core/scope"
	ferrors "finsim/internal/errors"
)

// zeroThreshold is the magnitude below which a divisor is treated as zero
// (§4.C "Division by a value whose absolute magnitude is below 1e-300").
const zeroThreshold = 1e-300

// Eval evaluates node against sc, calling rnd whenever the expression
// invokes $random. rnd may be nil if the expression is known not to use
// $random; a Call node reached with a nil rnd is reported as a
// TypeError rather than panicking.
func Eval(node *ast.Node, sc *scope.Scope, rnd *random.Source) (float64, error) {
	switch node.Kind {
	case ast.NumberLit:
		return node.Number, nil

	case ast.Name:
		return sc.Get(node.Ident)

	case ast.QualifiedName:
		name, ok := stripGlobalQualifier(node.Ident)
		if !ok {
			return 0, ferrors.UndefinedName(node.Ident)
		}
		return sc.GetGlobal(name)

	case ast.Unary:
		v, err := Eval(node.X, sc, rnd)
		if err != nil {
			return 0, err
		}
		if node.Negative {
			return -v, nil
		}
		return v, nil

	case ast.NotOp:
		v, err := Eval(node.X, sc, rnd)
		if err != nil {
			return 0, err
		}
		return boolVal(v == 0.0), nil

	case ast.Binary:
		return evalBinary(node, sc, rnd)

	case ast.Call:
		return evalCall(node, sc, rnd)

	case ast.Assign:
		v, err := Eval(node.X, sc, rnd)
		if err != nil {
			return 0, err
		}
		sc.Set(node.Target, v)
		return v, nil

	default:
		return 0, ferrors.New(ferrors.TypeTypeError, "unknown AST node kind")
	}
}

func stripGlobalQualifier(ident string) (string, bool) {
	const prefix = "global."
	if len(ident) <= len(prefix) || ident[:len(prefix)] != prefix {
		return "", false
	}
	return ident[len(prefix):], true
}

func boolVal(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func isTruthy(v float64) bool { return v != 0.0 }

func evalBinary(node *ast.Node, sc *scope.Scope, rnd *random.Source) (float64, error) {
	// Logical operators short-circuit (§4.C).
	switch node.Op {
	case ast.LogAnd:
		left, err := Eval(node.X, sc, rnd)
		if err != nil {
			return 0, err
		}
		if !isTruthy(left) {
			return 0.0, nil
		}
		right, err := Eval(node.Y, sc, rnd)
		if err != nil {
			return 0, err
		}
		return boolVal(isTruthy(right)), nil

	case ast.LogOr:
		left, err := Eval(node.X, sc, rnd)
		if err != nil {
			return 0, err
		}
		if isTruthy(left) {
			return 1.0, nil
		}
		right, err := Eval(node.Y, sc, rnd)
		if err != nil {
			return 0, err
		}
		return boolVal(isTruthy(right)), nil
	}

	left, err := Eval(node.X, sc, rnd)
	if err != nil {
		return 0, err
	}
	right, err := Eval(node.Y, sc, rnd)
	if err != nil {
		return 0, err
	}

	switch node.Op {
	case ast.Add:
		return checkOverflow(left+right, "+")
	case ast.Sub:
		return checkOverflow(left-right, "-")
	case ast.Mul:
		return checkOverflow(left*right, "*")
	case ast.Div:
		if math.Abs(right) < zeroThreshold {
			return 0, ferrors.DivisionByZero()
		}
		return checkOverflow(left/right, "/")
	case ast.PowOp:
		if left < 0 && !isWholeNumber(right) {
			return 0, ferrors.DomainError("negative base with non-integer exponent")
		}
		return checkOverflow(math.Pow(left, right), "**")
	case ast.CmpEq:
		return boolVal(left == right), nil
	case ast.CmpNeq:
		return boolVal(left != right), nil
	case ast.CmpLt:
		return boolVal(left < right), nil
	case ast.CmpLte:
		return boolVal(left <= right), nil
	case ast.CmpGt:
		return boolVal(left > right), nil
	case ast.CmpGte:
		return boolVal(left >= right), nil
	default:
		return 0, ferrors.New(ferrors.TypeTypeError, "unknown binary operator")
	}
}

func isWholeNumber(v float64) bool {
	return v == math.Trunc(v)
}

// checkOverflow enforces §4.C: "Results that are NaN or ±Inf fail with
// NumericOverflow so callers cannot silently propagate poisoned values."
func checkOverflow(v float64, op string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ferrors.NumericOverflow(op)
	}
	return v, nil
}

func evalCall(node *ast.Node, sc *scope.Scope, rnd *random.Source) (float64, error) {
	if node.Callee != "random" {
		return 0, ferrors.New(ferrors.TypeTypeError, "unknown function: $"+node.Callee)
	}
	if len(node.Args) != 3 {
		return 0, ferrors.RandomArgumentError("$random requires exactly 3 arguments (min, max, mean)")
	}
	if rnd == nil {
		return 0, ferrors.New(ferrors.TypeTypeError, "$random used without a Random Source")
	}

	args := make([]float64, 3)
	for i, a := range node.Args {
		v, err := Eval(a, sc, rnd)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	return rnd.Skewed(args[0], args[1], args[2])
}
