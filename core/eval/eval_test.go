package eval

import (
	"testing"

	"finsim/core/parser"
	"finsim/core/random"
	"finsim/core/scope"
	ferrors "finsim/internal/errors"
)

func evalSrc(t *testing.T, src string, sc *scope.Scope, rnd *random.Source) (float64, error) {
	t.Helper()
	node, err := parser.ParseExpression(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Eval(node, sc, rnd)
}

func TestArithmeticPrecedence(t *testing.T) {
	sc := scope.NewGlobal(nil)
	v, err := evalSrc(t, "2 + 3 * 4", sc, nil)
	if err != nil || v != 14 {
		t.Fatalf("expected 14, got %v err=%v", v, err)
	}
}

func TestComparisonsAreBitExact(t *testing.T) {
	sc := scope.NewGlobal(nil)
	v, err := evalSrc(t, "0.1 + 0.2 == 0.3", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0.0 {
		t.Fatalf("0.1+0.2 must not bit-exactly equal 0.3 under float64, got %v", v)
	}
}

func TestShortCircuitAndSkipsRightSideError(t *testing.T) {
	sc := scope.NewGlobal(nil)
	// The right side references an undefined name; short-circuit must
	// prevent it from ever being evaluated when the left side is falsy.
	v, err := evalSrc(t, "0 and undefined_name", sc, nil)
	if err != nil {
		t.Fatalf("expected short-circuit to suppress the error, got %v", err)
	}
	if v != 0.0 {
		t.Fatalf("expected 0.0, got %v", v)
	}
}

func TestShortCircuitOrSkipsRightSideError(t *testing.T) {
	sc := scope.NewGlobal(nil)
	v, err := evalSrc(t, "1 or undefined_name", sc, nil)
	if err != nil {
		t.Fatalf("expected short-circuit to suppress the error, got %v", err)
	}
	if v != 1.0 {
		t.Fatalf("expected 1.0, got %v", v)
	}
}

func TestDivisionByZero(t *testing.T) {
	sc := scope.NewGlobal(nil)
	_, err := evalSrc(t, "1 / 0", sc, nil)
	if !ferrors.IsType(err, ferrors.TypeDivisionByZero) {
		t.Fatalf("expected DivisionByZero, got %v", err)
	}
}

func TestNegativeBaseFractionalExponentIsDomainError(t *testing.T) {
	sc := scope.NewGlobal(nil)
	_, err := evalSrc(t, "(0 - 8) ** 0.5", sc, nil)
	if !ferrors.IsType(err, ferrors.TypeDomainError) {
		t.Fatalf("expected DomainError, got %v", err)
	}
}

func TestNegativeBaseWholeExponentIsAllowed(t *testing.T) {
	sc := scope.NewGlobal(nil)
	v, err := evalSrc(t, "(0 - 2) ** 3", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -8 {
		t.Fatalf("expected -8, got %v", v)
	}
}

func TestUndefinedNameError(t *testing.T) {
	sc := scope.NewGlobal(nil)
	_, err := evalSrc(t, "nope", sc, nil)
	if !ferrors.IsType(err, ferrors.TypeUndefinedName) {
		t.Fatalf("expected UndefinedName, got %v", err)
	}
}

func TestQualifiedGlobalResolvesAgainstGlobalLayerOnly(t *testing.T) {
	sc := scope.NewGlobal(map[string]float64{"rate": 1})
	local := sc.Child()
	local.Set("rate", 999)

	v, err := evalSrc(t, "global.rate", local, nil)
	if err != nil || v != 1 {
		t.Fatalf("expected global.rate=1 regardless of local shadow, got %v err=%v", v, err)
	}
}

func TestRandomCallValidatesArity(t *testing.T) {
	sc := scope.NewGlobal(nil)
	rnd := random.New(1)
	_, err := evalSrc(t, "$random(1, 2)", sc, rnd)
	if !ferrors.IsType(err, ferrors.TypeRandomArgumentError) {
		t.Fatalf("expected RandomArgumentError for wrong arity, got %v", err)
	}
}

func TestRandomCallWithoutSourceErrors(t *testing.T) {
	sc := scope.NewGlobal(nil)
	_, err := evalSrc(t, "$random(0, 10, 5)", sc, nil)
	if err == nil {
		t.Fatal("expected an error when no Random Source is available")
	}
}

func TestNotCoercesNonZeroToFalse(t *testing.T) {
	sc := scope.NewGlobal(nil)
	v, err := evalSrc(t, "not 5", sc, nil)
	if err != nil || v != 0.0 {
		t.Fatalf("expected not 5 == 0.0, got %v err=%v", v, err)
	}
}

func TestAssignWritesToInnermostLayer(t *testing.T) {
	sc := scope.NewGlobal(nil)
	local := sc.Child()

	stmts, err := parser.ParseStatements("x = 10")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, stmt := range stmts {
		if _, err := Eval(stmt, local, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	v, err := local.Get("x")
	if err != nil || v != 10 {
		t.Fatalf("expected x=10 in local scope, got %v err=%v", v, err)
	}
}
