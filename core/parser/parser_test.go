package parser

import (
	"testing"

	"finsim/core/ast"
)

func TestPowIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 must parse as 2 ** (3 ** 2), not (2 ** 3) ** 2.
	node, err := ParseExpression("2 ** 3 ** 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Kind != ast.Binary || node.Op != ast.PowOp {
		t.Fatalf("expected top-level PowOp, got %v", node.Kind)
	}
	if node.X.Kind != ast.NumberLit || node.X.Number != 2 {
		t.Fatalf("expected left operand to be the literal 2, got %+v", node.X)
	}
	if node.Y.Kind != ast.Binary || node.Y.Op != ast.PowOp {
		t.Fatalf("expected right operand to itself be a PowOp (right-associativity), got %+v", node.Y)
	}
}

func TestMulBindsTighterThanAdd(t *testing.T) {
	node, err := ParseExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Kind != ast.Binary || node.Op != ast.Add {
		t.Fatalf("expected top-level Add, got %v", node.Kind)
	}
	if node.Y.Op != ast.Mul {
		t.Fatalf("expected right operand to be Mul, got %v", node.Y.Op)
	}
}

func TestComparisonsDoNotChain(t *testing.T) {
	// "1 < 2 < 3" is not valid: comparisons are non-associative in §4.B.
	if _, err := ParseExpression("1 < 2 < 3"); err == nil {
		t.Fatal("expected a parse error for chained comparisons")
	}
}

func TestAndBindsTighterThanOr(t *testing.T) {
	node, err := ParseExpression("1 or 0 and 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Op != ast.LogOr {
		t.Fatalf("expected top-level LogOr, got %v", node.Op)
	}
	if node.Y.Op != ast.LogAnd {
		t.Fatalf("expected right operand to be LogAnd, got %v", node.Y.Op)
	}
}

func TestNotBindsTighterThanAnd(t *testing.T) {
	node, err := ParseExpression("not 1 and 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Op != ast.LogAnd {
		t.Fatalf("expected top-level LogAnd, got %v", node.Op)
	}
	if node.X.Kind != ast.NotOp {
		t.Fatalf("expected left operand to be NotOp, got %v", node.X.Kind)
	}
}

func TestQualifiedNameParsesAsQualifiedName(t *testing.T) {
	node, err := ParseExpression("global.rate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Kind != ast.QualifiedName || node.Ident != "global.rate" {
		t.Fatalf("expected QualifiedName(global.rate), got %+v", node)
	}
}

func TestRandomCallParsesThreeArguments(t *testing.T) {
	node, err := ParseExpression("$random(0, 10, 5)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Kind != ast.Call || node.Callee != "random" {
		t.Fatalf("expected Call(random), got %+v", node)
	}
	if len(node.Args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(node.Args))
	}
}

func TestParseStatementsSplitsOnNewlineAndSemicolon(t *testing.T) {
	stmts, err := ParseStatements("x = 1\ny = x + 1; result = y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	for i, want := range []string{"x", "y", "result"} {
		if stmts[i].Kind != ast.Assign || stmts[i].Target != want {
			t.Fatalf("statement %d: expected assignment to %q, got %+v", i, want, stmts[i])
		}
	}
}

func TestTrailingInputIsAParseError(t *testing.T) {
	if _, err := ParseExpression("1 + 2 3"); err == nil {
		t.Fatal("expected a parse error for trailing input")
	}
}
