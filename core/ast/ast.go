// Package ast defines the expression-language abstract syntax tree (§4.B).
//
// Node is a tagged variant (sum type) rather than a class hierarchy: one
// Kind enum, one struct carrying every field any node kind might need.
// This mirrors how the rest of the engine represents Value and GrowthSpec
// as tagged variants instead of inheritance trees (§9 Design Notes).
package ast

// Kind identifies a node's variant.
type Kind int

const (
	NumberLit Kind = iota
	Name
	QualifiedName
	Unary
	Binary
	NotOp
	Call
	Assign
)

// BinOp identifies a Binary node's operator.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	PowOp
	CmpEq
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
	LogAnd
	LogOr
)

// Node is one AST node. Only the fields relevant to Kind are populated.
type Node struct {
	Kind Kind

	// NumberLit
	Number float64

	// Name / QualifiedName
	Ident string

	// Unary ('-' or '+'), Binary, NotOp, Assign
	Op       BinOp  // Binary only
	Negative bool   // Unary only: true for '-', false for '+'
	X        *Node  // Unary operand, NotOp operand, Binary left, Assign RHS
	Y        *Node  // Binary right

	// Call (the sole recognised call is $random)
	Callee string
	Args   []*Node

	// Assign
	Target string

	// Offset is the byte offset of the node's leading token, for errors.
	Offset int
}
