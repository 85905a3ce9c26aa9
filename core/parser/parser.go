// Package parser implements the recursive-descent parser of §4.B,
// turning token streams into an ast.Node tree.
package parser

import (
	"strconv"
	"strings"

	"finsim/core/ast"
	"finsim/core/lexer"
	"finsim/core/token"
	ferrors "finsim/internal/errors"
)

// Parser consumes a pre-lexed token stream.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New tokenizes src fully and returns a Parser positioned at the start.
func New(src string) *Parser {
	lx := lexer.New(src)
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return &Parser{tokens: toks}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	t := p.peek()
	if t.Kind != k {
		return t, ferrors.ParseError(t.Literal, t.Offset, "expected "+k.String()+", got "+t.Kind.String())
	}
	return p.advance(), nil
}

// ParseExpression parses src as a single expression.
func ParseExpression(src string) (*ast.Node, error) {
	p := New(src)
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSemis()
	if p.peek().Kind != token.EOF {
		t := p.peek()
		return nil, ferrors.ParseError(t.Literal, t.Offset, "unexpected trailing input")
	}
	return node, nil
}

// ParseStatements parses src as a sequence of statements separated by
// line breaks or semicolons (§4.B "Source forms accepted as statements").
func ParseStatements(src string) ([]*ast.Node, error) {
	p := New(src)
	var stmts []*ast.Node
	p.skipSemis()
	for p.peek().Kind != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.peek().Kind != token.EOF {
			if p.peek().Kind != token.SEMI {
				t := p.peek()
				return nil, ferrors.ParseError(t.Literal, t.Offset, "expected statement separator")
			}
			p.skipSemis()
		}
	}
	return stmts, nil
}

func (p *Parser) skipSemis() {
	for p.peek().Kind == token.SEMI {
		p.advance()
	}
}

func (p *Parser) parseStmt() (*ast.Node, error) {
	t := p.peek()
	if t.Kind == token.IDENT && !strings.Contains(t.Literal, ".") {
		if p.tokens[p.pos+1].Kind == token.ASSIGN {
			target := p.advance()
			p.advance() // '='
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.Assign, Target: target.Literal, X: rhs, Offset: target.Offset}, nil
		}
	}
	return p.parseExpr()
}

func (p *Parser) parseExpr() (*ast.Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (*ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == token.OR {
		off := p.advance().Offset
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Node{Kind: ast.Binary, Op: ast.LogOr, X: left, Y: right, Offset: off}
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == token.AND {
		off := p.advance().Offset
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Node{Kind: ast.Binary, Op: ast.LogAnd, X: left, Y: right, Offset: off}
	}
	return left, nil
}

func (p *Parser) parseNot() (*ast.Node, error) {
	if p.peek().Kind == token.NOT {
		off := p.advance().Offset
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.NotOp, X: x, Offset: off}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[token.Kind]ast.BinOp{
	token.EQ:  ast.CmpEq,
	token.NEQ: ast.CmpNeq,
	token.LT:  ast.CmpLt,
	token.LTE: ast.CmpLte,
	token.GT:  ast.CmpGt,
	token.GTE: ast.CmpGte,
}

func (p *Parser) parseCmp() (*ast.Node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.peek().Kind]; ok {
		off := p.advance().Offset
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Binary, Op: op, X: left, Y: right, Offset: off}, nil
	}
	return left, nil
}

func (p *Parser) parseSum() (*ast.Node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == token.PLUS || p.peek().Kind == token.MINUS {
		t := p.advance()
		op := ast.Add
		if t.Kind == token.MINUS {
			op = ast.Sub
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.Node{Kind: ast.Binary, Op: op, X: left, Y: right, Offset: t.Offset}
	}
	return left, nil
}

func (p *Parser) parseMul() (*ast.Node, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == token.STAR || p.peek().Kind == token.SLASH {
		t := p.advance()
		op := ast.Mul
		if t.Kind == token.SLASH {
			op = ast.Div
		}
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left = &ast.Node{Kind: ast.Binary, Op: op, X: left, Y: right, Offset: t.Offset}
	}
	return left, nil
}

func (p *Parser) parsePow() (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == token.POW {
		off := p.advance().Offset
		right, err := p.parsePow() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Binary, Op: ast.PowOp, X: left, Y: right, Offset: off}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	if p.peek().Kind == token.PLUS || p.peek().Kind == token.MINUS {
		t := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Unary, Negative: t.Kind == token.MINUS, X: x, Offset: t.Offset}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case token.NUMBER:
		p.advance()
		n, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, ferrors.ParseError(t.Literal, t.Offset, "invalid number literal")
		}
		return &ast.Node{Kind: ast.NumberLit, Number: n, Offset: t.Offset}, nil

	case token.IDENT:
		p.advance()
		if strings.Contains(t.Literal, ".") {
			return &ast.Node{Kind: ast.QualifiedName, Ident: t.Literal, Offset: t.Offset}, nil
		}
		return &ast.Node{Kind: ast.Name, Ident: t.Literal, Offset: t.Offset}, nil

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case token.DOLLAR:
		return p.parseCall()

	default:
		return nil, ferrors.ParseError(t.Literal, t.Offset, "unexpected token")
	}
}

func (p *Parser) parseCall() (*ast.Node, error) {
	dollar := p.advance() // '$'
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var args []*ast.Node
	if p.peek().Kind != token.RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return &ast.Node{Kind: ast.Call, Callee: name.Literal, Args: args, Offset: dollar.Offset}, nil
}
