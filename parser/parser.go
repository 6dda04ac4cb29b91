// Package parser builds typed expression trees from the token stream.
// It owns the grammar and the insertion of implicit conversion nodes;
// the type invariants themselves are enforced by the ast constructors.
package parser

import (
	"github.com/ztrue/tracerr"

	"github.com/katsu/eqlang/ast"
	"github.com/katsu/eqlang/errors"
	"github.com/katsu/eqlang/lexer"
	"github.com/katsu/eqlang/types"
)

type Parser struct {
	lex    *lexer.Lexer
	reg    types.Registry
	schema types.Schema
}

func New(l *lexer.Lexer, reg types.Registry, schema types.Schema) *Parser {
	return &Parser{lex: l, reg: reg, schema: schema}
}

// Parse consumes the whole token stream and returns the finished tree.
// Lexical, syntax and construction failures come back as errors wrapped
// with their stack trace; internal faults keep panicking.
func (p *Parser) Parse() (root ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			if _, internal := rerr.(*errors.Internal); internal {
				panic(r)
			}
			root = nil
			err = tracerr.Wrap(rerr)
		}
	}()

	root = p.parseExpression()

	if tok := p.next(); tok.Kind != types.EOS {
		panic(errors.Syntax{Expected: []types.TokenKind{types.EOS}, Got: tok.Kind, Pos: tok.Start})
	}
	return root, nil
}

// next returns the next token, converting ERROR tokens into a panic
// that Parse turns into a lexical error.
func (p *Parser) next() types.Token {
	tok := p.lex.NextToken()
	if tok.Kind == types.ERROR {
		panic(errors.Lex{Msg: tok.Text, Pos: tok.Start})
	}
	return tok
}

// peek looks one token ahead without consuming it.
func (p *Parser) peek() types.Token {
	tok := p.next()
	p.lex.PushBack(tok)
	return tok
}

func (p *Parser) expect(kinds ...types.TokenKind) types.Token {
	tok := p.next()
	for _, kind := range kinds {
		if tok.Kind == kind {
			return tok
		}
	}
	panic(errors.Syntax{Expected: kinds, Got: tok.Kind, Pos: tok.Start})
}

// must unwraps an ast constructor result, panicking construction errors
// up to the Parse boundary.
func must(n ast.Node, err error) ast.Node {
	if err != nil {
		panic(err)
	}
	return n
}

// Precedence, lowest first: comparison, concatenation, additive,
// multiplicative, exponentiation, unary, primary.

func (p *Parser) parseExpression() ast.Node {
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Node {
	lhs := p.parseConcat()
	for p.peek().IsCompOp() {
		op := p.next()
		rhs := p.parseConcat()
		lhs, rhs = p.reconcileComparison(lhs, rhs)
		lhs = must(ast.NewBinaryOp(op.Start, op, lhs, rhs))
	}
	return lhs
}

func (p *Parser) parseConcat() ast.Node {
	lhs := p.parseAdditive()
	for p.peek().Kind == types.AMPERSAND {
		op := p.next()
		rhs := p.parseAdditive()
		lhs = must(ast.NewBinaryOp(op.Start, op, p.toString(lhs), p.toString(rhs)))
	}
	return lhs
}

func (p *Parser) parseAdditive() ast.Node {
	lhs := p.parseMultiplicative()
	for {
		tok := p.peek()
		if tok.Kind != types.PLUS && tok.Kind != types.MINUS {
			return lhs
		}
		op := p.next()
		rhs := p.parseMultiplicative()
		lhs = must(ast.NewBinaryOp(op.Start, op, p.toFloat(lhs), p.toFloat(rhs)))
	}
}

func (p *Parser) parseMultiplicative() ast.Node {
	lhs := p.parsePower()
	for {
		tok := p.peek()
		if tok.Kind != types.MUL && tok.Kind != types.DIV {
			return lhs
		}
		op := p.next()
		rhs := p.parsePower()
		lhs = must(ast.NewBinaryOp(op.Start, op, p.toFloat(lhs), p.toFloat(rhs)))
	}
}

func (p *Parser) parsePower() ast.Node {
	lhs := p.parseUnary()
	if p.peek().Kind != types.CARET {
		return lhs
	}
	op := p.next()
	// Right-associative.
	rhs := p.parsePower()
	return must(ast.NewBinaryOp(op.Start, op, p.toFloat(lhs), p.toFloat(rhs)))
}

func (p *Parser) parseUnary() ast.Node {
	tok := p.peek()
	if tok.Kind != types.PLUS && tok.Kind != types.MINUS {
		return p.parsePrimary()
	}
	op := p.next()
	operand := p.toFloat(p.parseUnary())
	return must(ast.NewUnaryOp(op.Start, op, operand))
}

func (p *Parser) parsePrimary() ast.Node {
	tok := p.next()

	switch tok.Kind {
	case types.FLOAT_CONST:
		return ast.NewFloatLiteral(tok.Start, tok.Float)
	case types.STRING_CONST:
		return ast.NewStringLiteral(tok.Start, tok.Text)
	case types.BOOLEAN_CONST:
		return ast.NewBooleanLiteral(tok.Start, tok.Bool)
	case types.LPAREN:
		inner := p.parseExpression()
		p.expect(types.RPAREN)
		return inner
	case types.DOLLAR:
		// ${name} is an alias for {name}.
		p.expect(types.LBRACE)
		return p.parseAttributeRef(tok.Start)
	case types.LBRACE:
		return p.parseAttributeRef(tok.Start)
	case types.IDENT:
		return p.parseCall(tok)
	}

	panic(errors.Syntax{
		Expected: []types.TokenKind{
			types.FLOAT_CONST, types.STRING_CONST, types.BOOLEAN_CONST,
			types.LPAREN, types.LBRACE, types.DOLLAR, types.IDENT,
		},
		Got: tok.Kind,
		Pos: tok.Start,
	})
}

// parseAttributeRef parses the inside of {name} or {name:default}; the
// opening brace is already consumed and start is its offset.
func (p *Parser) parseAttributeRef(start int) ast.Node {
	name := p.expect(types.IDENT)

	var def ast.Node
	if p.peek().Kind == types.COLON {
		p.next()
		def = p.parseExpression()
	}
	p.expect(types.RBRACE)

	typ, declared := p.schema[name.Text]
	if !declared {
		if def == nil {
			panic(errors.UnknownAttribute{Name: name.Text, Pos: name.Start})
		}
		typ = def.Type()
	}

	return must(ast.NewAttributeRef(start, name.Text, def, typ))
}

// parseCall parses NAME(arg, ...) and validates the call against the
// registry before the node is built.
func (p *Parser) parseCall(name types.Token) ast.Node {
	p.expect(types.LPAREN)

	var args []ast.Node
	if p.peek().Kind != types.RPAREN {
		for {
			args = append(args, p.parseExpression())
			if tok := p.expect(types.COMMA, types.RPAREN); tok.Kind == types.RPAREN {
				p.lex.PushBack(tok)
				break
			}
		}
	}
	p.expect(types.RPAREN)

	fn := p.reg.Lookup(name.Text)
	if fn == nil {
		panic(errors.UnknownFunction{Name: name.Text, Pos: name.Start})
	}

	argTypes := make([]types.ValueType, len(args))
	for i, arg := range args {
		argTypes[i] = arg.Type()
	}

	result := fn.ValidateArgTypes(argTypes)
	if result == types.NoType {
		panic(errors.NoMatchingSignature{
			Name: fn.Name(), Usage: fn.Usage(), Args: argTypes, Pos: name.Start,
		})
	}

	return must(ast.NewFunctionCall(name.Start, fn, result, args))
}

// toFloat wraps a non-float node in an implicit float conversion.
func (p *Parser) toFloat(n ast.Node) ast.Node {
	if n.Type() == types.Float {
		return n
	}
	return must(ast.NewFloatConv(n))
}

// toString wraps a non-string node in an implicit string conversion.
func (p *Parser) toString(n ast.Node) ast.Node {
	if n.Type() == types.String {
		return n
	}
	return must(ast.NewStringConv(n))
}

// reconcileComparison converts mismatched comparison operands to a
// common type: toward float when either side is numeric, toward string
// otherwise.
func (p *Parser) reconcileComparison(lhs, rhs ast.Node) (ast.Node, ast.Node) {
	if lhs.Type() == rhs.Type() {
		return lhs, rhs
	}
	numeric := func(t types.ValueType) bool { return t == types.Float || t == types.Int }
	if numeric(lhs.Type()) || numeric(rhs.Type()) {
		return p.toFloat(lhs), p.toFloat(rhs)
	}
	return p.toString(lhs), p.toString(rhs)
}
