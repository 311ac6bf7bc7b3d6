package typecode

import (
	"errors"
	"fmt"
)

// SyntaxError describes a malformed part of a grading expression. Parsing
// never stops on a SyntaxError; the affected factor evaluates to false.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// ErrEmptyExpression is reported for an expression without any tokens.
var ErrEmptyExpression = errors.New("empty expression")

// Parser is a recursive-descent parser over a token stream:
//
//	expr   := term { "o" term }
//	term   := factor { "u" factor }
//	factor := "(" expr ")" | NUM [ ("o"|"u") NUM ]
//
// A NUM op NUM factor is an inclusive slot range.
type Parser struct {
	tokens []Token
	pos    int
	end    int // byte length of the source, for errors at end of input
	errs   []error
}

// NewParser returns a parser over tokens. srcLen is the length of the
// scanned source and is only used to position end-of-input errors.
func NewParser(tokens []Token, srcLen int) *Parser {
	return &Parser{tokens: tokens, end: srcLen}
}

// ParseExpr tokenizes and parses s.
func ParseExpr(s string) (Expr, error) {
	return NewParser(Tokenize(s), len(s)).Parse()
}

// Parse returns the best-effort AST and every syntax problem found, joined.
// The returned Expr is never nil.
func (p *Parser) Parse() (Expr, error) {
	if len(p.tokens) == 0 {
		return Invalid{}, ErrEmptyExpression
	}
	e := p.parseExpr()
	if tok, ok := p.peek(); ok {
		p.fail(tok.Pos, fmt.Sprintf("unexpected %s after expression", tok))
	}
	return e, errors.Join(p.errs...)
}

func (p *Parser) peek() (Token, bool) {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) (Token, bool) {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[i], true
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) accept(kind TokenKind) bool {
	if tok, ok := p.peek(); ok && tok.Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) fail(pos int, msg string) {
	p.errs = append(p.errs, &SyntaxError{Pos: pos, Msg: msg})
}

func (p *Parser) parseExpr() Expr {
	terms := []Expr{p.parseTerm()}
	for p.accept(TokenOr) {
		terms = append(terms, p.parseTerm())
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return Or{Terms: terms}
}

func (p *Parser) parseTerm() Expr {
	factors := []Expr{p.parseFactor()}
	for p.accept(TokenAnd) {
		factors = append(factors, p.parseFactor())
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return And{Factors: factors}
}

func (p *Parser) parseFactor() Expr {
	tok, ok := p.peek()
	if !ok {
		p.fail(p.end, "expected slot number or '(' at end of input")
		return Invalid{}
	}

	switch tok.Kind {
	case TokenLParen:
		p.advance()
		e := p.parseExpr()
		if !p.accept(TokenRParen) {
			p.fail(tok.Pos, "unclosed '('")
		}
		return e

	case TokenNum:
		p.advance()
		op, ok := p.peek()
		if !ok || (op.Kind != TokenOr && op.Kind != TokenAnd) {
			return Leaf{Slot: tok.Value}
		}
		next, ok := p.peekAt(1)
		if !ok || next.Kind != TokenNum {
			return Leaf{Slot: tok.Value}
		}
		p.advance()
		p.advance()
		r := Range{From: tok.Value, To: next.Value, Op: OpOr}
		if op.Kind == TokenAnd {
			r.Op = OpAnd
		}
		return r
	}

	// Operators and ')' are left for the enclosing loops to consume.
	p.fail(tok.Pos, fmt.Sprintf("expected slot number or '(', found %s", tok))
	return Invalid{}
}
