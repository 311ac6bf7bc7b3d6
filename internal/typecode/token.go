package typecode

import (
	"fmt"
	"strconv"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenNum TokenKind = iota
	TokenOr
	TokenAnd
	TokenLParen
	TokenRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenNum:
		return "NUM"
	case TokenOr:
		return "OR"
	case TokenAnd:
		return "AND"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexeme of a grading expression. Pos is the byte offset
// of the token in the scanned string.
type Token struct {
	Kind  TokenKind
	Value int
	Pos   int
}

func (t Token) String() string {
	if t.Kind == TokenNum {
		return fmt.Sprintf("NUM(%d)", t.Value)
	}
	return t.Kind.String()
}

// Tokenize scans s into a flat token stream. Every byte that is not a digit,
// 'o', 'u', '(' or ')' is skipped, so flag and shape letters must already be
// stripped by the caller if they would otherwise collide with the operators.
func Tokenize(s string) []Token {
	var tokens []Token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenNum, Value: parseSlot(s[i:j]), Pos: i})
			i = j
			continue
		case c == 'o':
			tokens = append(tokens, Token{Kind: TokenOr, Pos: i})
		case c == 'u':
			tokens = append(tokens, Token{Kind: TokenAnd, Pos: i})
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Pos: i})
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Pos: i})
		}
		i++
	}
	return tokens
}

// parseSlot converts a digit run to a slot number. Runs too long for an int
// become MaxSlot+1, which never resolves to a slot.
func parseSlot(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n > MaxSlot {
		return MaxSlot + 1
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
