package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formulas are flat arithmetic: decimal literals, + - * /, unary sign and
// parentheses. Operands are substituted into the text before evaluation, so
// the evaluator never sees names.

// ErrNonFinite is returned when an expression evaluates to NaN or ±Inf.
var ErrNonFinite = errors.New("formula result is not a finite number")

// FormulaError reports a lexing or parsing failure at a byte offset.
type FormulaError struct {
	Pos     int
	Message string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula error at position %d: %s", e.Pos, e.Message)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokIllegal
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of formula"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "illegal character"
}

type token struct {
	kind    tokenKind
	literal string
	pos     int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() token {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: start}
	}

	ch := l.input[l.pos]
	switch ch {
	case '+':
		l.pos++
		return token{kind: tokPlus, literal: "+", pos: start}
	case '-':
		l.pos++
		return token{kind: tokMinus, literal: "-", pos: start}
	case '*':
		l.pos++
		return token{kind: tokStar, literal: "*", pos: start}
	case '/':
		l.pos++
		return token{kind: tokSlash, literal: "/", pos: start}
	case '(':
		l.pos++
		return token{kind: tokLParen, literal: "(", pos: start}
	case ')':
		l.pos++
		return token{kind: tokRParen, literal: ")", pos: start}
	}

	if isDigit(ch) || ch == '.' {
		return l.readNumber()
	}

	l.pos++
	return token{kind: tokIllegal, literal: string(ch), pos: start}
}

// readNumber consumes digits with at most one decimal point.
func (l *lexer) readNumber() token {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if !isDigit(ch) {
			break
		}
		l.pos++
	}
	return token{kind: tokNumber, literal: l.input[start:l.pos], pos: start}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

const (
	precNone = iota
	precAdditive
	precMultiplicative
	precUnary
)

type parser struct {
	lex *lexer
	tok token
}

// EvaluateExpression parses and evaluates an arithmetic expression.
func EvaluateExpression(expr string) (float64, error) {
	p := &parser{lex: &lexer{input: expr}}
	p.advance()
	if p.tok.kind == tokEOF {
		return 0, &FormulaError{Pos: 0, Message: "empty formula"}
	}

	v, err := p.parseExpression(precAdditive)
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, p.unexpected("operator")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

func (p *parser) unexpected(want string) error {
	if p.tok.kind == tokIllegal {
		return &FormulaError{Pos: p.tok.pos, Message: fmt.Sprintf("unexpected character %q", p.tok.literal)}
	}
	got := p.tok.kind.String()
	if p.tok.kind == tokNumber {
		got = "number " + p.tok.literal
	}
	return &FormulaError{Pos: p.tok.pos, Message: fmt.Sprintf("unexpected %s, expected %s", got, want)}
}

// parseExpression implements precedence climbing over the binary operators.
func (p *parser) parseExpression(minPrec int) (float64, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return 0, err
	}

	for {
		prec := infixPrecedence(p.tok.kind)
		if prec == precNone || prec < minPrec {
			return left, nil
		}
		op := p.tok.kind
		p.advance()

		// Left associative: the right operand binds one level tighter.
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return 0, err
		}

		switch op {
		case tokPlus:
			left += right
		case tokMinus:
			left -= right
		case tokStar:
			left *= right
		case tokSlash:
			left /= right
		}
	}
}

func (p *parser) parsePrefix() (float64, error) {
	switch p.tok.kind {
	case tokMinus:
		p.advance()
		v, err := p.parseExpression(precUnary)
		return -v, err
	case tokPlus:
		p.advance()
		return p.parseExpression(precUnary)
	case tokLParen:
		open := p.tok.pos
		p.advance()
		v, err := p.parseExpression(precAdditive)
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			if p.tok.kind == tokEOF {
				return 0, &FormulaError{Pos: open, Message: "unclosed parenthesis"}
			}
			return 0, p.unexpected("')'")
		}
		p.advance()
		return v, nil
	case tokNumber:
		lit := p.tok.literal
		pos := p.tok.pos
		p.advance()
		if lit == "." {
			return 0, &FormulaError{Pos: pos, Message: "invalid number literal \".\""}
		}
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return 0, &FormulaError{Pos: pos, Message: fmt.Sprintf("invalid number literal %q", lit)}
		}
		return v, nil
	}
	return 0, p.unexpected("number or '('")
}

func infixPrecedence(k tokenKind) int {
	switch k {
	case tokPlus, tokMinus:
		return precAdditive
	case tokStar, tokSlash:
		return precMultiplicative
	}
	return precNone
}

// FormatOperand renders v for textual substitution into a formula. Plain
// decimal notation keeps the lexer free of exponents; negative values are
// parenthesised so "a*b" with b=-2 stays well formed.
func FormatOperand(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

// SubstituteIdentifiers replaces whole-word identifiers ([A-Za-z_][A-Za-z0-9_]*)
// for which lookup reports a value. Unknown identifiers are left in place and
// make the expression fail to evaluate.
func SubstituteIdentifiers(formula string, lookup func(name string) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(formula))
	scanIdentifiers(formula, func(text string, ident bool) {
		if ident {
			if v, ok := lookup(text); ok {
				b.WriteString(v)
				return
			}
		}
		b.WriteString(text)
	})
	return b.String()
}

// Identifiers returns the distinct identifiers of formula in order of first
// appearance.
func Identifiers(formula string) []string {
	var names []string
	seen := make(map[string]bool)
	scanIdentifiers(formula, func(text string, ident bool) {
		if ident && !seen[text] {
			seen[text] = true
			names = append(names, text)
		}
	})
	return names
}

// scanIdentifiers splits formula into consecutive pieces and hands each to fn,
// flagging identifiers. Concatenating the pieces yields formula again.
func scanIdentifiers(formula string, fn func(text string, ident bool)) {
	i := 0
	for i < len(formula) {
		ch := formula[i]
		if !isIdentStart(ch) {
			j := i + 1
			// A digit run stays whole so "2col" is not split into 2 + col.
			if isDigit(ch) || ch == '.' {
				for j < len(formula) && (isIdentPart(formula[j]) || formula[j] == '.') {
					j++
				}
			}
			fn(formula[i:j], false)
			i = j
			continue
		}

		j := i + 1
		for j < len(formula) && isIdentPart(formula[j]) {
			j++
		}
		fn(formula[i:j], true)
		i = j
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
