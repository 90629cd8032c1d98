package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/fable/pkg/domain"
)

// predicateError carries the byte offset of the failing token so the
// caller can translate it into a source column.
type predicateError struct {
	offset int
	msg    string
}

func (e *predicateError) Error() string { return e.msg }

type tokenKind int

const (
	tokWord tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lexPredicate(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case strings.HasPrefix(src[i:], "&&"), strings.HasPrefix(src[i:], "||"),
			strings.HasPrefix(src[i:], "<="), strings.HasPrefix(src[i:], ">="),
			strings.HasPrefix(src[i:], "=="), strings.HasPrefix(src[i:], "!="):
			toks = append(toks, token{tokOp, src[i : i+2], i})
			i += 2
		case c == '<' || c == '>' || c == '!':
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i++
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			toks = append(toks, token{tokNumber, src[start:i], start})
		case isWordChar(c):
			start := i
			for i < len(src) && isWordChar(src[i]) {
				i++
			}
			toks = append(toks, token{tokWord, src[start:i], start})
		default:
			return nil, &predicateError{i, fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordChar(c byte) bool {
	return isNameChar(c) || c == ':'
}

type predicateParser struct {
	toks []token
	pos  int
}

// ParsePredicate compiles a predicate expression.
//
//	expr  := or
//	or    := and { ("or" | "||") and }
//	and   := unary { ("and" | "&&") unary }
//	unary := ("not" | "!") unary | atom
//	atom  := "(" expr ")" | "true" | "false"
//	       | "flag:" NAME [ ("==" | "!=") ("true" | "false") ]
//	       | "counter:" NAME CMP INT
func ParsePredicate(src string) (domain.Predicate, error) {
	toks, err := lexPredicate(src)
	if err != nil {
		return nil, err
	}
	p := &predicateParser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &predicateError{0, "empty predicate"}
	}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &predicateError{t.pos, fmt.Sprintf("unexpected %q", t.text)}
	}
	return pred, nil
}

func (p *predicateParser) peek() token { return p.toks[p.pos] }

func (p *predicateParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *predicateParser) parseOr() (domain.Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "or", "||") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = domain.OrPred{Left: left, Right: right}
	}
	return left, nil
}

func (p *predicateParser) parseAnd() (domain.Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "and", "&&") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = domain.AndPred{Left: left, Right: right}
	}
	return left, nil
}

func (p *predicateParser) parseUnary() (domain.Predicate, error) {
	if isKeyword(p.peek(), "not", "!") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return domain.NotPred{Operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *predicateParser) parseAtom() (domain.Predicate, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &predicateError{closing.pos, "missing ')'"}
		}
		return inner, nil
	case tokWord:
		switch {
		case t.text == "true":
			return domain.ConstPred(true), nil
		case t.text == "false":
			return domain.ConstPred(false), nil
		case strings.HasPrefix(t.text, "flag:"):
			return p.parseFlag(t)
		case strings.HasPrefix(t.text, "counter:"):
			return p.parseCounter(t)
		}
	case tokEOF:
		return nil, &predicateError{t.pos, "unexpected end of predicate"}
	}
	return nil, &predicateError{t.pos, fmt.Sprintf("expected flag:, counter:, true, false or '(' but found %q", t.text)}
}

func (p *predicateParser) parseFlag(t token) (domain.Predicate, error) {
	name := strings.TrimPrefix(t.text, "flag:")
	if !validName(name) {
		return nil, &predicateError{t.pos, fmt.Sprintf("invalid flag name %q", name)}
	}
	op := p.peek()
	if op.kind != tokOp || (op.text != "==" && op.text != "!=") {
		return domain.FlagPred{Name: name, Want: true}, nil
	}
	p.next()
	lit := p.next()
	if lit.kind != tokWord || (lit.text != "true" && lit.text != "false") {
		return nil, &predicateError{lit.pos, "flag comparison needs true or false"}
	}
	want := lit.text == "true"
	if op.text == "!=" {
		want = !want
	}
	return domain.FlagPred{Name: name, Want: want}, nil
}

func (p *predicateParser) parseCounter(t token) (domain.Predicate, error) {
	name := strings.TrimPrefix(t.text, "counter:")
	if !validName(name) {
		return nil, &predicateError{t.pos, fmt.Sprintf("invalid counter name %q", name)}
	}
	op := p.next()
	cmp := domain.CompareOp(op.text)
	if op.kind != tokOp || !cmp.Valid() {
		return nil, &predicateError{op.pos, "counter needs a comparison (<, <=, ==, !=, >=, >)"}
	}
	num := p.next()
	if num.kind != tokNumber {
		return nil, &predicateError{num.pos, "counter comparison needs an integer"}
	}
	v, err := strconv.Atoi(num.text)
	if err != nil {
		return nil, &predicateError{num.pos, fmt.Sprintf("invalid integer %q", num.text)}
	}
	return domain.CounterPred{Name: name, Op: cmp, Value: v}, nil
}

func isKeyword(t token, word, op string) bool {
	return (t.kind == tokWord && t.text == word) || (t.kind == tokOp && t.text == op)
}
