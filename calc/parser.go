package calc

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

type parser struct {
	l   lexer
	cur token
}

// parse builds the AST for one expression. The grammar is closed: numbers, the operators
// + - * / **, parentheses and calls to allow-listed names.
func parse(s string) (node, error) {
	p := &parser{l: lexer{s: s}}
	p.next()
	if p.cur.kind == tokEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.unexpected()
	}
	return n, nil
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) unexpected() error {
	if p.cur.kind == tokEOF {
		return fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.cur.text, p.cur.pos)
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = nodeBinary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash {
		op := p.cur.kind
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = nodeBinary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return nodeUnary{op: op, x: x}, nil
	}
	return p.parsePower()
}

// parsePower binds tighter than a sign on its left and accepts a signed exponent on its right,
// so -2**2 is -(2**2) and 2**-1 is 2**(-1). It is right-associative.
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return nodeBinary{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch p.cur.kind {
	case tokNumber:
		v, err := parseLiteral(p.cur.text)
		if err != nil {
			return nil, err
		}
		p.next()
		return nodeNumber{v: v}, nil

	case tokIdent:
		name := p.cur.text
		p.next()
		if p.cur.kind != tokLParen {
			return nodeIdent{name: name}, nil
		}
		p.next()
		var args []node
		if p.cur.kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.kind != tokComma {
					break
				}
				p.next()
				// A trailing comma before ')' is accepted, as in f(1, 2,).
				if p.cur.kind == tokRParen {
					break
				}
			}
		}
		if p.cur.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')'", ErrSyntax)
		}
		p.next()
		return nodeCall{name: name, args: args}, nil

	case tokLParen:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')'", ErrSyntax)
		}
		p.next()
		return x, nil
	}
	return nil, p.unexpected()
}

// parseLiteral converts a scanned number. Integer literals stay exact; a decimal integer
// with a leading zero ("05") is rejected.
func parseLiteral(txt string) (Value, error) {
	if !strings.ContainsAny(txt, ".eE") {
		if len(txt) > 1 && txt[0] == '0' && strings.Trim(txt, "0") != "" {
			return Value{}, fmt.Errorf("%w: leading zeros in decimal integer literal %q", ErrSyntax, txt)
		}
		n, ok := new(big.Int).SetString(txt, 10)
		if !ok {
			return Value{}, fmt.Errorf("%w: bad integer %q", ErrSyntax, txt)
		}
		return bigValue(n)
	}
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("%w: bad number %q", ErrSyntax, txt)
	}
	// Out-of-range literals saturate to inf or 0 like any float literal.
	return Float(f), nil
}
