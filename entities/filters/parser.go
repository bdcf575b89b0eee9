//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package filters

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse turns a value-filter expression into a clause tree.
//
// Grammar:
//
//	expr   := term (OR term)*
//	term   := factor (AND factor)*
//	factor := '(' expr ')' | column op literal
//	op     := == | != | < | <= | > | >=
//
// AND binds tighter than OR; AND/OR are case-insensitive. Literals are
// integers, floats, quoted strings (single or double quotes) and
// true/false.
func Parse(input string) (*Clause, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("empty filter expression")
	}
	tokens, err := tokenize(input)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize filter")
	}
	p := &parser{tokens: tokens}
	clause, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokenEOF {
		return nil, errors.Errorf("unexpected %q at position %d", p.peek().literal, p.peek().location)
	}
	return clause, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (*Clause, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	operands := []Clause{*left}
	for p.peek().typ == tokenOr {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		operands = append(operands, *right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return &Clause{Operator: OperatorOr, Operands: operands}, nil
}

func (p *parser) parseTerm() (*Clause, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	operands := []Clause{*left}
	for p.peek().typ == tokenAnd {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		operands = append(operands, *right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return &Clause{Operator: OperatorAnd, Operands: operands}, nil
}

func (p *parser) parseFactor() (*Clause, error) {
	if p.peek().typ == tokenLeftParen {
		p.next()
		clause, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.typ != tokenRightParen {
			return nil, errors.Errorf("expected ')' at position %d", tok.location)
		}
		return clause, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (*Clause, error) {
	col := p.next()
	if col.typ != tokenIdentifier {
		return nil, errors.Errorf("expected column name, got %q at position %d", col.literal, col.location)
	}
	var op Operator
	switch tok := p.next(); tok.typ {
	case tokenEq:
		op = OperatorEqual
	case tokenNe:
		op = OperatorNotEqual
	case tokenLt:
		op = OperatorLessThan
	case tokenLe:
		op = OperatorLessThanEqual
	case tokenGt:
		op = OperatorGreaterThan
	case tokenGe:
		op = OperatorGreaterThanEqual
	default:
		return nil, errors.Errorf("expected comparison operator after %q, got %q", col.literal, tok.literal)
	}
	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &Clause{Operator: op, On: col.literal, Value: value}, nil
}

func (p *parser) parseLiteral() (interface{}, error) {
	tok := p.next()
	switch tok.typ {
	case tokenString:
		return tok.literal, nil
	case tokenTrue:
		return true, nil
	case tokenFalse:
		return false, nil
	case tokenNumber:
		if strings.Contains(tok.literal, ".") {
			f, err := strconv.ParseFloat(tok.literal, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parse float literal %q", tok.literal)
			}
			return f, nil
		}
		i, err := strconv.ParseInt(tok.literal, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse integer literal %q", tok.literal)
		}
		return i, nil
	default:
		return nil, errors.Errorf("expected literal, got %q at position %d", tok.literal, tok.location)
	}
}
