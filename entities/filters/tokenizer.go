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
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdentifier
	tokenString
	tokenNumber
	tokenAnd
	tokenOr
	tokenTrue
	tokenFalse
	tokenLeftParen
	tokenRightParen
	tokenEq
	tokenNe
	tokenLt
	tokenLe
	tokenGt
	tokenGe
)

var keywords = map[string]tokenType{
	"AND":   tokenAnd,
	"OR":    tokenOr,
	"TRUE":  tokenTrue,
	"FALSE": tokenFalse,
}

type token struct {
	typ      tokenType
	literal  string
	location int
}

type tokenizer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	t := &tokenizer{input: input}
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			t.add(tokenEOF, "")
			return t.tokens, nil
		}
		ch := t.input[t.pos]
		switch {
		case unicode.IsLetter(rune(ch)) || ch == '_':
			t.readIdentifier()
		case unicode.IsDigit(rune(ch)) || ch == '-':
			if err := t.readNumber(); err != nil {
				return nil, err
			}
		case ch == '"' || ch == '\'':
			if err := t.readString(); err != nil {
				return nil, err
			}
		default:
			if err := t.readOperator(); err != nil {
				return nil, err
			}
		}
	}
}

func (t *tokenizer) add(typ tokenType, lit string) {
	t.tokens = append(t.tokens, token{typ: typ, literal: lit, location: t.pos})
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return
		}
	}
}

func (t *tokenizer) readIdentifier() {
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' || ch == '.' {
			t.pos++
		} else {
			break
		}
	}
	word := t.input[start:t.pos]
	if typ, ok := keywords[strings.ToUpper(word)]; ok {
		t.add(typ, word)
		return
	}
	t.add(tokenIdentifier, word)
}

func (t *tokenizer) readNumber() error {
	start := t.pos
	if t.input[t.pos] == '-' {
		t.pos++
		if t.pos >= len(t.input) || !unicode.IsDigit(rune(t.input[t.pos])) {
			return errors.Errorf("unexpected '-' at position %d", start)
		}
	}
	seenDot := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if unicode.IsDigit(rune(ch)) {
			t.pos++
		} else if ch == '.' && !seenDot {
			seenDot = true
			t.pos++
		} else {
			break
		}
	}
	t.add(tokenNumber, t.input[start:t.pos])
	return nil
}

func (t *tokenizer) readString() error {
	quote := t.input[t.pos]
	start := t.pos
	t.pos++
	var b strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == '\\' && t.pos+1 < len(t.input) {
			b.WriteByte(t.input[t.pos+1])
			t.pos += 2
			continue
		}
		if ch == quote {
			t.pos++
			t.add(tokenString, b.String())
			return nil
		}
		b.WriteByte(ch)
		t.pos++
	}
	return errors.Errorf("unterminated string literal at position %d", start)
}

func (t *tokenizer) readOperator() error {
	rest := t.input[t.pos:]
	two := ""
	if len(rest) >= 2 {
		two = rest[:2]
	}
	switch two {
	case "==":
		t.pos += 2
		t.add(tokenEq, "==")
		return nil
	case "!=":
		t.pos += 2
		t.add(tokenNe, "!=")
		return nil
	case "<=":
		t.pos += 2
		t.add(tokenLe, "<=")
		return nil
	case ">=":
		t.pos += 2
		t.add(tokenGe, ">=")
		return nil
	}
	switch rest[0] {
	case '<':
		t.pos++
		t.add(tokenLt, "<")
	case '>':
		t.pos++
		t.add(tokenGt, ">")
	case '(':
		t.pos++
		t.add(tokenLeftParen, "(")
	case ')':
		t.pos++
		t.add(tokenRightParen, ")")
	default:
		return errors.Errorf("unexpected character %q at position %d", rest[0], t.pos)
	}
	return nil
}
