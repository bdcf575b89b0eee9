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

// Package filters implements the value-filter mini-language applied to
// reads: comparisons of materialized columns against literals, combined
// with AND/OR. Filters are parsed into a clause tree, compiled against a
// schema, and evaluated row-wise before batching.
package filters

type Operator int

const (
	OperatorEqual Operator = iota + 1
	OperatorNotEqual
	OperatorLessThan
	OperatorLessThanEqual
	OperatorGreaterThan
	OperatorGreaterThanEqual
	OperatorAnd
	OperatorOr
)

// OnValue reports whether the operator compares a column against a
// literal, as opposed to combining sub-clauses.
func (o Operator) OnValue() bool {
	switch o {
	case OperatorEqual, OperatorNotEqual,
		OperatorLessThan, OperatorLessThanEqual,
		OperatorGreaterThan, OperatorGreaterThanEqual:
		return true
	default:
		return false
	}
}

func (o Operator) Name() string {
	switch o {
	case OperatorEqual:
		return "Equal"
	case OperatorNotEqual:
		return "NotEqual"
	case OperatorLessThan:
		return "LessThan"
	case OperatorLessThanEqual:
		return "LessThanEqual"
	case OperatorGreaterThan:
		return "GreaterThan"
	case OperatorGreaterThanEqual:
		return "GreaterThanEqual"
	case OperatorAnd:
		return "And"
	case OperatorOr:
		return "Or"
	default:
		return "Unknown"
	}
}

// Clause is one node of a parsed filter expression. Value clauses set On
// and Value; And/Or clauses set Operands.
type Clause struct {
	Operator Operator
	// On names the column a value clause applies to.
	On string
	// Value is the literal of a value clause: int64, float64, string
	// or bool, as written in the expression.
	Value interface{}
	// Operands are the sub-clauses of And/Or.
	Operands []Clause
}
