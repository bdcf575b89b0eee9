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
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/soma"
)

// Predicate is a filter compiled against a concrete schema. Match
// evaluates one materialized row, whose values are aligned with the
// schema's field order.
type Predicate struct {
	root compiled
}

type compiled interface {
	match(row []interface{}) bool
}

// Compile resolves column references and type-checks literals against
// sc. Unknown columns and incompatible literal types are SchemaErrors;
// filters never coerce column data.
func Compile(clause *Clause, sc *arrow.Schema) (*Predicate, error) {
	node, err := compile(clause, sc)
	if err != nil {
		return nil, err
	}
	return &Predicate{root: node}, nil
}

// ParseAndCompile is the common path for read options carrying a filter
// string.
func ParseAndCompile(expr string, sc *arrow.Schema) (*Predicate, error) {
	clause, err := Parse(expr)
	if err != nil {
		return nil, soma.Schemaf("invalid value filter: %s", err)
	}
	return Compile(clause, sc)
}

func (p *Predicate) Match(row []interface{}) bool {
	return p.root.match(row)
}

type boolNode struct {
	and      bool
	operands []compiled
}

func (n *boolNode) match(row []interface{}) bool {
	for _, op := range n.operands {
		if op.match(row) == !n.and {
			return !n.and
		}
	}
	return n.and
}

type compareNode struct {
	col int
	op  Operator
	cmp func(v interface{}) (int, bool)
}

func (n *compareNode) match(row []interface{}) bool {
	c, ok := n.cmp(row[n.col])
	if !ok {
		return false
	}
	switch n.op {
	case OperatorEqual:
		return c == 0
	case OperatorNotEqual:
		return c != 0
	case OperatorLessThan:
		return c < 0
	case OperatorLessThanEqual:
		return c <= 0
	case OperatorGreaterThan:
		return c > 0
	case OperatorGreaterThanEqual:
		return c >= 0
	default:
		return false
	}
}

func compile(clause *Clause, sc *arrow.Schema) (compiled, error) {
	switch clause.Operator {
	case OperatorAnd, OperatorOr:
		operands := make([]compiled, len(clause.Operands))
		for i := range clause.Operands {
			node, err := compile(&clause.Operands[i], sc)
			if err != nil {
				return nil, err
			}
			operands[i] = node
		}
		return &boolNode{and: clause.Operator == OperatorAnd, operands: operands}, nil
	}

	pos := sc.FieldIndices(clause.On)
	if len(pos) == 0 {
		return nil, soma.Schemaf("filter references unknown column %q", clause.On)
	}
	field := sc.Field(pos[0])
	cmp, err := comparator(field, clause)
	if err != nil {
		return nil, err
	}
	return &compareNode{col: pos[0], op: clause.Operator, cmp: cmp}, nil
}

// comparator builds the per-row comparison for one value clause. The
// returned function compares the column value against the literal,
// yielding <0, 0 or >0; ok is false when the value is incomparable.
func comparator(field arrow.Field, clause *Clause) (func(interface{}) (int, bool), error) {
	switch field.Type.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		lit, ok := clause.Value.(string)
		if !ok {
			return nil, soma.Schemaf("filter on string column %q needs a string literal", field.Name)
		}
		return func(v interface{}) (int, bool) {
			s, ok := v.(string)
			if !ok {
				return 0, false
			}
			switch {
			case s < lit:
				return -1, true
			case s > lit:
				return 1, true
			default:
				return 0, true
			}
		}, nil

	case arrow.BOOL:
		lit, ok := clause.Value.(bool)
		if !ok {
			return nil, soma.Schemaf("filter on bool column %q needs true or false", field.Name)
		}
		if !clause.Operator.OnValue() ||
			(clause.Operator != OperatorEqual && clause.Operator != OperatorNotEqual) {
			return nil, soma.Schemaf("bool column %q only supports == and !=", field.Name)
		}
		return func(v interface{}) (int, bool) {
			b, ok := v.(bool)
			if !ok {
				return 0, false
			}
			if b == lit {
				return 0, true
			}
			return 1, true
		}, nil

	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		// Integer literals compare exactly; a float64 detour would fold
		// identifiers above 2^53 onto their neighbors.
		switch lit := clause.Value.(type) {
		case int64:
			return func(v interface{}) (int, bool) {
				return compareIntLiteral(v, lit)
			}, nil
		case float64:
			return floatComparator(lit), nil
		default:
			return nil, soma.Schemaf("filter on numeric column %q needs a numeric literal", field.Name)
		}

	case arrow.FLOAT32, arrow.FLOAT64:
		var lit float64
		switch x := clause.Value.(type) {
		case int64:
			lit = float64(x)
		case float64:
			lit = x
		default:
			return nil, soma.Schemaf("filter on numeric column %q needs a numeric literal", field.Name)
		}
		return floatComparator(lit), nil

	default:
		return nil, soma.Schemaf("column %q of type %s is not filterable", field.Name, field.Type)
	}
}

func floatComparator(lit float64) func(interface{}) (int, bool) {
	return func(v interface{}) (int, bool) {
		f, ok := asFloat(v)
		if !ok {
			return 0, false
		}
		switch {
		case f < lit:
			return -1, true
		case f > lit:
			return 1, true
		default:
			return 0, true
		}
	}
}

// compareIntLiteral compares an integer column value against an int64
// literal without widening either side to float.
func compareIntLiteral(v interface{}, lit int64) (int, bool) {
	switch x := v.(type) {
	case int8:
		return cmpInt64(int64(x), lit), true
	case int16:
		return cmpInt64(int64(x), lit), true
	case int32:
		return cmpInt64(int64(x), lit), true
	case int64:
		return cmpInt64(x, lit), true
	case uint8:
		return cmpInt64(int64(x), lit), true
	case uint16:
		return cmpInt64(int64(x), lit), true
	case uint32:
		return cmpInt64(int64(x), lit), true
	case uint64:
		if lit < 0 {
			return 1, true
		}
		return cmpUint64(x, uint64(lit)), true
	default:
		return 0, false
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
