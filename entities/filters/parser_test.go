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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparisons(t *testing.T) {
	t.Run("string equality", func(t *testing.T) {
		c, err := Parse(`tissue == "lung"`)
		require.Nil(t, err)
		assert.Equal(t, OperatorEqual, c.Operator)
		assert.Equal(t, "tissue", c.On)
		assert.Equal(t, "lung", c.Value)
	})

	t.Run("single quotes", func(t *testing.T) {
		c, err := Parse(`tissue != 'liver'`)
		require.Nil(t, err)
		assert.Equal(t, OperatorNotEqual, c.Operator)
		assert.Equal(t, "liver", c.Value)
	})

	t.Run("integer literal", func(t *testing.T) {
		c, err := Parse("n_genes >= 200")
		require.Nil(t, err)
		assert.Equal(t, OperatorGreaterThanEqual, c.Operator)
		assert.Equal(t, int64(200), c.Value)
	})

	t.Run("float literal", func(t *testing.T) {
		c, err := Parse("score < 0.5")
		require.Nil(t, err)
		assert.Equal(t, OperatorLessThan, c.Operator)
		assert.Equal(t, 0.5, c.Value)
	})

	t.Run("negative literal", func(t *testing.T) {
		c, err := Parse("delta > -3")
		require.Nil(t, err)
		assert.Equal(t, int64(-3), c.Value)
	})

	t.Run("bool literal is case-insensitive", func(t *testing.T) {
		c, err := Parse("is_primary == True")
		require.Nil(t, err)
		assert.Equal(t, true, c.Value)
	})
}

func TestParseBooleanStructure(t *testing.T) {
	t.Run("and binds tighter than or", func(t *testing.T) {
		c, err := Parse(`a == 1 or b == 2 and c == 3`)
		require.Nil(t, err)
		require.Equal(t, OperatorOr, c.Operator)
		require.Len(t, c.Operands, 2)
		assert.Equal(t, OperatorEqual, c.Operands[0].Operator)
		assert.Equal(t, OperatorAnd, c.Operands[1].Operator)
	})

	t.Run("parentheses override precedence", func(t *testing.T) {
		c, err := Parse(`(a == 1 or b == 2) and c == 3`)
		require.Nil(t, err)
		require.Equal(t, OperatorAnd, c.Operator)
		assert.Equal(t, OperatorOr, c.Operands[0].Operator)
	})

	t.Run("keywords are case-insensitive", func(t *testing.T) {
		c, err := Parse(`a == 1 AND b == 2`)
		require.Nil(t, err)
		assert.Equal(t, OperatorAnd, c.Operator)
	})
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"tissue ==",
		`== "lung"`,
		"tissue = 3",
		"(a == 1",
		`a == 1 and`,
		`a == 1 extra`,
		`a == "unterminated`,
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.NotNil(t, err, "expected a parse error for %q", expr)
		})
	}
}
