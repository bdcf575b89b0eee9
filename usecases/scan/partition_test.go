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

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/somadb/entities/soma"
)

func TestPartition(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		lo, hi, err := Partition(10, soma.IOfN{I: 0, N: 2})
		require.Nil(t, err)
		assert.Equal(t, int64(0), lo)
		assert.Equal(t, int64(5), hi)

		lo, hi, err = Partition(10, soma.IOfN{I: 1, N: 2})
		require.Nil(t, err)
		assert.Equal(t, int64(5), lo)
		assert.Equal(t, int64(10), hi)
	})

	t.Run("remainder goes to the leading partitions", func(t *testing.T) {
		sizes := []int64{}
		for i := 0; i < 3; i++ {
			lo, hi, err := Partition(10, soma.IOfN{I: i, N: 3})
			require.Nil(t, err)
			sizes = append(sizes, hi-lo)
		}
		assert.Equal(t, []int64{4, 3, 3}, sizes)
	})

	t.Run("partitions cover the range without overlap", func(t *testing.T) {
		var next int64
		for i := 0; i < 7; i++ {
			lo, hi, err := Partition(23, soma.IOfN{I: i, N: 7})
			require.Nil(t, err)
			assert.Equal(t, next, lo)
			assert.LessOrEqual(t, lo, hi)
			next = hi
		}
		assert.Equal(t, int64(23), next)
	})

	t.Run("more partitions than rows", func(t *testing.T) {
		var total int64
		for i := 0; i < 5; i++ {
			lo, hi, err := Partition(2, soma.IOfN{I: i, N: 5})
			require.Nil(t, err)
			total += hi - lo
		}
		assert.Equal(t, int64(2), total)
	})

	t.Run("empty input", func(t *testing.T) {
		lo, hi, err := Partition(0, soma.IOfN{I: 0, N: 4})
		require.Nil(t, err)
		assert.Equal(t, lo, hi)
	})

	t.Run("invalid partition", func(t *testing.T) {
		_, _, err := Partition(10, soma.IOfN{I: 2, N: 2})
		assert.NotNil(t, err)
		_, _, err = Partition(10, soma.IOfN{I: 0, N: 0})
		assert.NotNil(t, err)
	})
}
