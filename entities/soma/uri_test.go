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

package soma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	t.Run("splits scheme and rest", func(t *testing.T) {
		scheme, rest, err := ParseURI("s3://bucket/a/b")
		require.Nil(t, err)
		assert.Equal(t, "s3", scheme)
		assert.Equal(t, "bucket/a/b", rest)
	})

	t.Run("keeps the leading slash of file URIs", func(t *testing.T) {
		scheme, rest, err := ParseURI("file:///tmp/data/exp")
		require.Nil(t, err)
		assert.Equal(t, "file", scheme)
		assert.Equal(t, "/tmp/data/exp", rest)
	})

	t.Run("rejects missing scheme", func(t *testing.T) {
		_, _, err := ParseURI("/tmp/data/exp")
		assert.NotNil(t, err)
	})

	t.Run("rejects trailing slash", func(t *testing.T) {
		_, _, err := ParseURI("mem://x/")
		assert.NotNil(t, err)
	})
}

func TestValidateSuffix(t *testing.T) {
	assert.Nil(t, ValidateSuffix("obs"))
	assert.Nil(t, ValidateSuffix("ms/rna/X"))
	assert.NotNil(t, ValidateSuffix(""))
	assert.NotNil(t, ValidateSuffix("/abs"))
	assert.NotNil(t, ValidateSuffix("a//b"))
	assert.NotNil(t, ValidateSuffix("../escape"))
	assert.NotNil(t, ValidateSuffix("mem://other"))
}

func TestRelativeOf(t *testing.T) {
	t.Run("child under parent", func(t *testing.T) {
		suffix, ok := RelativeOf("mem://exp", "mem://exp/obs")
		require.True(t, ok)
		assert.Equal(t, "obs", suffix)
	})

	t.Run("deep child", func(t *testing.T) {
		suffix, ok := RelativeOf("mem://exp", "mem://exp/ms/rna")
		require.True(t, ok)
		assert.Equal(t, "ms/rna", suffix)
	})

	t.Run("sibling is not relative", func(t *testing.T) {
		_, ok := RelativeOf("mem://exp", "mem://other/obs")
		assert.False(t, ok)
	})

	t.Run("prefix must fall on a segment boundary", func(t *testing.T) {
		_, ok := RelativeOf("mem://exp", "mem://experiment")
		assert.False(t, ok)
	})
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "raw_counts", SanitizeKey("raw counts"))
	assert.Equal(t, "X", SanitizeKey("X"))
	assert.Equal(t, "a_b", SanitizeKey("a/b"))
	assert.Equal(t, "_", SanitizeKey(""))
}
