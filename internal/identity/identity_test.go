package identity

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIDShape(t *testing.T) {
	g := NewGenerator(16, 2, "jpg")

	id, paths, err := g.Generate()
	require.NoError(t, err)

	assert.Len(t, id, 32)
	for _, c := range id {
		assert.Contains(t, "0123456789abcdef", string(c))
	}

	prefix := id[:2]
	assert.Equal(t, fmt.Sprintf("%s/%s.jpg", prefix, id), paths.Origin)
	assert.Equal(t, fmt.Sprintf("%s/%s_small.jpg", prefix, id), paths.Small)
	assert.Equal(t, fmt.Sprintf("%s/%s_medium.jpg", prefix, id), paths.Medium)
	assert.Equal(t, fmt.Sprintf("%s/%s_large.jpg", prefix, id), paths.Large)

	// all four paths share the shard directory
	for _, p := range paths.All() {
		assert.True(t, strings.HasPrefix(p, prefix+"/"))
	}
}

func TestGenerateIsUnique(t *testing.T) {
	g := NewGenerator(16, 2, "jpg")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, _, err := g.Generate()
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
