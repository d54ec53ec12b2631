package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumberGenerator_Format(t *testing.T) {
	gen := NewOrderNumberGenerator("secret")

	num := gen.Generate(42)
	require.True(t, strings.HasPrefix(num, "BZR-"), num)

	parts := strings.Split(num, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 5)
	assert.Len(t, parts[2], 4)
	assert.Equal(t, strings.ToUpper(num), num)
}

func TestOrderNumberGenerator_Unique(t *testing.T) {
	gen := NewOrderNumberGenerator("secret")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := gen.Generate(42)
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}
