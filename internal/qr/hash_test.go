package qr

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateHash_Format(t *testing.T) {
	h, err := GenerateHash("SEMNASTI2025-042")
	require.NoError(t, err)
	assert.Regexp(t, hexHash, h)
}

func TestGenerateHash_DistinctPerIssuance(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		h, err := GenerateHash("SEMNASTI2025-001")
		require.NoError(t, err)
		assert.False(t, seen[h], "hash repeated within 200 issuances")
		seen[h] = true
	}
}

func TestGenerateHash_DistinctAcrossIDs(t *testing.T) {
	a, err := GenerateHash("SEMNASTI2025-001")
	require.NoError(t, err)
	b, err := GenerateHash("SEMNASTI2025-002")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
