package textmatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lexia-go-api/pkg/textmatch"
)

func TestDistance(t *testing.T) {
	require.Equal(t, 0, textmatch.Distance("", ""))
	require.Equal(t, 5, textmatch.Distance("", "paris"))
	require.Equal(t, 5, textmatch.Distance("paris", ""))
	require.Equal(t, 1, textmatch.Distance("paris", "pari"))
	require.Equal(t, 3, textmatch.Distance("kitten", "sitting"))
	require.Equal(t, 1, textmatch.Distance("café", "cafe"))
}

func TestSimilarityBounds(t *testing.T) {
	require.Equal(t, 1.0, textmatch.Similarity("", ""))
	require.Equal(t, 1.0, textmatch.Similarity("answer", "answer"))
	require.Equal(t, 0.0, textmatch.Similarity("abc", "xyz"))
	require.InDelta(t, 0.8, textmatch.Similarity("paris", "pari"), 1e-9)
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"paris", "pari"},
		{"the capital", "capital"},
		{"", "word"},
		{"mitochondria", "mitochondrion"},
	}
	for _, pair := range pairs {
		require.Equal(t, textmatch.Similarity(pair[0], pair[1]), textmatch.Similarity(pair[1], pair[0]))
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "the eiffel tower", textmatch.Normalize("  The   Eiffel\tTower "))
	require.Equal(t, "", textmatch.Normalize("   "))
}
