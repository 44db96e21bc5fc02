package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorize(t *testing.T) {
	t.Run("fixed dimensionality regardless of input length", func(t *testing.T) {
		for _, text := range []string{"", "ab", "abc", "the rain in spain stays mainly on the plain"} {
			assert.Len(t, Vectorize(text), Dimensions)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Vectorize("She walked into the room without knocking.")
		b := Vectorize("She walked into the room without knocking.")
		assert.Equal(t, a, b)
	})

	t.Run("empty string yields zero vector", func(t *testing.T) {
		assert.True(t, Vectorize("").IsZero())
	})

	t.Run("input shorter than a trigram yields zero vector", func(t *testing.T) {
		assert.True(t, Vectorize("ab").IsZero())
	})

	t.Run("non-empty input is L2-normalized", func(t *testing.T) {
		vec := Vectorize("The storm broke over the harbor just after midnight.")
		require.False(t, vec.IsZero())

		var sumSq float64
		for _, v := range vec {
			sumSq += v * v
		}
		assert.InDelta(t, 1.0, sumSq, 1e-9)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, Vectorize("HELLO WORLD"), Vectorize("hello world"))
	})

	t.Run("multibyte runes do not panic", func(t *testing.T) {
		vec := Vectorize("café noir, très élégant")
		assert.Len(t, vec, Dimensions)
		assert.False(t, vec.IsZero())
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("identical text scores one", func(t *testing.T) {
		vec := Vectorize("He never said why he left.")
		assert.InDelta(t, 1.0, Similarity(vec, vec), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Vectorize("dialogue between two old friends")
		b := Vectorize("a sudden burst of action in the alley")
		assert.Equal(t, Similarity(a, b), Similarity(b, a))
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity(Vectorize(""), Vectorize("anything at all")))
	})

	t.Run("nil fingerprints score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity(nil, Vectorize("anything")))
		assert.Equal(t, 0.0, Similarity(nil, nil))
	})

	t.Run("related text scores higher than unrelated", func(t *testing.T) {
		query := Vectorize("the detective lit a cigarette and stared at the rain")
		near := Vectorize("the detective stared out at the rain, cigarette burning")
		far := Vectorize("quarterly earnings exceeded analyst expectations this fiscal year")

		assert.Greater(t, Similarity(query, near), Similarity(query, far))
	})

	t.Run("scores stay within unit range", func(t *testing.T) {
		a := Vectorize("one two three four five")
		b := Vectorize("six seven eight nine ten")
		s := Similarity(a, b)
		assert.True(t, s >= -1 && s <= 1, "similarity %f out of range", s)
		assert.False(t, math.IsNaN(s))
	})
}
