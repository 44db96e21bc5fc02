// Package embedding provides lightweight semantic fingerprints for writing
// samples. Fingerprints are 100-dimensional character-trigram hash vectors,
// cheap enough to compute on every insert and good enough to rank samples of
// prose by surface similarity.
package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// Dimensions is the fixed fingerprint dimensionality. Fingerprints are only
// comparable when produced with the same dimensionality.
const Dimensions = 100

// Fingerprint is an L2-normalized trigram-hash vector, or the all-zero vector
// for inputs shorter than one trigram. Immutable once computed.
type Fingerprint []float64

// IsZero reports whether the fingerprint is absent or all-zero.
func (f Fingerprint) IsZero() bool {
	for _, v := range f {
		if v != 0 {
			return false
		}
	}
	return true
}

// Vectorize converts text into a Fingerprint. Deterministic: the same text
// always yields the same vector. Inputs shorter than 3 runes yield the
// all-zero vector; no input is an error.
func Vectorize(text string) Fingerprint {
	vec := make(Fingerprint, Dimensions)
	if text == "" {
		return vec
	}

	runes := []rune(strings.ToLower(text))
	if len(runes) < 3 {
		return vec
	}

	for i := 0; i+3 <= len(runes); i++ {
		vec[trigramDim(string(runes[i:i+3]))]++
	}

	// L2-normalize so the dot product of two fingerprints is their cosine
	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq == 0 {
		return vec
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}

// trigramDim maps a trigram to a dimension index via a stable hash.
func trigramDim(tri string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tri))
	return int(h.Sum64() % Dimensions)
}

// Similarity computes the cosine similarity of two fingerprints. Both inputs
// are unit length by construction, so this is a plain dot product. Zero or
// absent vectors score 0.0 rather than dividing by zero.
func Similarity(a, b Fingerprint) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if a.IsZero() || b.IsZero() {
		return 0
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}
