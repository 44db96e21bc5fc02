// Package retrieval ranks stored writing samples against a query text.
// Two modes: plain top-k within a single lane (style bank), and mixed-lane
// retrieval that lets a sparse lane borrow context from structurally adjacent
// lanes (voice vault).
package retrieval

import (
	"sort"

	"olivetti/internal/embedding"
	"olivetti/internal/logging"
	"olivetti/internal/vault"
)

const (
	// DefaultTopK is the shortlist size for single-lane retrieval.
	DefaultTopK = 2

	// MixedLimit is the shortlist size for mixed-lane retrieval.
	MixedLimit = 3
)

// Mixed-lane weights. Fixed rather than configurable: retrieval stays
// predictable, and a strong match in a secondary lane can still outrank a
// weak match in the primary lane.
const (
	weightPrimary     = 0.60
	weightNarration   = 0.20
	weightInteriority = 0.10
	weightOther       = 0.05
)

// ScoredExemplar is a retrieved sample with its (possibly lane-weighted)
// similarity score.
type ScoredExemplar struct {
	Text  string
	Lane  vault.Lane
	Score float64
}

// Texts extracts the exemplar texts from a ranked shortlist.
func Texts(scored []ScoredExemplar) []string {
	if len(scored) == 0 {
		return nil
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}

// TopK scores every sample in collection[lane] against the query and returns
// the k best, highest similarity first. Ties keep insertion order. An absent
// collection or empty lane yields an empty result, never an error.
func TopK(store *vault.Store, collection string, lane vault.Lane, query string, k int) []ScoredExemplar {
	timer := logging.StartTimer(logging.CategoryRetrieval, "TopK")
	defer timer.Stop()

	if k <= 0 {
		k = DefaultTopK
	}

	samples := store.Samples(collection, lane)
	if len(samples) == 0 {
		return nil
	}

	queryVec := embedding.Vectorize(query)

	scored := make([]ScoredExemplar, 0, len(samples))
	for _, sample := range samples {
		scored = append(scored, ScoredExemplar{
			Text:  sample.Text,
			Lane:  lane,
			Score: embedding.Similarity(queryVec, sample.Fingerprint),
		})
	}

	sortByScore(scored)
	if len(scored) > k {
		scored = scored[:k]
	}

	logging.RetrievalDebug("TopK: %s/%s scored %d samples, returning %d", collection, lane, len(samples), len(scored))
	return scored
}

// Mixed pools weighted candidates from several lanes and returns the top 3.
// The target lane dominates at 0.60; Narration (the backbone voice) and
// Interiority (character depth) contribute at 0.20 and 0.10; remaining lanes
// at 0.05 each. A lane with few or no samples borrows context instead of
// returning nothing.
func Mixed(store *vault.Store, collection string, target vault.Lane, query string) []ScoredExemplar {
	timer := logging.StartTimer(logging.CategoryRetrieval, "Mixed")
	defer timer.Stop()

	queryVec := embedding.Vectorize(query)

	var pooled []ScoredExemplar
	for _, lane := range Lanes(target) {
		weight := laneWeight(target, lane)
		for _, sample := range store.Samples(collection, lane) {
			pooled = append(pooled, ScoredExemplar{
				Text:  sample.Text,
				Lane:  lane,
				Score: embedding.Similarity(queryVec, sample.Fingerprint) * weight,
			})
		}
	}

	if len(pooled) == 0 {
		return nil
	}

	sortByScore(pooled)
	if len(pooled) > MixedLimit {
		pooled = pooled[:MixedLimit]
	}

	logging.RetrievalDebug("Mixed: %s target=%s returning %d exemplars", collection, target, len(pooled))
	return pooled
}

// Lanes returns the lanes consulted by mixed retrieval for a target lane:
// the target first, then every other lane once.
func Lanes(target vault.Lane) []vault.Lane {
	out := []vault.Lane{target}
	for _, lane := range vault.Lanes() {
		if lane != target {
			out = append(out, lane)
		}
	}
	return out
}

// laneWeight returns the mixed-retrieval weight for samples drawn from lane
// when retrieving for target.
func laneWeight(target, lane vault.Lane) float64 {
	switch {
	case lane == target:
		return weightPrimary
	case lane == vault.LaneNarration:
		return weightNarration
	case lane == vault.LaneInteriority:
		return weightInteriority
	default:
		return weightOther
	}
}

// sortByScore sorts descending by score. Stable, so equal scores preserve
// insertion order for reproducible retrieval.
func sortByScore(scored []ScoredExemplar) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}
