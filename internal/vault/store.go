// Package vault stores writing samples per collection and lane, with a
// precomputed fingerprint per sample for semantic retrieval. The same store
// type backs both exemplar namespaces: the voice vault (per-author voice
// profiles) and the style bank (stylistic pattern exemplars).
package vault

import (
	"sort"
	"strings"
	"sync"

	"olivetti/internal/embedding"
	"olivetti/internal/logging"
)

// Sample is a stored writing sample. Never mutated after creation.
type Sample struct {
	Text        string
	Fingerprint embedding.Fingerprint
	WordCount   int
}

// Store is a two-level keyed collection: collection name -> lane -> ordered
// samples, oldest first. Mutations are serialized; reads may run concurrently.
type Store struct {
	mu          sync.RWMutex
	namespace   string
	collections map[string]map[Lane][]Sample
}

// NewStore creates an empty store. The namespace label only scopes log output;
// collection names are unique within a single Store.
func NewStore(namespace string) *Store {
	return &Store{
		namespace:   namespace,
		collections: make(map[string]map[Lane][]Sample),
	}
}

// Namespace returns the store's namespace label.
func (s *Store) Namespace() string { return s.namespace }

// Create initializes a new collection with all four lanes empty.
// Returns false if the name already exists; existing data is never overwritten.
func (s *Store) Create(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; exists {
		return false
	}
	s.collections[name] = emptyLanes()
	logging.VaultDebug("%s: created collection %q", s.namespace, name)
	return true
}

// AddSample appends a sample to the tail of a lane. The text is trimmed and
// rejected if empty, and unknown lanes are rejected so no fifth lane key can
// appear; the fingerprint and word count are computed here so retrieval never
// has to. Auto-creates the collection if absent.
func (s *Store) AddSample(name string, lane Lane, text string) bool {
	if !lane.Valid() {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, exists := s.collections[name]
	if !exists {
		coll = emptyLanes()
		s.collections[name] = coll
	}

	coll[lane] = append(coll[lane], Sample{
		Text:        trimmed,
		Fingerprint: embedding.Vectorize(trimmed),
		WordCount:   len(strings.Fields(trimmed)),
	})

	logging.VaultDebug("%s: added sample to %q/%s (%d words)", s.namespace, name, lane, len(strings.Fields(trimmed)))
	return true
}

// DeleteSample removes the sample at offsetFromEnd positions from the most
// recent end (0 = most recent). Returns false if the collection or lane does
// not hold enough samples.
func (s *Store) DeleteSample(name string, lane Lane, offsetFromEnd int) bool {
	if offsetFromEnd < 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, exists := s.collections[name]
	if !exists {
		return false
	}

	samples := coll[lane]
	if offsetFromEnd >= len(samples) {
		return false
	}

	idx := len(samples) - 1 - offsetFromEnd
	coll[lane] = append(samples[:idx], samples[idx+1:]...)
	return true
}

// DeleteCollection removes an entire collection and all its samples.
func (s *Store) DeleteCollection(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		return false
	}
	delete(s.collections, name)
	logging.VaultDebug("%s: deleted collection %q", s.namespace, name)
	return true
}

// Stats returns per-lane sample counts. An absent collection yields a map
// with zero for every lane, never an error.
func (s *Store) Stats(name string) map[Lane]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[Lane]int, len(Lanes()))
	for _, lane := range Lanes() {
		stats[lane] = 0
	}

	coll, exists := s.collections[name]
	if !exists {
		return stats
	}
	for _, lane := range Lanes() {
		stats[lane] = len(coll[lane])
	}
	return stats
}

// Names returns all current collection names, sorted for stable output.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Samples returns a copy of a lane's sample list in insertion order.
// Absent collections and empty lanes yield an empty slice.
func (s *Store) Samples(name string, lane Lane) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, exists := s.collections[name]
	if !exists {
		return nil
	}

	out := make([]Sample, len(coll[lane]))
	copy(out, coll[lane])
	return out
}

// Snapshot returns a deep copy of all collections, for the persistence
// adapter. Samples themselves are immutable and shared.
func (s *Store) Snapshot() map[string]map[Lane][]Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]map[Lane][]Sample, len(s.collections))
	for name, coll := range s.collections {
		lanes := make(map[Lane][]Sample, len(coll))
		for lane, samples := range coll {
			cp := make([]Sample, len(samples))
			copy(cp, samples)
			lanes[lane] = cp
		}
		snap[name] = lanes
	}
	return snap
}

// Restore replaces the store's contents with a snapshot.
func (s *Store) Restore(snap map[string]map[Lane][]Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[string]map[Lane][]Sample, len(snap))
	for name, coll := range snap {
		lanes := emptyLanes()
		for lane, samples := range coll {
			cp := make([]Sample, len(samples))
			copy(cp, samples)
			lanes[lane] = cp
		}
		s.collections[name] = lanes
	}
}

func emptyLanes() map[Lane][]Sample {
	lanes := make(map[Lane][]Sample, len(Lanes()))
	for _, lane := range Lanes() {
		lanes[lane] = nil
	}
	return lanes
}
