package service

import (
	"math/rand"
	"sync"
)

// RandomSource supplies the bounded nondeterminism used by the scoring
// heuristics. Implementations must be safe for concurrent use; tests inject
// a fixed-sequence source to pin scores.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewSeededRandomSource returns a RandomSource backed by a seeded generator.
// The same seed reproduces the same score sequence.
func NewSeededRandomSource(seed int64) RandomSource {
	return &lockedRandomSource{rng: rand.New(rand.NewSource(seed))}
}

// NewSystemRandomSource returns a RandomSource backed by the shared
// process-wide generator.
func NewSystemRandomSource() RandomSource {
	return systemRandomSource{}
}

type lockedRandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedRandomSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

type systemRandomSource struct{}

func (systemRandomSource) Float64() float64 {
	return rand.Float64()
}
