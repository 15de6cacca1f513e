package scheduler

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler permutes candidate cells before each placement attempt. The
// search order is intentionally randomised so repeated runs can produce
// different valid schedules; injecting a seeded Shuffler pins the order.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randShuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a Shuffler backed by math/rand. A zero seed draws a
// fresh seed from the clock.
func NewShuffler(seed int64) Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randShuffler{rng: rand.New(rand.NewSource(seed))}
}

func (s *randShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// NoShuffle keeps candidates in grid order. Tests use it to make search
// outcomes fully deterministic.
type NoShuffle struct{}

// Shuffle is a no-op.
func (NoShuffle) Shuffle(int, func(i, j int)) {}
