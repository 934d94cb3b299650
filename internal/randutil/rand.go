package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both the dice roller and the room code generator derive their PCG seeds
// here so a single --seed flag reproduces a whole server run.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewFromTime seeds from the wall clock and returns the seed used.
func NewFromTime() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

// Locked wraps a *rand.Rand so it can be shared between rooms that roll
// concurrently. rand.Rand itself is not safe for concurrent use.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked returns a Locked source around rng.
func NewLocked(rng *rand.Rand) *Locked {
	return &Locked{rng: rng}
}

// IntN returns a value in [0, n).
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
