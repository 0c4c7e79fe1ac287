package orchestrator

import "math/rand"

// newRand01 returns a [0,1) source seeded deterministically, so a Monte
// Carlo sweep run twice with the same seed samples the same windows.
func newRand01(seed int64) func() float64 {
	rng := rand.New(rand.NewSource(seed))
	return rng.Float64
}
