// Package generator picks which target is active for each repetition.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized target choices.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with seed, or with the current time when
// seed is zero.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// PickTarget selects a target index uniformly from [0,n).
func (g *Generator) PickTarget(n int) int {
	if n <= 1 {
		return 0
	}
	return g.rnd.Intn(n)
}

// NextTarget selects an index from [0,n) other than prev so consecutive
// repetitions always move the target. A negative prev means no previous pick.
func (g *Generator) NextTarget(n, prev int) int {
	if n <= 1 {
		return 0
	}
	if prev < 0 || prev >= n {
		return g.rnd.Intn(n)
	}
	idx := g.rnd.Intn(n - 1)
	if idx >= prev {
		idx++
	}
	return idx
}
