// Package rng provides the single seeded random-number source every
// sampler embeds, so "two samplers built from the same seed behave
// identically" is a property of one well-tested type.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mathrand "math/rand"
)

// Randomizer wraps a seeded *math/rand.Rand with the small surface the
// samplers need: coin flips, bounded integers, and sampling without
// replacement (weighted or uniform).
type Randomizer struct {
	r *mathrand.Rand
}

// New builds a Randomizer seeded from the given value. The same seed
// always produces the same sequence of outputs from the same sequence
// of calls.
func New(seed int64) *Randomizer {
	return &Randomizer{r: mathrand.New(mathrand.NewSource(seed))}
}

// CreateEntropy returns a seed sourced from the OS CSPRNG, for callers
// that want a fresh, non-reproducible seed (e.g. a default
// RandomSqlGenerator.Seed).
func CreateEntropy() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		// crypto/rand is not expected to fail on any supported platform;
		// fall back to reading raw bytes from it rather than panicking.
		var buf [8]byte
		_, _ = rand.Read(buf[:])
		return int64(binary.BigEndian.Uint64(buf[:]) & (1<<62 - 1))
	}
	return n.Int64()
}

// Flip returns true with probability p (clamped to [0, 1]).
func (rnd *Randomizer) Flip(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rnd.r.Float64() < p
}

// RandInt returns an integer in [lo, hi), or [lo, hi] if inclusive is
// true. Panics if the resulting range is empty, matching the spec's
// "non-positive RNG ranges are configuration errors" taxonomy (callers
// are expected to validate bounds before calling, same as the
// constructors in internal/sqlgen/sampler do).
func (rnd *Randomizer) RandInt(lo, hi int, inclusive bool) int {
	span := hi - lo
	if inclusive {
		span++
	}
	if span <= 0 {
		panic("rng: empty range passed to RandInt")
	}
	return lo + rnd.r.Intn(span)
}

// ChooseOne returns a uniformly random element of population. Panics on
// an empty population.
func ChooseOne[T any](rnd *Randomizer, population []T) T {
	if len(population) == 0 {
		panic("rng: ChooseOne called with empty population")
	}
	return population[rnd.r.Intn(len(population))]
}

// Choose samples size elements from population without replacement,
// uniformly. size must be <= len(population).
func Choose[T any](rnd *Randomizer, population []T, size int) []T {
	return ChooseWeighted(rnd, population, nil, size)
}

// ChooseWeighted samples size elements from population without
// replacement, proportional to weights (nil means uniform). Uses an
// efficient-enough repeated-reweighting scheme: at each step, pick index
// i with probability weights[i] / sum(remaining weights), then remove it.
func ChooseWeighted[T any](rnd *Randomizer, population []T, weights []float64, size int) []T {
	if size > len(population) {
		panic("rng: sample size exceeds population size")
	}
	if size <= 0 {
		return nil
	}

	idx := make([]int, len(population))
	w := make([]float64, len(population))
	for i := range population {
		idx[i] = i
		if weights == nil {
			w[i] = 1
		} else {
			w[i] = weights[i]
		}
	}

	out := make([]T, 0, size)
	for len(out) < size {
		total := 0.0
		for _, x := range w {
			total += x
		}
		target := rnd.r.Float64() * total
		cum := 0.0
		chosen := len(w) - 1
		for i, x := range w {
			cum += x
			if target < cum {
				chosen = i
				break
			}
		}
		out = append(out, population[idx[chosen]])
		idx = append(idx[:chosen], idx[chosen+1:]...)
		w = append(w[:chosen], w[chosen+1:]...)
	}
	return out
}

// Shuffle permutes s in place using the Randomizer's source.
func Shuffle[T any](rnd *Randomizer, s []T) {
	rnd.r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
