// internal/grid/rng.go
//
// Seeded sine stream used by the generator.
package grid

import "math"

// sineRand is the seeded stream used for grid draws: s = sin(s)*10000 and
// the fractional part is the next value in [0,1). It is weak on purpose;
// the only contract is that one seed always yields one sequence here.
type sineRand struct {
	s float64
}

func newSineRand(seed int64) *sineRand { return &sineRand{s: float64(seed)} }

// Float64 returns the next value in [0,1).
func (r *sineRand) Float64() float64 {
	r.s = math.Sin(r.s) * 10000
	f := r.s - math.Floor(r.s)
	if f >= 1 || f < 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

// Intn returns an index in [0,n) scaled from Float64.
func (r *sineRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(r.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}
