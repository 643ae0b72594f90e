// Package rng provides the deterministic random stream that every stochastic step of arena
// generation draws from. A fixed seed always yields the same sequence.
package rng

const (
	zeroStateReplacement = 0x9e3779b97f4a7c15
	float53Scale         = 1.0 / (1 << 53)
)

// Random is a xorshift64 stream. It is not safe for concurrent use.
type Random struct {
	seed  int64
	state uint64
}

// New returns a stream keyed by seed.
func New(seed int64) *Random {
	state := splitmix(uint64(seed))
	if state == 0 {
		state = zeroStateReplacement
	}
	return &Random{seed: seed, state: state}
}

// Seed reports the seed the stream was created with.
func (r *Random) Seed() int64 {
	return r.seed
}

// Derive returns an independent stream for a named purpose. The parent stream is not advanced,
// so callers get the same child regardless of how much of the parent was consumed.
func (r *Random) Derive(salt uint64) *Random {
	return New(r.seed ^ int64(splitmix(salt)))
}

// Uint64 advances the stream and returns its next state.
func (r *Random) Uint64() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

// Float64 returns a value in [0,1).
func (r *Random) Float64() float64 {
	return float64(r.Uint64()>>11) * float53Scale
}

// Range returns a value in [min,max). A non-positive span returns min.
func (r *Random) Range(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.Float64()*(max-min)
}

// Intn returns a value in [0,n). Non-positive n yields 0.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint64() % uint64(n))
}

// IntRange returns a value in [min,max] inclusive.
func (r *Random) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// Shuffle performs a Fisher-Yates shuffle of n elements from the top index down.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

func splitmix(v uint64) uint64 {
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}
