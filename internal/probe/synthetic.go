package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// Synthetic is a Pinger that fabricates results without any network or
// process I/O. Used by watch --mock and throughout the tests.
type Synthetic struct {
	mu sync.Mutex

	// FailRate is the probability in [0,1] that a probe fails.
	FailRate float64

	// Fixed maps targets to forced outcomes. Targets present in the
	// map bypass FailRate entirely.
	Fixed map[string]bool

	// rng is seeded lazily; tests may leave outcomes fully Fixed for
	// determinism.
	rng *rand.Rand

	calls []string
}

var errSyntheticUnreachable = errors.New("synthetic: target unreachable")

// Ping fabricates a probe outcome for target.
func (s *Synthetic) Ping(_ context.Context, target string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, target)

	ok, forced := s.Fixed[target]
	if !forced {
		if s.rng == nil {
			s.rng = rand.New(rand.NewSource(rand.Int63()))
		}
		ok = s.rng.Float64() >= s.FailRate
	}

	if !ok {
		return Result{Target: target, Err: errSyntheticUnreachable}
	}
	return Result{
		Target: target,
		OK:     true,
		Output: fmt.Sprintf("synthetic reply from %s", target),
	}
}

// Calls returns the targets probed so far, in order.
func (s *Synthetic) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
