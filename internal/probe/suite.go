package probe

import "context"

// DefaultTargets is the fixed ordered target list for the connectivity
// test. Well-known hosts chosen for availability, not endorsement.
var DefaultTargets = []string{
	"www.google.com",
	"twitter.com",
	"www.python.org",
	"github.com",
}

// Suite runs probes against an ordered target list. Probes run
// sequentially and a single failure never aborts the remaining
// probes.
type Suite struct {
	pinger  Pinger
	targets []string
}

// NewSuite builds a suite over the given targets. An empty target list
// falls back to DefaultTargets.
func NewSuite(pinger Pinger, targets []string) *Suite {
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	return &Suite{pinger: pinger, targets: targets}
}

// Targets returns the suite's target list in probe order.
func (s *Suite) Targets() []string {
	return s.targets
}

// Run probes every target in order and returns one Result per target.
// The observe callback, if non-nil, is invoked after each probe with
// its 1-based index and result, preserving per-target reporting order
// for callers that narrate progress.
func (s *Suite) Run(ctx context.Context, observe func(i int, r Result)) []Result {
	results := make([]Result, 0, len(s.targets))
	for i, target := range s.targets {
		r := s.pinger.Ping(ctx, target)
		results = append(results, r)
		if observe != nil {
			observe(i+1, r)
		}
	}
	return results
}
