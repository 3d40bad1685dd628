// Package probe runs ping probes against network targets. A Pinger
// issues a single probe; a Suite runs an ordered list of probes and
// reports per-target results; Summarize aggregates results into a
// pass/fail summary as a pure function, keeping counting logic
// separate from I/O.
package probe

import "context"

// Pinger issues a single ping probe against one target host.
//
// Implementations report an unreachable target as a failed Result, not
// an error. Partial failure is the expected steady state for
// connectivity testing, so errors are reserved for problems with the
// probe mechanism itself (captured in Result.Err for diagnostics).
type Pinger interface {
	// Ping probes the target once and returns the outcome. It blocks
	// until the probe completes or ctx is cancelled.
	Ping(ctx context.Context, target string) Result
}

// Result is the outcome of a single probe.
type Result struct {
	// Target is the host that was probed.
	Target string

	// OK reports whether the target answered.
	OK bool

	// Output is the raw reply content from the underlying ping
	// mechanism. Empty on failure.
	Output string

	// Err holds the underlying failure cause when OK is false.
	// Informational only; a failed probe is not an error condition.
	Err error
}

// Summary aggregates probe results.
type Summary struct {
	Passed int
	Total  int
}

// Summarize counts successful results. Pure function over the result
// slice so it can be tested without any probing.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK {
			s.Passed++
		}
	}
	return s
}

// Percent returns the success rate as a whole percentage, 0 for an
// empty summary.
func (s Summary) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return 100 * s.Passed / s.Total
}

// AllFailed reports whether no probe succeeded.
func (s Summary) AllFailed() bool {
	return s.Passed == 0
}
