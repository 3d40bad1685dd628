package probe

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// DefaultEchoCount and DefaultPayloadBytes match the connectivity
// test's probe shape: 2 echo requests of 32 bytes each.
const (
	DefaultEchoCount    = 2
	DefaultPayloadBytes = 32
	DefaultProbeTimeout = 10 * time.Second
)

// ExecPinger probes by invoking the operating system's ping utility as
// a subprocess. Any non-zero exit or invocation error counts as a
// failed probe.
type ExecPinger struct {
	// Path is the ping executable to invoke. Defaults to "ping"
	// resolved via PATH.
	Path string

	// Count is the number of echo requests per probe.
	Count int

	// PayloadBytes is the echo payload size.
	PayloadBytes int

	// Timeout bounds a single probe. Zero means DefaultProbeTimeout.
	Timeout time.Duration

	// GOOS overrides the platform used for argument construction.
	// Empty means runtime.GOOS. Tests set this to pin behavior.
	GOOS string
}

// NewExecPinger returns an ExecPinger with the default probe shape.
func NewExecPinger() *ExecPinger {
	return &ExecPinger{
		Count:        DefaultEchoCount,
		PayloadBytes: DefaultPayloadBytes,
		Timeout:      DefaultProbeTimeout,
	}
}

// Ping runs one ping invocation against target.
func (p *ExecPinger) Ping(ctx context.Context, target string) Result {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := p.Path
	if path == "" {
		path = "ping"
	}

	cmd := exec.CommandContext(ctx, path, p.args(target)...)
	out, err := cmd.Output()
	if err != nil {
		return Result{Target: target, Err: err}
	}
	return Result{Target: target, OK: true, Output: string(out)}
}

// args builds the ping argument list for the configured platform.
// Windows ping spells count/size as -n/-l; everything else uses -c/-s.
func (p *ExecPinger) args(target string) []string {
	count := p.Count
	if count <= 0 {
		count = DefaultEchoCount
	}
	size := p.PayloadBytes
	if size <= 0 {
		size = DefaultPayloadBytes
	}

	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if goos == "windows" {
		return []string{"-n", strconv.Itoa(count), "-l", strconv.Itoa(size), target}
	}
	return []string{"-c", strconv.Itoa(count), "-s", strconv.Itoa(size), target}
}

// LookPath resolves the ping executable, honoring an explicit Path.
func (p *ExecPinger) LookPath() (string, error) {
	path := p.Path
	if path == "" {
		path = "ping"
	}
	return exec.LookPath(path)
}
