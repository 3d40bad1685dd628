// Package session implements the NetBuddy session facade: an explicit
// handle whose lifecycle gates every diagnostic operation. A Session
// starts Inactive, becomes Active through Start (after a platform and
// command capability check), and returns to Inactive through Quit.
// Data-producing operations require the Active state and never change
// it.
package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/netbuddy/netbuddy/internal/config"
	"github.com/netbuddy/netbuddy/internal/netinfo"
	"github.com/netbuddy/netbuddy/internal/probe"
	"github.com/netbuddy/netbuddy/internal/transfer"
)

// Measurer produces latency statistics for a host.
type Measurer interface {
	Measure(ctx context.Context, host string) (probe.Stats, error)
}

// Sender submits data to a URL.
type Sender interface {
	Send(ctx context.Context, data []byte, url string) (transfer.Response, error)
}

// Scanner sweeps a subnet for reachable devices.
type Scanner interface {
	Scan(ctx context.Context, ipnet *net.IPNet, withHostnames bool) []netinfo.Device
}

// Session is the diagnostics facade. Construct with New, activate with
// Start, release with Quit. Methods are safe for concurrent use; the
// design intent remains one session per process, driven from one
// place.
type Session struct {
	mu     sync.Mutex
	active bool

	cfg      *config.Config
	pinger   probe.Pinger
	measurer Measurer
	sender   Sender
	scanner  Scanner
	resolver netinfo.Resolver
	detect   func() Capability

	hostname    func() (string, error)
	primaryIPv4 func() (net.IP, *net.IPNet, error)

	out io.Writer
}

// New returns an inactive Session wired to the real environment:
// OS ping probes shaped by cfg, pro-bing measurement, HTTP transfer,
// and the system resolver.
func New(cfg *config.Config) *Session {
	execPinger := &probe.ExecPinger{
		Count:        cfg.Probe.Count,
		PayloadBytes: cfg.Probe.PayloadBytes,
		Timeout:      cfg.Probe.Timeout.Std(),
	}
	resolver := netinfo.SystemResolver()

	return &Session{
		cfg:    cfg,
		pinger: execPinger,
		measurer: &probe.Measurer{
			Count:      cfg.Measure.Count,
			Interval:   cfg.Measure.Interval.Std(),
			Timeout:    cfg.Measure.Timeout.Std(),
			Privileged: cfg.Measure.Privileged,
		},
		sender: transfer.NewClient(),
		scanner: &netinfo.Scanner{
			// Scans want one short echo per host, not the
			// connectivity-test shape.
			Pinger: &probe.ExecPinger{
				Count:        1,
				PayloadBytes: cfg.Probe.PayloadBytes,
				Timeout:      cfg.Scan.Timeout.Std(),
			},
			Resolver:    resolver,
			Concurrency: cfg.Scan.Concurrency,
		},
		resolver:    resolver,
		detect:      DetectCapability,
		hostname:    netinfo.LocalHostname,
		primaryIPv4: netinfo.PrimaryIPv4,
		out:         os.Stdout,
	}
}

// SetOutput redirects console narration. Pass io.Discard for silent
// library use; the default is os.Stdout.
func (s *Session) SetOutput(w io.Writer) { s.out = w }

// SetPinger replaces the probe pinger. Tests inject a Synthetic.
func (s *Session) SetPinger(p probe.Pinger) { s.pinger = p }

// SetMeasurer replaces the latency measurer.
func (s *Session) SetMeasurer(m Measurer) { s.measurer = m }

// SetSender replaces the transfer client.
func (s *Session) SetSender(snd Sender) { s.sender = snd }

// SetScanner replaces the subnet scanner.
func (s *Session) SetScanner(sc Scanner) { s.scanner = sc }

// SetResolver replaces the DNS resolver.
func (s *Session) SetResolver(r netinfo.Resolver) { s.resolver = r }

// SetCapabilityProbe replaces the start-time environment check.
func (s *Session) SetCapabilityProbe(f func() Capability) { s.detect = f }

// SetHostInfo replaces the local hostname and address sources.
func (s *Session) SetHostInfo(hostname func() (string, error), primary func() (net.IP, *net.IPNet, error)) {
	s.hostname = hostname
	s.primaryIPv4 = primary
}

// Active reports whether the session is started.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start activates the session after checking the platform and the
// ping command. Calling Start on an active session is a no-op beyond a
// printed notice.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.printf("A session is already active. To quit, use Quit.\n")
		return nil
	}

	s.printf("Session starting...\n")
	s.printf("Checking platform...\n")
	c := s.detect()
	if !c.Supported {
		return fmt.Errorf("platform %q: %w", c.Platform, ErrPlatformUnsupported)
	}

	s.printf("Looking for required commands...\n")
	if c.PingPath == "" {
		return fmt.Errorf("ping not found in PATH: %w", ErrMissingCommand)
	}
	if !c.CommandOK {
		return fmt.Errorf("%s produced no output: %w", c.PingPath, ErrMissingCommand)
	}

	s.active = true
	s.printf("Session started. Run Help for options.\n")
	return nil
}

// Quit deactivates the session unconditionally.
func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.printf("Session ended.\n")
}

// ensureActive gates an operation on the Active state. Called before
// any network or process I/O.
func (s *Session) ensureActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNotStarted
	}
	return nil
}

// TestConnection probes every configured target in order and reports a
// pass/fail line per target plus a final summary. Individual probe
// failures are tallied, never propagated: partial failure is the
// expected steady state. A summary with Passed == 0 means the device
// looks offline.
func (s *Session) TestConnection(ctx context.Context) (probe.Summary, error) {
	if err := s.ensureActive(); err != nil {
		return probe.Summary{}, err
	}

	suite := probe.NewSuite(s.pinger, s.cfg.Targets)
	s.printf("Running %d tests:\n", len(suite.Targets()))

	results := suite.Run(ctx, func(i int, r probe.Result) {
		if r.OK {
			s.printf("-- Test %d passed.\t(%s)\n", i, r.Target)
		} else {
			s.printf("-- Test %d failed.\t(%s)\n", i, r.Target)
		}
	})

	summary := probe.Summarize(results)
	s.printf("%d/%d tests passed (%d%%)\n", summary.Passed, summary.Total, summary.Percent())
	return summary, nil
}

// Test is an alias for TestConnection.
func (s *Session) Test(ctx context.Context) (probe.Summary, error) {
	return s.TestConnection(ctx)
}

// Ping probes a single address. An unreachable host is a failed
// Result, not an error; only gating problems error.
func (s *Session) Ping(ctx context.Context, address string) (probe.Result, error) {
	if err := s.ensureActive(); err != nil {
		return probe.Result{}, err
	}

	r := s.pinger.Ping(ctx, address)
	if r.OK {
		s.printf("%s", r.Output)
	} else {
		s.printf("Ping to %s failed.\n", address)
	}
	return r, nil
}

// MeasurePing measures round-trip latency to address. An empty address
// measures against the first configured test target.
func (s *Session) MeasurePing(ctx context.Context, address string) (probe.Stats, error) {
	if err := s.ensureActive(); err != nil {
		return probe.Stats{}, err
	}

	if address == "" {
		targets := s.cfg.Targets
		if len(targets) == 0 {
			targets = probe.DefaultTargets
		}
		address = targets[0]
	}

	s.printf("Measuring ping to %s...\n", address)
	stats, err := s.measurer.Measure(ctx, address)
	if err != nil {
		s.printf("Measurement failed: %v\n", err)
		return probe.Stats{}, err
	}

	s.printf("%d sent, %d received, %.0f%% loss\n", stats.Sent, stats.Received, stats.LossPct)
	s.printf("round-trip min/avg/max = %v/%v/%v\n", stats.MinRTT, stats.AvgRTT, stats.MaxRTT)
	return stats, nil
}

// Measure is an alias for MeasurePing.
func (s *Session) Measure(ctx context.Context, address string) (probe.Stats, error) {
	return s.MeasurePing(ctx, address)
}

// Send submits data to url over HTTP and reports the server's answer.
func (s *Session) Send(ctx context.Context, data []byte, url string) (transfer.Response, error) {
	if err := s.ensureActive(); err != nil {
		return transfer.Response{}, err
	}

	s.printf("Sending %d bytes to %s...\n", len(data), url)
	resp, err := s.sender.Send(ctx, data, url)
	if err != nil {
		s.printf("Send failed: %v\n", err)
		return transfer.Response{}, err
	}
	s.printf("Server answered %d (%d byte response)\n", resp.StatusCode, len(resp.Body))
	return resp, nil
}

// MyIP returns this device's primary non-loopback IPv4 address.
func (s *Session) MyIP() (net.IP, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}

	ip, _, err := s.primaryIPv4()
	if err != nil {
		return nil, err
	}
	s.printf("%s\n", ip)
	return ip, nil
}

// MyHostname returns this device's hostname.
func (s *Session) MyHostname() (string, error) {
	if err := s.ensureActive(); err != nil {
		return "", err
	}

	name, err := s.hostname()
	if err != nil {
		return "", err
	}
	s.printf("%s\n", name)
	return name, nil
}

// Hostname reverse-resolves address to its hostnames.
func (s *Session) Hostname(ctx context.Context, address string) ([]string, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}

	names, err := s.resolver.LookupAddr(ctx, address)
	if err != nil {
		s.printf("No hostname found for %s.\n", address)
		return nil, err
	}
	for _, n := range names {
		s.printf("%s\n", n)
	}
	return names, nil
}

// IPs sweeps the local subnet and returns the devices that answered.
func (s *Session) IPs(ctx context.Context) ([]netinfo.Device, error) {
	return s.scanSubnet(ctx, false)
}

// Hostnames sweeps the local subnet and reverse-resolves each
// reachable device.
func (s *Session) Hostnames(ctx context.Context) ([]netinfo.Device, error) {
	return s.scanSubnet(ctx, true)
}

func (s *Session) scanSubnet(ctx context.Context, withHostnames bool) ([]netinfo.Device, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}

	_, ipnet, err := s.primaryIPv4()
	if err != nil {
		return nil, err
	}

	s.printf("Scanning %s...\n", ipnet)
	devices := s.scanner.Scan(ctx, ipnet, withHostnames)
	for _, d := range devices {
		if withHostnames && d.Hostname != "" {
			s.printf("%s\t%s\n", d.IP, d.Hostname)
		} else {
			s.printf("%s\n", d.IP)
		}
	}
	s.printf("%d device(s) found.\n", len(devices))
	return devices, nil
}

func (s *Session) printf(format string, args ...any) {
	if s.out == nil {
		return
	}
	fmt.Fprintf(s.out, format, args...)
}
