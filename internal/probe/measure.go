package probe

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Stats holds latency statistics from a measurement run.
type Stats struct {
	Target     string
	Sent       int
	Received   int
	LossPct    float64
	MinRTT     time.Duration
	AvgRTT     time.Duration
	MaxRTT     time.Duration
	StdDevRTT  time.Duration
	ResolvedIP string
}

// Measurer measures round-trip latency to a host using ICMP echoes.
type Measurer struct {
	// Count is the number of echoes to send.
	Count int

	// Interval is the wait between echoes.
	Interval time.Duration

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Privileged selects raw ICMP sockets instead of UDP ping.
	// Raw sockets need elevated privileges on most platforms.
	Privileged bool
}

// NewMeasurer returns a Measurer with moderate defaults: 4 echoes one
// second apart, 10 second overall timeout, unprivileged.
func NewMeasurer() *Measurer {
	return &Measurer{
		Count:    4,
		Interval: time.Second,
		Timeout:  10 * time.Second,
	}
}

// Measure pings host and returns aggregate latency statistics. Unlike
// a probe, resolution or socket failures here are real errors: the
// caller asked for numbers and there are none to give.
func (m *Measurer) Measure(ctx context.Context, host string) (Stats, error) {
	p, err := probing.NewPinger(host)
	if err != nil {
		return Stats{}, fmt.Errorf("resolving %s: %w", host, err)
	}

	p.Count = m.Count
	if p.Count <= 0 {
		p.Count = 4
	}
	if m.Interval > 0 {
		p.Interval = m.Interval
	}
	if m.Timeout > 0 {
		p.Timeout = m.Timeout
	}
	p.SetPrivileged(m.Privileged)

	if err := p.RunWithContext(ctx); err != nil {
		return Stats{}, fmt.Errorf("pinging %s: %w", host, err)
	}

	st := p.Statistics()
	return Stats{
		Target:     host,
		Sent:       st.PacketsSent,
		Received:   st.PacketsRecv,
		LossPct:    st.PacketLoss,
		MinRTT:     st.MinRtt,
		AvgRTT:     st.AvgRtt,
		MaxRTT:     st.MaxRtt,
		StdDevRTT:  st.StdDevRtt,
		ResolvedIP: st.IPAddr.String(),
	}, nil
}
