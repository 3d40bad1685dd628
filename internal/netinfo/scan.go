package netinfo

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/netbuddy/netbuddy/internal/probe"
)

// Device is one address found during a LAN scan.
type Device struct {
	IP       net.IP
	Online   bool
	Hostname string
}

// Scanner probes every host on a subnet to find reachable devices.
// Probes run with bounded concurrency; results come back in address
// order regardless of completion order.
type Scanner struct {
	// Pinger issues the reachability probes. Scans want a short
	// timeout and a single echo, not the connectivity-test shape.
	Pinger probe.Pinger

	// Resolver supplies reverse lookups when hostnames are requested.
	Resolver Resolver

	// Concurrency caps in-flight probes. Zero means 32.
	Concurrency int

	// LookupTimeout bounds each reverse lookup. Zero means 2s.
	LookupTimeout time.Duration
}

// Scan probes every usable host address of ipnet and returns the
// reachable ones in address order. Subnets wider than /24 are clamped
// to the /24 containing ipnet's address to keep the sweep bounded.
// When withHostnames is set, each reachable device gets a reverse
// lookup; lookup failures leave Hostname empty.
func (s *Scanner) Scan(ctx context.Context, ipnet *net.IPNet, withHostnames bool) []Device {
	hosts := Hosts(ipnet)

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 32
	}

	devices := make([]Device, len(hosts))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, ip := range hosts {
		wg.Add(1)
		go func(i int, ip net.IP) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			d := Device{IP: ip}
			if r := s.Pinger.Ping(ctx, ip.String()); r.OK {
				d.Online = true
				if withHostnames {
					d.Hostname = s.reverse(ctx, ip.String())
				}
			}
			devices[i] = d
		}(i, ip)
	}
	wg.Wait()

	online := devices[:0]
	for _, d := range devices {
		if d.Online {
			online = append(online, d)
		}
	}
	return online
}

func (s *Scanner) reverse(ctx context.Context, addr string) string {
	if s.Resolver == nil {
		return ""
	}
	timeout := s.LookupTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names, err := s.Resolver.LookupAddr(ctx, addr)
	if err != nil || len(names) == 0 {
		return ""
	}
	return names[0]
}

// Hosts enumerates the usable host addresses of ipnet in order,
// excluding the network and broadcast addresses. Subnets wider than
// /24 are clamped to the /24 containing the subnet's address.
func Hosts(ipnet *net.IPNet) []net.IP {
	ip := ipnet.IP.To4()
	if ip == nil {
		return nil
	}

	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil
	}
	if ones < 24 {
		ones = 24
	}
	mask := net.CIDRMask(ones, 32)
	base := ip.Mask(mask)

	// After clamping the mask is at least /24, so the host part fits
	// in the final octet.
	count := 1 << (32 - ones)
	var hosts []net.IP
	for i := 1; i < count-1; i++ {
		next := make(net.IP, 4)
		copy(next, base)
		next[3] += byte(i)
		hosts = append(hosts, next)
	}
	return hosts
}
