// Package netinfo answers questions about this device and its local
// network: hostname, addresses, DNS lookups, and a LAN scan for
// neighboring devices.
package netinfo

import (
	"context"
	"net"
)

// Resolver is the DNS surface netinfo needs. It exists so tests can
// substitute a fake instead of the system resolver.
type Resolver interface {
	// LookupAddr performs a reverse lookup of addr, returning the
	// names that map to it.
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// systemResolver wraps the standard library resolver.
type systemResolver struct {
	r *net.Resolver
}

// SystemResolver returns a Resolver backed by the system DNS
// configuration.
func SystemResolver() Resolver {
	return &systemResolver{r: net.DefaultResolver}
}

func (s *systemResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	return s.r.LookupAddr(ctx, addr)
}
