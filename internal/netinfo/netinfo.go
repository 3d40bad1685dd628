package netinfo

import (
	"errors"
	"fmt"
	"net"

	gopshost "github.com/shirou/gopsutil/v3/host"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoAddress is returned when no usable non-loopback IPv4 address is
// configured on any interface that is up.
var ErrNoAddress = errors.New("no non-loopback IPv4 address found")

// LocalHostname returns this device's hostname.
func LocalHostname() (string, error) {
	info, err := gopshost.Info()
	if err != nil {
		return "", fmt.Errorf("reading host info: %w", err)
	}
	return info.Hostname, nil
}

// PrimaryIPv4 returns the first non-loopback IPv4 address and its
// network, scanning interfaces in order. This is "my IP" for a device
// with a typical single-homed setup.
func PrimaryIPv4() (net.IP, *net.IPNet, error) {
	ifaces, err := gopsnet.Interfaces()
	if err != nil {
		return nil, nil, fmt.Errorf("listing interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if !ifaceUsable(iface) {
			continue
		}
		for _, a := range iface.Addrs {
			ip, ipnet, err := net.ParseCIDR(a.Addr)
			if err != nil {
				continue
			}
			if v4 := ip.To4(); v4 != nil {
				ipnet.IP = v4
				return v4, ipnet, nil
			}
		}
	}
	return nil, nil, ErrNoAddress
}

// ifaceUsable filters to interfaces that are up and not loopback.
// gopsutil reports flags as strings.
func ifaceUsable(iface gopsnet.InterfaceStat) bool {
	up, loopback := false, false
	for _, f := range iface.Flags {
		switch f {
		case "up":
			up = true
		case "loopback":
			loopback = true
		}
	}
	return up && !loopback
}
