package main

import (
	"log/slog"
	"net"
)

// interfaceAddrs lists the IP addresses of all local interfaces.
func interfaceAddrs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	ips := []string{}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			switch v := addr.(type) {
			case *net.IPNet:
				ips = append(ips, v.IP.String())
			case *net.IPAddr:
				ips = append(ips, v.IP.String())
			}
		}
	}
	return ips, nil
}

// logInterfaceAddrs tells the operator which addresses the form may be
// reachable on. Failure to enumerate is not fatal.
func logInterfaceAddrs(logger *slog.Logger) {
	ips, err := interfaceAddrs()
	if err != nil {
		logger.Warn("Failed to enumerate IP addresses", "err", err)
		return
	}
	logger.Info("Server has IP addresses", "count", len(ips), "addresses", ips)
}
