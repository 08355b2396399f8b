// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package network contains generic network constants and utilities.
package network

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// ParseIP4Address parses the string, v, into an IPv4 address. If v failed to
// parse, or if v did not parse into an IPv4 address, an error will be returned.
func ParseIP4Address(v string) (net.IP, error) {
	ip := net.ParseIP(v)
	if ip == nil {
		return nil, errors.Errorf("could not parse IP address %q", v)
	}

	ip = ip.To4()
	if ip == nil {
		return nil, errors.Errorf("unable to get IPv4 address for %q", v)
	}

	return ip, nil
}

// ParseUDP4Address parses v as an IPv4 "host:port" UDP address. If v has no
// port, defaultPort is used. An empty host means all local addresses.
func ParseUDP4Address(v string, defaultPort int) (*net.UDPAddr, error) {
	host, portStr, err := net.SplitHostPort(v)
	if err != nil {
		// No port; treat the whole value as a host.
		host, portStr = v, strconv.Itoa(defaultPort)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, errors.Errorf("invalid port in %q", v)
	}

	addr := net.UDPAddr{Port: port}
	if host != "" {
		if addr.IP, err = ParseIP4Address(host); err != nil {
			return nil, err
		}
	}
	return &addr, nil
}
