// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

const (
	// MaxUDPSize is the largest UDP package size.
	MaxUDPSize = 65507
)

// PacketConn is the subset of *net.UDPConn used by datagram listeners. It
// exists for mocking.
type PacketConn interface {
	io.Closer
	LocalAddr() net.Addr
	ReadFrom(b []byte) (int, net.Addr, error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	SetReadDeadline(t time.Time) error
}

var _ PacketConn = (*net.UDPConn)(nil)

// ListenUDP4 creates a new listening net.UDPConn bound to addr.
//
// If bufferSize is >0, it is set as the connection's read buffer size.
//
// If successful, the caller is responsible for closing the connection.
func ListenUDP4(addr *net.UDPAddr, bufferSize int) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	if bufferSize > 0 {
		if err := conn.SetReadBuffer(bufferSize); err != nil {
			_ = conn.Close()
			return nil, errors.Wrapf(err, "failed to set read buffer size to %d", bufferSize)
		}
	}

	return conn, nil
}

// DialUDP4 creates a UDP connection to addr.
//
// If bufferSize is >0, it is set as the connection's write buffer size.
//
// If successful, the caller is responsible for closing the connection.
func DialUDP4(addr *net.UDPAddr, bufferSize int) (*net.UDPConn, error) {
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	if bufferSize > 0 {
		if err := conn.SetWriteBuffer(bufferSize); err != nil {
			_ = conn.Close()
			return nil, errors.Wrapf(err, "failed to set write buffer size to %d", bufferSize)
		}
	}

	return conn, nil
}
