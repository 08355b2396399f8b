// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"io"
	"net"
	"sync"
)

// DatagramSender exposes an interface which sends individual datagrams.
type DatagramSender interface {
	io.Closer
	SendDatagram(b []byte) error

	// MaxDatagramSize returns the maximum allowed packet size.
	//
	// This value is advisory; the DatagramSender is not responsible for enforcing
	// this size.
	MaxDatagramSize() int
}

// UDPDatagramSender returns a DatagramSender that sends through conn.
//
// UDPDatagramSender takes ownership of conn, and will close it when Close is
// called.
func UDPDatagramSender(conn *net.UDPConn) DatagramSender {
	return &udpDatagramSender{conn}
}

type udpDatagramSender struct {
	// conn is the underlying UDP connection.
	conn *net.UDPConn
}

// SendDatagram implements DatagramSender.
func (uds *udpDatagramSender) SendDatagram(b []byte) error {
	_, err := uds.conn.Write(b)
	return err
}

func (uds *udpDatagramSender) MaxDatagramSize() int { return MaxUDPSize }
func (uds *udpDatagramSender) Close() error         { return uds.conn.Close() }

// ReplySender returns a DatagramSender that sends to addr through conn.
//
// The returned DatagramSender does not own conn; closing it does nothing.
func ReplySender(conn PacketConn, addr net.Addr) DatagramSender {
	return &replySender{conn, addr}
}

type replySender struct {
	conn PacketConn
	addr net.Addr
}

func (rs *replySender) SendDatagram(b []byte) error {
	_, err := rs.conn.WriteTo(b, rs.addr)
	return err
}

func (rs *replySender) MaxDatagramSize() int { return MaxUDPSize }
func (rs *replySender) Close() error         { return nil }

// ResilientDatagramSender is a DatagramSender that automatically reconnects
// on failure.
//
// ResilientDatagramSender is safe for concurrent use.
type ResilientDatagramSender struct {
	// Factory generates and connects a new DatagramSender. On success, the
	// ResilientDatagramSender will take ownership of the result.
	Factory func() (DatagramSender, error)

	mu sync.Mutex
	// base is the currently-connected DatagramSender, or nil if none is currently
	// connected.
	base DatagramSender
}

var _ DatagramSender = (*ResilientDatagramSender)(nil)

// MaxDatagramSize implements DatagramSender.
//
// If not connected, MaxUDPSize is returned.
func (rds *ResilientDatagramSender) MaxDatagramSize() int {
	rds.mu.Lock()
	defer rds.mu.Unlock()

	if rds.base == nil {
		return MaxUDPSize
	}
	return rds.base.MaxDatagramSize()
}

// Connect causes rds to try and open a new connection.
//
// If Connect fails, and rds already has an open connection, the open connection
// will be left in-tact. If Connect succeeds, the previous connection will be
// closed.
func (rds *ResilientDatagramSender) Connect() error {
	rds.mu.Lock()
	defer rds.mu.Unlock()
	return rds.connectLocked()
}

func (rds *ResilientDatagramSender) connectLocked() error {
	base, err := rds.Factory()
	if err != nil {
		return err
	}

	// Replace the current one, if applicable.
	_ = rds.closeLocked()
	rds.base = base
	return nil
}

// Close closes the current connection, if one is open.
//
// If no connection is open, Close will do nothing.
func (rds *ResilientDatagramSender) Close() error {
	rds.mu.Lock()
	defer rds.mu.Unlock()
	return rds.closeLocked()
}

func (rds *ResilientDatagramSender) closeLocked() error {
	if rds.base == nil {
		return nil
	}

	err := rds.base.Close()
	rds.base = nil
	return err
}

// SendDatagram calls the corresponding call on rds's underlying connection.
//
// If rds is not currently connected, rds will attempt to reconnect.
func (rds *ResilientDatagramSender) SendDatagram(b []byte) error {
	rds.mu.Lock()
	defer rds.mu.Unlock()

	if rds.base == nil {
		if err := rds.connectLocked(); err != nil {
			return err
		}
	}

	if err := rds.base.SendDatagram(b); err != nil {
		_ = rds.closeLocked()
		return err
	}
	return nil
}
