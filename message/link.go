// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/danjacques/pixeldie/support/bufferpool"
	"github.com/danjacques/pixeldie/support/fmtutil"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/network"

	"github.com/pkg/errors"
)

const (
	// DefaultPort is the default UDP port that a die listens on.
	DefaultPort = 6565

	// DefaultPeerTimeout is the default amount of time after the last received
	// message that a Link considers its peer connected.
	DefaultPeerTimeout = 10 * time.Second

	// MaxDatagramSize is the largest datagram that a Link reads or writes.
	MaxDatagramSize = 1 + MaxDataSize + 8
)

// ErrNotConnected is returned by Send when no peer is connected.
var ErrNotConnected = errors.New("no peer is connected")

// Handler handles a received Message, returning a reply or nil.
type Handler interface {
	Handle(msg Message) Message
}

// HandlerFunc is a Handler implemented as a function.
type HandlerFunc func(msg Message) Message

// Handle implements Handler.
func (fn HandlerFunc) Handle(msg Message) Message { return fn(msg) }

var _ Handler = (*Dispatcher)(nil)

// Link exchanges messages with a single peer over a datagram connection.
//
// The peer is whoever most recently sent the Link a message. Replies are sent
// back to the message's sender.
//
// Link's exported fields must not be changed after Start is called.
type Link struct {
	// Handler receives every decoded message. It must not be nil.
	Handler Handler

	// PacketPool, if not nil, is the packet pool to use for datagrams. Its
	// Size must be at least MaxDatagramSize.
	//
	// If nil, a local packet pool will be generated and used.
	PacketPool *bufferpool.Pool

	// PeerTimeout is the amount of time after the last received message that
	// the peer is considered connected. If zero, DefaultPeerTimeout is used.
	PeerTimeout time.Duration

	// NowFunc, if not nil, returns the current time. If nil, time.Now is used.
	NowFunc func() time.Time

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L

	logger      logging.L
	conn        network.PacketConn
	packetPool  *bufferpool.Pool
	doneC       chan struct{}
	listenDoneC chan struct{}

	// mu protects the following data.
	mu       sync.Mutex
	peer     net.Addr
	lastSeen time.Time
}

// Start begins listening for messages on conn.
//
// The Link presumes ownership over conn, and will close it when closed.
func (l *Link) Start(conn network.PacketConn) {
	switch {
	case l.conn != nil:
		panic("already started")
	case l.Handler == nil:
		panic("no Handler defined")
	}

	l.logger = logging.Must(l.Logger)
	l.conn = conn
	l.doneC = make(chan struct{})

	l.packetPool = l.PacketPool
	if l.packetPool == nil {
		l.packetPool = &bufferpool.Pool{
			Size: MaxDatagramSize,
		}
	}

	l.listenDoneC = make(chan struct{})
	go l.listenForMessages()

	l.logger.Infof("Listening for messages on %s.", conn.LocalAddr())
}

// Close closes the Link and its connection.
//
// After Close has returned, no more messages will be handled.
func (l *Link) Close() error {
	close(l.doneC)

	// Closing our connection breaks our listener goroutine out of any blocking
	// read calls.
	err := l.conn.Close()
	<-l.listenDoneC

	messageLinkConnected.Set(0)
	return err
}

// Addr returns the Link's local address.
func (l *Link) Addr() net.Addr { return l.conn.LocalAddr() }

// Peer returns the address of the connected peer, or nil if no peer is
// connected.
func (l *Link) Peer() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peerLocked()
}

// Connected returns true if a peer has sent a message within the peer
// timeout.
//
// Connected is safe for concurrent use.
func (l *Link) Connected() bool { return l.Peer() != nil }

// Watch polls the Link's connection state every interval until c is
// cancelled, calling fn whenever it changes. The Link starts out
// disconnected.
func (l *Link) Watch(c context.Context, interval time.Duration, fn func(connected bool)) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	connected := false
	for {
		select {
		case <-c.Done():
			return c.Err()
		case <-t.C:
		}

		if now := l.Connected(); now != connected {
			connected = now
			l.logger.Infof("Link connected: %v (peer %v).", connected, l.Peer())
			fn(connected)
		}
	}
}

func (l *Link) peerLocked() net.Addr {
	if l.peer == nil {
		return nil
	}

	timeout := l.PeerTimeout
	if timeout <= 0 {
		timeout = DefaultPeerTimeout
	}
	if l.now().Sub(l.lastSeen) > timeout {
		messageLinkConnected.Set(0)
		return nil
	}
	return l.peer
}

// Send sends msg to the connected peer. If no peer is connected, Send
// returns ErrNotConnected.
//
// Send is safe for concurrent use.
func (l *Link) Send(msg Message) error {
	peer := l.Peer()
	if peer == nil {
		return ErrNotConnected
	}
	return l.sendTo(network.ReplySender(l.conn, peer), msg)
}

func (l *Link) sendTo(ds network.DatagramSender, msg Message) error {
	buf := l.packetPool.GetEmpty()
	defer buf.Release()

	if err := WriteMessage(msg, buf); err != nil {
		messageSendErrors.Inc()
		return err
	}
	if err := ds.SendDatagram(buf.Bytes()); err != nil {
		messageSendErrors.Inc()
		return errors.Wrapf(err, "sending %s message", msg.Type())
	}

	messagesSent.WithLabelValues(msg.Type().String()).Inc()
	return nil
}

func (l *Link) listenForMessages() {
	defer close(l.listenDoneC)

	for {
		// If we've been closed, then we're done.
		select {
		case <-l.doneC:
			return
		default:
		}

		buf := l.packetPool.Get()
		size, addr, err := l.conn.ReadFrom(buf.Bytes())
		if err != nil {
			buf.Release()

			select {
			case <-l.doneC:
				return
			default:
				l.logger.Debugf("Failed to read datagram: %s", err)
				continue
			}
		}
		buf.Truncate(size)

		l.logger.Debugf("Received datagram from %s (%d byte(s)):\n%s",
			addr, size, fmtutil.Hex(buf.Bytes()))

		l.handleDatagram(buf, addr)
	}
}

func (l *Link) handleDatagram(buf *bufferpool.Buffer, addr net.Addr) {
	defer buf.Release()

	defer func() {
		if err := recover(); err != nil {
			l.logger.Warnf("Dropping panic in message handler: %s", err)
		}
	}()

	msg, err := ReadMessage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		messageDecodeErrors.Inc()
		l.logger.Warnf("Could not decode datagram from %s: %s", addr, err)
		return
	}
	messagesReceived.WithLabelValues(msg.Type().String()).Inc()

	l.mu.Lock()
	l.peer, l.lastSeen = addr, l.now()
	l.mu.Unlock()
	messageLinkConnected.Set(1)

	reply := l.Handler.Handle(msg)
	if reply == nil {
		return
	}
	if err := l.sendTo(network.ReplySender(l.conn, addr), reply); err != nil {
		l.logger.Warnf("Failed to reply to %s: %s", addr, err)
	}
}

func (l *Link) now() time.Time {
	if l.NowFunc != nil {
		return l.NowFunc()
	}
	return time.Now()
}
