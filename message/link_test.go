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

	"github.com/danjacques/pixeldie/support/network"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Link", func() {
	var (
		mu       sync.Mutex
		received []Message
		now      time.Time
		link     *Link
		client   *net.UDPConn
	)

	handled := func() []Message {
		mu.Lock()
		defer mu.Unlock()
		return append([]Message(nil), received...)
	}

	send := func(msg Message) {
		var buf bytes.Buffer
		Expect(WriteMessage(msg, &buf)).To(Succeed())
		_, err := client.Write(buf.Bytes())
		Expect(err).ToNot(HaveOccurred())
	}

	recv := func() Message {
		Expect(client.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		buf := make([]byte, MaxDatagramSize)
		n, err := client.Read(buf)
		Expect(err).ToNot(HaveOccurred())

		msg, err := ReadMessage(bytes.NewReader(buf[:n]))
		Expect(err).ToNot(HaveOccurred())
		return msg
	}

	BeforeEach(func() {
		received = nil
		now = time.Unix(1000, 0)

		conn, err := network.ListenUDP4(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, 0)
		Expect(err).ToNot(HaveOccurred())

		link = &Link{
			Handler: HandlerFunc(func(msg Message) Message {
				mu.Lock()
				defer mu.Unlock()
				received = append(received, msg)

				if _, ok := msg.(*WhoAreYou); ok {
					return &IAmADie{ID: 3}
				}
				return nil
			}),
			NowFunc: func() time.Time {
				mu.Lock()
				defer mu.Unlock()
				return now
			},
		}
		link.Start(conn)

		client, err = network.DialUDP4(link.Addr().(*net.UDPAddr), 0)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(client.Close()).To(Succeed())
		Expect(link.Close()).To(Succeed())
	})

	It("replies to the sender", func() {
		Expect(link.Connected()).To(BeFalse())

		send(&WhoAreYou{})
		Expect(recv()).To(Equal(&IAmADie{ID: 3}))
		Expect(handled()).To(Equal([]Message{&WhoAreYou{}}))
		Expect(link.Connected()).To(BeTrue())
		Expect(link.Peer().String()).To(Equal(client.LocalAddr().String()))
	})

	It("sends to the connected peer until it times out", func() {
		Expect(link.Send(&PlaySound{ClipID: 1})).To(Equal(ErrNotConnected))

		send(&PlayAnim{Animation: 1})
		Eventually(handled).Should(HaveLen(1))

		Expect(link.Send(&PlaySound{ClipID: 2})).To(Succeed())
		Expect(recv()).To(Equal(&PlaySound{ClipID: 2}))

		mu.Lock()
		now = now.Add(DefaultPeerTimeout + time.Second)
		mu.Unlock()
		Expect(link.Connected()).To(BeFalse())
		Expect(link.Send(&PlaySound{ClipID: 3})).To(Equal(ErrNotConnected))
	})

	It("drops undecodable datagrams and keeps listening", func() {
		_, err := client.Write([]byte{byte(TypeTelemetry), 1, 2, 3})
		Expect(err).ToNot(HaveOccurred())
		send(&RequestState{})

		Eventually(handled).Should(Equal([]Message{&RequestState{}}))
	})

	It("reports connection changes", func() {
		c, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes := make(chan bool, 4)
		doneC := make(chan error)
		go func() {
			doneC <- link.Watch(c, time.Millisecond, func(connected bool) { changes <- connected })
		}()

		send(&WhoAreYou{})
		Eventually(changes).Should(Receive(BeTrue()))

		mu.Lock()
		now = now.Add(DefaultPeerTimeout + time.Second)
		mu.Unlock()
		Eventually(changes).Should(Receive(BeFalse()))

		cancel()
		Eventually(doneC).Should(Receive(Equal(context.Canceled)))
	})
})
