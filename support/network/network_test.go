// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Addresses", func() {
	DescribeTable("ParseIP4Address",
		func(v string, expected net.IP) {
			ip, err := ParseIP4Address(v)
			if expected == nil {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(ip.Equal(expected)).To(BeTrue())
		},
		Entry("IPv4", "192.168.1.2", net.IPv4(192, 168, 1, 2)),
		Entry("IPv6", "::1", nil),
		Entry("garbage", "die", nil),
	)

	DescribeTable("ParseUDP4Address",
		func(v string, expectedIP net.IP, expectedPort int, ok bool) {
			addr, err := ParseUDP4Address(v, 6565)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(addr.Port).To(Equal(expectedPort))
			if expectedIP == nil {
				Expect(addr.IP).To(BeNil())
			} else {
				Expect(addr.IP.Equal(expectedIP)).To(BeTrue())
			}
		},
		Entry("host and port", "10.0.0.1:1234", net.IPv4(10, 0, 0, 1), 1234, true),
		Entry("host only", "10.0.0.1", net.IPv4(10, 0, 0, 1), 6565, true),
		Entry("port only", ":1234", nil, 1234, true),
		Entry("bad port", "10.0.0.1:die", nil, 0, false),
		Entry("port out of range", ":70000", nil, 0, false),
		Entry("bad host", "die:1234", nil, 0, false),
	)
})

var _ = Describe("UDP", func() {
	It("exchanges datagrams over loopback", func() {
		listener, err := ListenUDP4(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, 0)
		Expect(err).ToNot(HaveOccurred())
		defer listener.Close()

		conn, err := DialUDP4(listener.LocalAddr().(*net.UDPAddr), 0)
		Expect(err).ToNot(HaveOccurred())
		ds := UDPDatagramSender(conn)
		defer ds.Close()

		Expect(ds.SendDatagram([]byte("ohai"))).To(Succeed())

		Expect(listener.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		buf := make([]byte, 16)
		n, from, err := listener.ReadFrom(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("ohai"))

		// Reply through the listening socket.
		Expect(ReplySender(listener, from).SendDatagram([]byte("hello"))).To(Succeed())
		Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		n, err = conn.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("hello"))
	})
})

func TestNetwork(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing network")
}
