package artnet

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// newBroadcastSocket opens a UDP/IPv4 socket with SO_BROADCAST set, so
// sends to a broadcast address like 2.255.255.255 succeed instead of
// failing with EACCES (spec.md §4.7 "Owns one UDP/IPv4 datagram socket
// bound with SO_BROADCAST").
func newBroadcastSocket() (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := lc.ListenPacket(context.Background(), "udp4", ":0")
	if err != nil {
		return nil, err
	}
	return conn.(*net.UDPConn), nil
}
