package session

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/matemat13/ha-s-charge/internal/wire"
)

const (
	broadcastPort        = 3050
	udpHandshakeInterval = 1900 * time.Millisecond
)

// broadcastAddressFor returns the /24 broadcast address for a local IPv4
// address, e.g. 192.168.1.50 -> 192.168.1.255.
func broadcastAddressFor(ip net.IP) net.IP {
	ip4 := ip.To4()
	if ip4 == nil {
		return net.IPv4bcast
	}
	out := make(net.IP, len(ip4))
	copy(out, ip4)
	out[3] = 255
	return out
}

// newBroadcastSocket opens a UDP socket bound to the fixed handshake port
// with SO_BROADCAST set, since the stdlib net package has no direct way to
// permit sends to a broadcast address.
func newBroadcastSocket() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: broadcastPort})
	if err != nil {
		return nil, fmt.Errorf("session: bind udp handshake socket: %w", err)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: inspect udp socket: %w", err)
	}

	var sockErr error
	if ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	}); ctrlErr != nil {
		conn.Close()
		return nil, fmt.Errorf("session: set SO_BROADCAST: %w", ctrlErr)
	}
	if sockErr != nil {
		conn.Close()
		return nil, fmt.Errorf("session: set SO_BROADCAST: %w", sockErr)
	}
	return conn, nil
}

// udpHandshakeLoop broadcasts UDPHandShake frames on the local /24 every
// udpHandshakeInterval until stop is closed (the station has dialed back
// in over the WebSocket) or ctx is canceled.
func (c *Controller) udpHandshakeLoop(ctx context.Context, stop <-chan struct{}, wsPort int) {
	conn, err := newBroadcastSocket()
	if err != nil {
		c.log.Printf("ERROR: %v", err)
		return
	}
	defer conn.Close()

	dst := &net.UDPAddr{IP: broadcastAddressFor(net.ParseIP(c.localIP)), Port: broadcastPort}
	c.log.Printf("=== UDP handshake broadcasting to %s for station %s ===", dst.IP, c.serial)

	ticker := time.NewTicker(udpHandshakeInterval)
	defer ticker.Stop()

	for {
		msg := wire.UDPHandShake{
			TimeoutTimeUnix: time.Now(),
			ChargeBoxSN:     c.serial,
			IPAddress:       c.localIP,
			Port:            wsPort,
		}
		raw, err := msg.Encode()
		if err != nil {
			c.log.Printf("ERROR: encode UDPHandShake: %v", err)
		} else if _, err := conn.WriteToUDP([]byte(raw), dst); err != nil {
			c.log.Printf("WARNING: udp handshake send failed: %v", err)
		}

		select {
		case <-stop:
			c.log.Printf("SUCCESS: udp handshake done, station connected")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
