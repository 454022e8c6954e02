package sim

import (
	"fmt"
	"net"
)

// Broadcaster sends sentence bursts as UDP datagrams, one sentence per
// datagram, for consumers that take NMEA over UDP (common with marine
// plotter apps).
type Broadcaster struct {
	dest string
	conn *net.UDPConn
}

func NewBroadcaster(dest string) (*Broadcaster, error) {
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}

	return &Broadcaster{dest: dest, conn: conn}, nil
}

func (b *Broadcaster) Send(sentences []string) error {
	for _, s := range sentences {
		if s == "" {
			continue
		}
		if _, err := b.conn.Write([]byte(s)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Broadcaster) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}
