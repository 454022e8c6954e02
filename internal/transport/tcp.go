package transport

import (
	"context"
	"io"
	"net"
	"strings"
	"time"
)

// TCPSource dials a host:port serving raw NMEA lines (a TCP-attached
// receiver, ser2net, gpsd in NMEA passthrough mode, or the built-in
// simulator feed).
type TCPSource struct {
	Addr        string
	DialTimeout time.Duration
}

func (t TCPSource) Label() string { return "tcp " + t.Addr }

func (t TCPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	timeout := t.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	d := &net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", strings.TrimSpace(t.Addr))
	if err != nil {
		return nil, err
	}
	return conn, nil
}
