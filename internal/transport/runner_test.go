package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPSource_Open(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("$GPGLL,,,,,,V*06\r\n"))
		conn.Close()
	}()

	src := TCPSource{Addr: ln.Addr().String()}
	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	line, err := bufio.NewReader(rc).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "GPGLL")
}

func TestTCPSource_OpenRefused(t *testing.T) {
	// A listener that is immediately closed yields a port nothing accepts on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	src := TCPSource{Addr: addr, DialTimeout: 200 * time.Millisecond}
	_, err = src.Open(context.Background())
	require.Error(t, err)
}

type fakeSource struct {
	opens atomic.Int32
	fail  bool
}

func (f *fakeSource) Label() string { return "fake" }

func (f *fakeSource) Open(context.Context) (io.ReadCloser, error) {
	f.opens.Add(1)
	if f.fail {
		return nil, errors.New("no route")
	}
	return io.NopCloser(&eofReader{}), nil
}

type eofReader struct{}

func (*eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Each time the stream ends the runner reopens the source, and cancellation
// stops the loop.
func TestRunWithReconnect_ReopensUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		RunWithReconnect(ctx, zerolog.Nop(), src, func(ctx context.Context, rc io.ReadCloser) error {
			_, err := rc.Read(make([]byte, 1))
			return err
		})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for src.opens.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("source was not reopened")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop on cancellation")
	}
}

func TestRunWithReconnect_BacksOffOnOpenFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()
	src := &fakeSource{fail: true}

	RunWithReconnect(ctx, zerolog.Nop(), src, func(context.Context, io.ReadCloser) error {
		t.Error("run must not be called when open fails")
		return nil
	})

	// 250ms then 500ms backoff: at most a few attempts fit in the window.
	n := src.opens.Load()
	assert.GreaterOrEqual(t, n, int32(1))
	assert.LessOrEqual(t, n, int32(4))
}
