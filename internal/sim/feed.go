package sim

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Feed serves the scenario's sentences to every connected TCP client on a
// fixed interval, imitating a network-attached receiver.
type Feed struct {
	scenario Scenario
	interval time.Duration
	log      zerolog.Logger

	ln  net.Listener
	udp *Broadcaster

	mu      sync.Mutex
	clients map[net.Conn]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFeed(scenario Scenario, interval time.Duration, log zerolog.Logger) *Feed {
	if interval <= 0 {
		interval = time.Second
	}
	return &Feed{
		scenario: scenario,
		interval: interval,
		log:      log,
		clients:  make(map[net.Conn]struct{}),
	}
}

// AttachUDP mirrors each burst to a UDP destination. Call before Start.
func (f *Feed) AttachUDP(b *Broadcaster) {
	f.udp = b
}

// Start listens on addr and begins broadcasting. The returned address is the
// concrete one (useful when addr requests port 0).
func (f *Feed) Start(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("sim feed listen: %w", err)
	}
	f.ln = ln

	childCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(2)
	go f.acceptLoop(childCtx)
	go f.tickLoop(childCtx)
	return ln.Addr().String(), nil
}

func (f *Feed) Close() {
	if f == nil || f.cancel == nil {
		return
	}
	f.cancel()
	_ = f.ln.Close()
	f.mu.Lock()
	for c := range f.clients {
		_ = c.Close()
	}
	f.mu.Unlock()
	f.wg.Wait()
}

func (f *Feed) acceptLoop(ctx context.Context) {
	defer f.wg.Done()
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				f.log.Warn().Err(err).Msg("sim feed accept failed")
			}
			return
		}
		f.log.Debug().Str("client", conn.RemoteAddr().String()).Msg("sim feed client connected")
		f.mu.Lock()
		f.clients[conn] = struct{}{}
		f.mu.Unlock()
	}
}

func (f *Feed) tickLoop(ctx context.Context) {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sentences := f.scenario.Sentences(now)
			f.broadcast(sentences)
			if f.udp != nil {
				if err := f.udp.Send(sentences); err != nil {
					f.log.Debug().Err(err).Msg("sim feed udp send failed")
				}
			}
		}
	}
}

func (f *Feed) broadcast(sentences []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		for _, s := range sentences {
			if _, err := conn.Write([]byte(s)); err != nil {
				_ = conn.Close()
				delete(f.clients, conn)
				break
			}
		}
	}
}
