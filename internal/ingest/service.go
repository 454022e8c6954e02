package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nmeacli/internal/nav"
	"nmeacli/internal/nmea"
)

// Service drives one byte source through framing, parsing, and aggregation,
// publishing every merge to the store. It is the store's only writer.
type Service struct {
	store    *nav.Store
	log      zerolog.Logger
	maxFrame int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store *nav.Store, maxFrameLen int, log zerolog.Logger) *Service {
	return &Service{store: store, log: log, maxFrame: maxFrameLen}
}

// Run consumes src until ctx is canceled or the source fails, and returns
// why it stopped. Parse failures are counted and skipped; only source
// exhaustion ends the run. The framer starts empty, so a partial line from a
// previous connection is never replayed into a new one.
func (s *Service) Run(ctx context.Context, src io.ReadCloser) error {
	framer := nmea.NewFramer(s.maxFrame)
	agg := nav.NewAggregator()
	snap := s.store.Current()

	// Close the source when ctx ends so a blocked Read returns promptly.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = src.Close()
		case <-done:
		}
	}()

	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			lines, frameErrs := framer.Push(buf[:n])
			for _, fe := range frameErrs {
				s.store.RecordError(fe)
				s.log.Debug().Str("kind", fe.Kind.String()).Msg("line rejected")
			}
			for _, line := range lines {
				// Stoppable between lines, never mid-sentence.
				if cerr := ctx.Err(); cerr != nil {
					return cerr
				}
				s.handleLine(agg, &snap, line)
			}
		}
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			s.store.SetLastError(fmt.Sprintf("read stopped: %v", err))
			return err
		}
	}
}

func (s *Service) handleLine(agg *nav.Aggregator, snap *nav.Snapshot, line string) {
	s.store.RecordLine(line)

	rec, perr := nmea.Parse(line)
	if perr != nil {
		s.store.RecordError(perr)
		s.log.Debug().Str("kind", perr.Kind.String()).Str("line", line).Msg("line rejected")
		return
	}
	if u, ok := rec.(nmea.Unrecognized); ok {
		s.store.RecordUnrecognized()
		s.log.Debug().Str("tag", u.Tag).Msg("unrecognized sentence kind")
		return
	}

	*snap = agg.Apply(*snap, rec, time.Now().UTC())
	s.store.Publish(*snap)
	s.store.RecordAccepted()
}

// Start runs the pipeline in a goroutine. Close (or ctx cancellation) stops
// it; a source read error also ends it, which the caller observes through
// the store's health output.
func (s *Service) Start(ctx context.Context, src io.ReadCloser) error {
	if s == nil {
		return fmt.Errorf("ingest service is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("ingest service already started")
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Run(childCtx, src); err != nil && childCtx.Err() == nil {
			s.log.Warn().Err(err).Msg("ingest stopped")
		}
	}()
	return nil
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
