package nav

import (
	"sync"
	"sync/atomic"

	"nmeacli/internal/nmea"
)

const defaultHistory = 100

// Store holds the current snapshot and ingestion health for polling readers.
//
// There is exactly one writer (the ingestion pipeline); readers never block
// it. Publish swaps the whole snapshot atomically, so a reader can never see
// fields from two different merges.
type Store struct {
	cur atomic.Value // Snapshot

	accepted     uint64
	unrecognized uint64
	errorCounts  [nmea.ErrorKindCount]uint64

	mu       sync.Mutex
	lastErr  string
	maxLines int
	recent   []string
}

// NewStore returns a store with an empty snapshot and a raw-line history of
// up to historyLines entries (<=0 selects the default).
func NewStore(historyLines int) *Store {
	if historyLines <= 0 {
		historyLines = defaultHistory
	}
	s := &Store{maxLines: historyLines}
	s.cur.Store(Snapshot{})
	return s
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap Snapshot) {
	s.cur.Store(snap)
}

// Current returns a consistent point-in-time copy. The satellite table is
// copied so a reader holding the result cannot observe later merges.
func (s *Store) Current() Snapshot {
	snap := s.cur.Load().(Snapshot)
	if len(snap.SatsInView) > 0 {
		sats := make([]Satellite, len(snap.SatsInView))
		copy(sats, snap.SatsInView)
		snap.SatsInView = sats
	}
	return snap
}

// RecordAccepted counts one successfully decoded and merged sentence.
func (s *Store) RecordAccepted() {
	atomic.AddUint64(&s.accepted, 1)
}

// RecordUnrecognized counts a checksum-valid sentence of an unsupported kind.
func (s *Store) RecordUnrecognized() {
	atomic.AddUint64(&s.unrecognized, 1)
}

// RecordError counts one rejected line.
func (s *Store) RecordError(err *nmea.IngestError) {
	if err == nil {
		return
	}
	k := int(err.Kind)
	if k < 0 || k >= len(s.errorCounts) {
		return
	}
	atomic.AddUint64(&s.errorCounts[k], 1)
}

// SetLastError records a transport-level failure message for health output.
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// RecordLine appends a raw line to the bounded history shown by the UI.
func (s *Store) RecordLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recent) < s.maxLines {
		s.recent = append(s.recent, line)
		return
	}
	copy(s.recent, s.recent[1:])
	s.recent[len(s.recent)-1] = line
}

// RecentLines returns a copy of the history, oldest first.
func (s *Store) RecentLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// Health reports cumulative counters since process start. Counters survive
// transport reconnects; only the process restarts them.
func (s *Store) Health() Health {
	h := Health{
		Accepted:     atomic.LoadUint64(&s.accepted),
		Unrecognized: atomic.LoadUint64(&s.unrecognized),
		Errors:       make(map[string]uint64, len(s.errorCounts)),
	}
	for k := range s.errorCounts {
		if n := atomic.LoadUint64(&s.errorCounts[k]); n > 0 {
			h.Errors[nmea.ErrorKind(k).String()] = n
		}
	}
	s.mu.Lock()
	h.LastError = s.lastErr
	s.mu.Unlock()
	return h
}
