package ingest

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmeacli/internal/nav"
	"nmeacli/internal/nmea"
)

func sum(payload string) string {
	return fmt.Sprintf("$%s*%02X", payload, nmea.Checksum(payload))
}

// scripted returns a ReadCloser that plays back the given stream and then
// reports EOF.
func scripted(stream string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(stream))
}

func runStream(t *testing.T, store *nav.Store, stream string) {
	t.Helper()
	svc := New(store, 0, zerolog.Nop())
	err := svc.Run(context.Background(), scripted(stream))
	require.ErrorIs(t, err, io.EOF)
}

func TestRun_AcceptsAndPublishes(t *testing.T) {
	store := nav.NewStore(0)
	runStream(t, store, strings.Join([]string{
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
		sum("GPRMC,123519,A,4807.038,N,01131.000,E,22.4,84.4,230326,,"),
		sum("GPTXT,01,01,02,hello"),
	}, "\r\n") + "\r\n")

	h := store.Health()
	assert.Equal(t, uint64(2), h.Accepted)
	assert.Equal(t, uint64(1), h.Unrecognized)

	snap := store.Current()
	require.NotNil(t, snap.LatDeg)
	assert.InDelta(t, 48.1173, *snap.LatDeg, 1e-4)
	require.NotNil(t, snap.SpeedKt)
	assert.Equal(t, 22.4, *snap.SpeedKt)
	assert.Len(t, store.RecentLines(), 3)
}

// A checksum failure is counted but leaves the published snapshot untouched.
func TestRun_RejectedLineDoesNotTouchSnapshot(t *testing.T) {
	store := nav.NewStore(0)
	runStream(t, store,
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"+
			"$GPGGA,123520,5530.000,N,03730.000,E,1,08,0.9,120.0,M,46.9,M,,*00\r\n")

	h := store.Health()
	assert.Equal(t, uint64(1), h.Accepted)
	assert.Equal(t, uint64(1), h.Errors[nmea.ErrChecksumMismatch.String()])

	snap := store.Current()
	require.NotNil(t, snap.LatDeg)
	assert.InDelta(t, 48.1173, *snap.LatDeg, 1e-4)
}

// An oversized junk run is reported once and the next good line still parses.
func TestRun_RecoversAfterOversizedRun(t *testing.T) {
	store := nav.NewStore(0)
	svc := New(store, 64, zerolog.Nop())
	stream := strings.Repeat("x", 500) + "\r\n" +
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"
	err := svc.Run(context.Background(), scripted(stream))
	require.ErrorIs(t, err, io.EOF)

	h := store.Health()
	assert.Equal(t, uint64(1), h.Errors[nmea.ErrFrameTooLong.String()])
	assert.Equal(t, uint64(1), h.Accepted)
	require.NotNil(t, store.Current().LatDeg)
}

func TestRun_SourceErrorRecordedAsLastError(t *testing.T) {
	store := nav.NewStore(0)
	svc := New(store, 0, zerolog.Nop())
	err := svc.Run(context.Background(), scripted(""))
	require.ErrorIs(t, err, io.EOF)
	assert.Contains(t, store.Health().LastError, "EOF")
}

// Cancellation must unblock a pipeline stuck in Read by closing the source.
func TestStartClose_UnblocksPendingRead(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	store := nav.NewStore(0)
	svc := New(store, 0, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background(), server))
	require.Error(t, svc.Start(context.Background(), server), "second start must be refused")

	_, err := client.Write([]byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"))
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for store.Health().Accepted == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sentence never reached the store")
		}
		time.Sleep(time.Millisecond)
	}

	// Close returns only once the pipeline goroutine has exited, which
	// requires the blocked Read to have been unblocked.
	closed := make(chan struct{})
	go func() {
		svc.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock the pending read")
	}
}
