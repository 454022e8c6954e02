package nav

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmeacli/internal/nmea"
)

var (
	t0 = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Second)
	t2 = t0.Add(2 * time.Second)
)

func mustParse(t *testing.T, line string) nmea.Record {
	t.Helper()
	rec, perr := nmea.Parse(line)
	require.Nil(t, perr, "line %q", line)
	return rec
}

// sum wraps a payload with its checksum so test sentences stay readable.
func sum(payload string) string {
	return fmt.Sprintf("$%s*%02X", payload, nmea.Checksum(payload))
}

func TestApply_GGA(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"), t0)

	require.NotNil(t, snap.LatDeg)
	require.NotNil(t, snap.LonDeg)
	assert.InDelta(t, 48.1173, *snap.LatDeg, 1e-4)
	assert.InDelta(t, 11.5167, *snap.LonDeg, 1e-4)
	require.NotNil(t, snap.AltM)
	assert.Equal(t, 545.4, *snap.AltM)
	require.NotNil(t, snap.FixQuality)
	assert.Equal(t, 1, *snap.FixQuality)
	require.NotNil(t, snap.SatsUsed)
	assert.Equal(t, 8, *snap.SatsUsed)
	require.NotNil(t, snap.HDOP)
	assert.Equal(t, 0.9, *snap.HDOP)

	assert.Equal(t, t0, snap.Updated.Position)
	assert.Equal(t, t0, snap.Updated.Altitude)
	assert.Equal(t, t0, snap.Updated.Quality)
	// No date seen yet, so the clock alone cannot form a timestamp.
	assert.Nil(t, snap.UTC)
	assert.True(t, snap.Updated.Time.IsZero())
}

// Absent fields must leave known values untouched, not overwrite them.
func TestApply_AbsentFieldsDoNotOverwrite(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPGGA,123520,,,,,1,,,,M,,M,,")), t1)

	require.NotNil(t, snap.LatDeg)
	assert.InDelta(t, 48.1173, *snap.LatDeg, 1e-4)
	require.NotNil(t, snap.AltM)
	assert.Equal(t, 545.4, *snap.AltM)
	require.NotNil(t, snap.SatsUsed)
	assert.Equal(t, 8, *snap.SatsUsed)
	// Position timestamp stays at the merge that actually carried one.
	assert.Equal(t, t0, snap.Updated.Position)
	assert.Equal(t, t1, snap.Updated.Quality)
}

// Quality 0 is an asserted loss of fix: position and altitude are cleared.
func TestApply_GGAQualityZeroClears(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPGGA,123520,,,,,0,,,,M,,M,,")), t1)

	assert.Nil(t, snap.LatDeg)
	assert.Nil(t, snap.LonDeg)
	assert.Nil(t, snap.AltM)
	require.NotNil(t, snap.FixQuality)
	assert.Equal(t, 0, *snap.FixQuality)
	assert.Equal(t, t1, snap.Updated.Position)
	assert.Equal(t, t1, snap.Updated.Quality)
}

func TestApply_RMCSetsMotionAndDate(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPRMC,123519,A,4807.038,N,01131.000,E,22.4,84.4,230326,,")), t0)

	require.NotNil(t, snap.SpeedKt)
	assert.Equal(t, 22.4, *snap.SpeedKt)
	require.NotNil(t, snap.TrackDeg)
	assert.Equal(t, 84.4, *snap.TrackDeg)
	require.NotNil(t, snap.UTC)
	assert.Equal(t, time.Date(2026, 3, 23, 12, 35, 19, 0, time.UTC), *snap.UTC)
	assert.Equal(t, t0, snap.Updated.Motion)
	assert.Equal(t, t0, snap.Updated.Time)
}

// A void RMC still carries trustworthy time, but nothing else.
func TestApply_RMCVoidTimeOnly(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPRMC,123519,A,4807.038,N,01131.000,E,22.4,84.4,230326,,")), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPRMC,123525,V,1234.000,N,01131.000,E,99.9,10.0,230326,,")), t1)

	require.NotNil(t, snap.LatDeg)
	assert.InDelta(t, 48.1173, *snap.LatDeg, 1e-4)
	require.NotNil(t, snap.SpeedKt)
	assert.Equal(t, 22.4, *snap.SpeedKt)
	require.NotNil(t, snap.UTC)
	assert.Equal(t, 35, snap.UTC.Minute())
	assert.Equal(t, 25, snap.UTC.Second())
	assert.Equal(t, t1, snap.Updated.Time)
	assert.Equal(t, t0, snap.Updated.Motion)
}

// GGA carries a clock but no date; once any sentence has supplied a date the
// clock-only sentences produce full timestamps.
func TestApply_DateRemembered(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPZDA,120000.00,30,08,2026,00,00")), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPGGA,120001,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")), t1)

	require.NotNil(t, snap.UTC)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC), *snap.UTC)
}

// Overlapping fields are last-write-wins by arrival order.
func TestApply_LastWriteWins(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPRMC,123519,A,4807.038,N,01131.000,E,22.4,84.4,230326,,")), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPVTG,90.0,T,,M,10.0,N,18.52,K")), t1)

	require.NotNil(t, snap.SpeedKt)
	assert.Equal(t, 10.0, *snap.SpeedKt)
	require.NotNil(t, snap.TrackDeg)
	assert.Equal(t, 90.0, *snap.TrackDeg)
	assert.Equal(t, t1, snap.Updated.Motion)
}

func TestApply_VTGKmhFallback(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPVTG,90.0,T,,M,,N,18.52,K")), t0)

	require.NotNil(t, snap.SpeedKt)
	assert.InDelta(t, 10.0, *snap.SpeedKt, 1e-9)
}

func TestApply_GSA(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1")), t0)

	require.NotNil(t, snap.FixMode)
	assert.Equal(t, 3, *snap.FixMode)
	require.NotNil(t, snap.PDOP)
	assert.Equal(t, 2.5, *snap.PDOP)
	require.NotNil(t, snap.HDOP)
	assert.Equal(t, 1.3, *snap.HDOP)
	require.NotNil(t, snap.VDOP)
	assert.Equal(t, 2.1, *snap.VDOP)
	require.NotNil(t, snap.SatsUsed)
	assert.Equal(t, 5, *snap.SatsUsed)
	assert.Equal(t, t0, snap.Updated.Quality)
}

// A multi-part GSV report only reaches the snapshot when the final part
// arrives; partial bursts leave the previous table in place.
func TestApply_GSVCommitsOnFinalPart(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45")), t0)
	assert.Nil(t, snap.SatsInView)
	assert.True(t, snap.Updated.Satellites.IsZero())

	snap = a.Apply(snap, mustParse(t, sum("GPGSV,2,2,08,24,12,141,32,25,05,020,,31,30,100,38,32,60,250,44")), t1)
	require.Len(t, snap.SatsInView, 8)
	assert.Equal(t, 1, snap.SatsInView[0].PRN)
	assert.Equal(t, 32, snap.SatsInView[7].PRN)
	assert.Nil(t, snap.SatsInView[5].SNRdB)
	assert.Equal(t, t1, snap.Updated.Satellites)

	// Only GSV groups were touched.
	assert.Nil(t, snap.LatDeg)
	assert.True(t, snap.Updated.Position.IsZero())
}

// An out-of-sequence part tears the burst: the pending set is dropped and
// nothing is published until a fresh part 1 restarts it.
func TestApply_GSVTornSequenceDropped(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPGSV,3,1,09,01,40,083,46")), t0)
	snap = a.Apply(snap, mustParse(t, sum("GPGSV,3,3,09,24,12,141,32")), t1)
	assert.Nil(t, snap.SatsInView)

	// The remembered tail of the torn burst must not leak into a new one.
	snap = a.Apply(snap, mustParse(t, sum("GPGSV,1,1,02,05,10,200,30,07,20,100,35")), t2)
	require.Len(t, snap.SatsInView, 2)
	assert.Equal(t, 5, snap.SatsInView[0].PRN)
	assert.Equal(t, t2, snap.Updated.Satellites)
}

// Bursts from different talkers are tracked independently.
func TestApply_GSVPerTalker(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPGSV,2,1,05,01,40,083,46")), t0)
	snap = a.Apply(snap, mustParse(t, sum("GLGSV,1,1,01,65,30,100,40")), t1)
	require.Len(t, snap.SatsInView, 1)
	assert.Equal(t, 65, snap.SatsInView[0].PRN)

	snap = a.Apply(snap, mustParse(t, sum("GPGSV,2,2,05,02,17,308,41")), t2)
	require.Len(t, snap.SatsInView, 2)
	assert.Equal(t, 1, snap.SatsInView[0].PRN)
	assert.Equal(t, t2, snap.Updated.Satellites)
}

// Unrecognized records change nothing.
func TestApply_UnrecognizedIgnored(t *testing.T) {
	a := NewAggregator()
	snap := a.Apply(Snapshot{}, mustParse(t, sum("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")), t0)
	before := snap
	snap = a.Apply(snap, mustParse(t, sum("GPTXT,01,01,02,hello")), t1)
	assert.Equal(t, before, snap)
}

// The snapshot returned by Apply must not share pointers with its input:
// merging further records cannot mutate an already-published value.
func TestApply_NoAliasingAcrossMerges(t *testing.T) {
	a := NewAggregator()
	first := a.Apply(Snapshot{}, mustParse(t, sum("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")), t0)
	lat := *first.LatDeg

	a.Apply(first, mustParse(t, sum("GPGGA,123520,5530.000,N,03730.000,E,1,08,0.9,120.0,M,46.9,M,,")), t1)
	assert.Equal(t, lat, *first.LatDeg)
}
