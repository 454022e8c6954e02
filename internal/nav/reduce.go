package nav

import (
	"math"
	"time"

	"nmeacli/internal/nmea"
)

// Aggregator folds decoded records into a Snapshot. Apply is a pure merge
// except for two pieces of carried state that span sentences: the last seen
// date (so time-only sentences can produce a full UTC timestamp) and
// in-progress multi-part GSV reports, which only commit to the snapshot when
// their final part arrives.
type Aggregator struct {
	lastDate   nmea.Date
	pendingGSV map[string]*gsvPending
}

type gsvPending struct {
	total   int
	nextMsg int
	sats    []Satellite
}

func NewAggregator() *Aggregator {
	return &Aggregator{pendingGSV: make(map[string]*gsvPending)}
}

// Apply merges one record into the snapshot and stamps the field groups it
// touched with now. Each sentence kind updates only the groups it defines;
// absent fields never overwrite known values. Overlapping fields are
// last-write-wins by arrival order.
func (a *Aggregator) Apply(snap Snapshot, rec nmea.Record, now time.Time) Snapshot {
	switch v := rec.(type) {
	case nmea.GGA:
		return a.applyGGA(snap, v, now)
	case nmea.RMC:
		return a.applyRMC(snap, v, now)
	case nmea.GLL:
		return a.applyGLL(snap, v, now)
	case nmea.VTG:
		return a.applyVTG(snap, v, now)
	case nmea.ZDA:
		return a.applyZDA(snap, v, now)
	case nmea.GSA:
		return a.applyGSA(snap, v, now)
	case nmea.GSV:
		return a.applyGSV(snap, v, now)
	default:
		// Unrecognized records update nothing; the store counts them.
		return snap
	}
}

func (a *Aggregator) applyGGA(snap Snapshot, v nmea.GGA, now time.Time) Snapshot {
	if v.Quality != nil && *v.Quality == 0 {
		// The device is asserting loss of fix. This is the one case where
		// known values are cleared instead of going stale.
		q := 0
		snap.FixQuality = &q
		snap.LatDeg, snap.LonDeg, snap.AltM = nil, nil, nil
		snap.Updated.Quality = now
		snap.Updated.Position = now
		snap.Updated.Altitude = now
		return snap
	}

	if setPosition(&snap, v.Lat, v.Lon) {
		snap.Updated.Position = now
	}
	if setF(&snap.AltM, v.AltM) {
		snap.Updated.Altitude = now
	}
	quality := setI(&snap.FixQuality, v.Quality)
	quality = setI(&snap.SatsUsed, v.NumSats) || quality
	quality = setF(&snap.HDOP, v.HDOP) || quality
	if quality {
		snap.Updated.Quality = now
	}
	if a.setUTC(&snap, v.Time, nmea.Date{}) {
		snap.Updated.Time = now
	}
	return snap
}

func (a *Aggregator) applyRMC(snap Snapshot, v nmea.RMC, now time.Time) Snapshot {
	if a.setUTC(&snap, v.Time, v.Date) {
		snap.Updated.Time = now
	}
	if v.Status != "A" {
		// Void fix: the time field is still trustworthy, nothing else is.
		return snap
	}
	if setPosition(&snap, v.Lat, v.Lon) {
		snap.Updated.Position = now
	}
	motion := setF(&snap.SpeedKt, v.SpeedKt)
	motion = setF(&snap.TrackDeg, v.TrackDeg) || motion
	if motion {
		snap.Updated.Motion = now
	}
	return snap
}

func (a *Aggregator) applyGLL(snap Snapshot, v nmea.GLL, now time.Time) Snapshot {
	if a.setUTC(&snap, v.Time, nmea.Date{}) {
		snap.Updated.Time = now
	}
	if v.Status != "A" {
		return snap
	}
	if setPosition(&snap, v.Lat, v.Lon) {
		snap.Updated.Position = now
	}
	return snap
}

func (a *Aggregator) applyVTG(snap Snapshot, v nmea.VTG, now time.Time) Snapshot {
	motion := setF(&snap.TrackDeg, v.TrackTrueDeg)
	if v.SpeedKt != nil {
		motion = setF(&snap.SpeedKt, v.SpeedKt) || motion
	} else if v.SpeedKmh != nil {
		kt := *v.SpeedKmh / 1.852
		motion = setF(&snap.SpeedKt, &kt) || motion
	}
	if motion {
		snap.Updated.Motion = now
	}
	return snap
}

func (a *Aggregator) applyZDA(snap Snapshot, v nmea.ZDA, now time.Time) Snapshot {
	date := nmea.Date{}
	if v.Day != nil && v.Month != nil && v.Year != nil {
		date = nmea.Date{Valid: true, Day: *v.Day, Month: *v.Month, Year: *v.Year}
	}
	if a.setUTC(&snap, v.Time, date) {
		snap.Updated.Time = now
	}
	return snap
}

func (a *Aggregator) applyGSA(snap Snapshot, v nmea.GSA, now time.Time) Snapshot {
	quality := setI(&snap.FixMode, v.FixMode)
	quality = setF(&snap.PDOP, v.PDOP) || quality
	quality = setF(&snap.HDOP, v.HDOP) || quality
	quality = setF(&snap.VDOP, v.VDOP) || quality
	if len(v.PRNs) > 0 {
		n := len(v.PRNs)
		snap.SatsUsed = &n
		quality = true
	}
	if quality {
		snap.Updated.Quality = now
	}
	return snap
}

func (a *Aggregator) applyGSV(snap Snapshot, v nmea.GSV, now time.Time) Snapshot {
	key := v.Talker
	p := a.pendingGSV[key]
	if v.MsgNum == 1 {
		p = &gsvPending{total: v.TotalMsgs, nextMsg: 1}
		a.pendingGSV[key] = p
	}
	if p == nil || v.TotalMsgs != p.total || v.MsgNum != p.nextMsg {
		// Out-of-sequence part; drop the pending set and wait for the next
		// part 1. A torn burst must not publish a half table.
		delete(a.pendingGSV, key)
		return snap
	}
	for _, s := range v.Sats {
		p.sats = append(p.sats, Satellite{
			PRN:     s.PRN,
			ElevDeg: copyI(s.ElevDeg),
			AzimDeg: copyI(s.AzimDeg),
			SNRdB:   copyI(s.SNRdB),
		})
	}
	p.nextMsg++
	if v.MsgNum < p.total {
		return snap
	}

	delete(a.pendingGSV, key)
	snap.SatsInView = p.sats
	snap.Updated.Satellites = now
	return snap
}

// setUTC combines the transmitted clock with the most recent date. A date
// seen in any sentence is remembered so GGA/GLL (time-only) can still
// produce full timestamps.
func (a *Aggregator) setUTC(snap *Snapshot, c nmea.Clock, d nmea.Date) bool {
	if d.Valid {
		a.lastDate = d
	}
	if !c.Valid || !a.lastDate.Valid {
		return false
	}
	sec, frac := math.Modf(c.Second)
	t := time.Date(a.lastDate.Year, time.Month(a.lastDate.Month), a.lastDate.Day,
		c.Hour, c.Minute, int(sec), int(frac*1e9), time.UTC)
	snap.UTC = &t
	return true
}

// setPosition updates lat/lon together; a sentence carrying only one half of
// a coordinate is not a usable position.
func setPosition(snap *Snapshot, lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	la, lo := *lat, *lon
	snap.LatDeg, snap.LonDeg = &la, &lo
	return true
}

// setF copies an optional float into the snapshot. The copy matters: the
// published snapshot must never share a pointer the next merge could write
// through.
func setF(dst **float64, v *float64) bool {
	if v == nil {
		return false
	}
	c := *v
	*dst = &c
	return true
}

func setI(dst **int, v *int) bool {
	if v == nil {
		return false
	}
	c := *v
	*dst = &c
	return true
}

func copyI(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
