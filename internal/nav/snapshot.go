package nav

import "time"

// Satellite is one row of the satellites-in-view table.
type Satellite struct {
	PRN     int  `json:"prn"`
	ElevDeg *int `json:"elev_deg,omitempty"`
	AzimDeg *int `json:"azim_deg,omitempty"`
	SNRdB   *int `json:"snr_db,omitempty"`
}

// GroupTimes records the wall-clock time each field group was last set, so
// staleness of any one group is derivable without blocking the others.
// A satellites-in-view report arriving every few seconds must not make a
// once-per-second position fix look stale, and vice versa.
type GroupTimes struct {
	Position   time.Time `json:"position,omitempty"`
	Altitude   time.Time `json:"altitude,omitempty"`
	Time       time.Time `json:"time,omitempty"`
	Motion     time.Time `json:"motion,omitempty"`
	Quality    time.Time `json:"quality,omitempty"`
	Satellites time.Time `json:"satellites,omitempty"`
}

// Snapshot is the composite navigation state. Pointer fields are nil until a
// sentence carrying that field has been seen; zero is a real value, absence
// is not.
type Snapshot struct {
	LatDeg *float64 `json:"lat_deg,omitempty"`
	LonDeg *float64 `json:"lon_deg,omitempty"`
	AltM   *float64 `json:"alt_m,omitempty"`

	// UTC is the receiver-reported date+time, available once both a time
	// and a date sentence (or an RMC) have been seen.
	UTC *time.Time `json:"utc,omitempty"`

	FixQuality *int `json:"fix_quality,omitempty"` // GGA: 0 no fix, 1 GPS, 2 DGPS...
	FixMode    *int `json:"fix_mode,omitempty"`    // GSA: 1 no fix, 2 2D, 3 3D

	SpeedKt  *float64 `json:"speed_kt,omitempty"`
	TrackDeg *float64 `json:"track_deg,omitempty"`

	HDOP *float64 `json:"hdop,omitempty"`
	VDOP *float64 `json:"vdop,omitempty"`
	PDOP *float64 `json:"pdop,omitempty"`

	SatsUsed   *int        `json:"sats_used,omitempty"`
	SatsInView []Satellite `json:"sats_in_view,omitempty"`

	Updated GroupTimes `json:"updated"`
}

// Health is the cumulative ingestion report exposed for polling.
type Health struct {
	Accepted     uint64            `json:"accepted"`
	Unrecognized uint64            `json:"unrecognized"`
	Errors       map[string]uint64 `json:"errors"`
	LastError    string            `json:"last_error,omitempty"`
}
