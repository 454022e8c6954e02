package sim

import (
	"math"
	"time"

	"nmeacli/internal/nmea"
)

// Scenario is a deterministic moving receiver used to exercise the pipeline
// without hardware.
type Scenario struct {
	CenterLatDeg float64
	CenterLonDeg float64
	AltM         float64
	GroundKt     float64
	RadiusNm     float64
	Period       time.Duration
}

func (s Scenario) withDefaults() Scenario {
	if s.Period <= 0 {
		s.Period = 120 * time.Second
	}
	if s.RadiusNm <= 0 {
		s.RadiusNm = 0.5
	}
	if s.GroundKt <= 0 {
		s.GroundKt = 8
	}
	if s.AltM == 0 {
		s.AltM = 120
	}
	return s
}

// position returns a deterministic figure-eight (Lissajous) track around the
// center, staying within the configured radius, plus the instantaneous
// course.
func (s Scenario) position(now time.Time) (latDeg, lonDeg, trackDeg float64) {
	radiusDeg := s.RadiusNm / 60.0 // ~60 NM per degree of latitude

	phase := float64(now.UnixNano()%s.Period.Nanoseconds()) / float64(s.Period.Nanoseconds())
	w := 2 * math.Pi * phase
	x := math.Cos(w)
	y := 0.5 * math.Sin(2*w)

	latDeg = s.CenterLatDeg + radiusDeg*y
	lonDeg = s.CenterLonDeg + (radiusDeg*x)/math.Cos(s.CenterLatDeg*math.Pi/180.0)

	vx := -2 * math.Pi * math.Sin(w)
	vy := 2 * math.Pi * math.Cos(2*w)
	trackDeg = math.Mod(math.Atan2(vx, vy)*180/math.Pi+360, 360)
	return latDeg, lonDeg, trackDeg
}

// Records builds one burst of sentences for the given instant: GGA, RMC,
// VTG, ZDA, GSA, and a multi-part GSV report.
func (s Scenario) Records(now time.Time) []nmea.Record {
	sc := s.withDefaults()
	lat, lon, track := sc.position(now)
	now = now.UTC()

	clock := nmea.Clock{
		Valid:  true,
		Hour:   now.Hour(),
		Minute: now.Minute(),
		Second: float64(now.Second()),
	}
	date := nmea.Date{Valid: true, Day: now.Day(), Month: int(now.Month()), Year: now.Year()}

	quality, satsUsed := 1, 8
	hdop, vdop, pdop := 0.9, 1.2, 1.5
	alt, sep := sc.AltM, 46.9
	speed := sc.GroundKt
	fixMode := 3

	sats, prns := viewTable(now)

	recs := []nmea.Record{
		nmea.GGA{
			Time: clock, Lat: &lat, Lon: &lon,
			Quality: &quality, NumSats: &satsUsed, HDOP: &hdop,
			AltM: &alt, GeoidSepM: &sep,
		},
		nmea.RMC{
			Time: clock, Status: "A", Lat: &lat, Lon: &lon,
			SpeedKt: &speed, TrackDeg: &track, Date: date,
		},
		nmea.VTG{TrackTrueDeg: &track, SpeedKt: &speed},
		nmea.ZDA{
			Time: clock,
			Day:  intp(date.Day), Month: intp(date.Month), Year: intp(date.Year),
		},
		nmea.GSA{
			SelMode: "A", FixMode: &fixMode, PRNs: prns,
			PDOP: &pdop, HDOP: &hdop, VDOP: &vdop,
		},
	}
	return append(recs, gsvParts(sats)...)
}

// Sentences renders the burst to wire form, CRLF-terminated.
func (s Scenario) Sentences(now time.Time) []string {
	recs := s.Records(now)
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		line, err := nmea.Encode(r)
		if err != nil {
			continue
		}
		out = append(out, line+"\r\n")
	}
	return out
}

// viewTable synthesizes a stable constellation whose SNRs drift slowly so a
// satellite pane visibly updates.
func viewTable(now time.Time) ([]nmea.SatView, []int) {
	base := []struct {
		prn, elev, azim int
	}{
		{2, 62, 45}, {5, 48, 120}, {12, 33, 200}, {17, 70, 310},
		{19, 21, 85}, {24, 15, 155}, {25, 55, 250}, {29, 9, 20},
	}
	wobble := int(now.Unix() % 7)
	sats := make([]nmea.SatView, 0, len(base))
	prns := make([]int, 0, len(base))
	for i, b := range base {
		elev, azim := b.elev, b.azim
		snr := 30 + (i+wobble)%12
		sats = append(sats, nmea.SatView{
			PRN: b.prn, ElevDeg: &elev, AzimDeg: &azim, SNRdB: &snr,
		})
		prns = append(prns, b.prn)
	}
	return sats, prns
}

// gsvParts splits the view table into standard four-satellite GSV parts.
func gsvParts(sats []nmea.SatView) []nmea.Record {
	total := (len(sats) + 3) / 4
	out := make([]nmea.Record, 0, total)
	for i := 0; i < total; i++ {
		lo := i * 4
		hi := lo + 4
		if hi > len(sats) {
			hi = len(sats)
		}
		out = append(out, nmea.GSV{
			TotalMsgs: total, MsgNum: i + 1,
			SatsInView: len(sats), Sats: sats[lo:hi],
		})
	}
	return out
}

func intp(v int) *int { return &v }
