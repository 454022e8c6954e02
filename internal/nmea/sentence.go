package nmea

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a decoded sentence. The set of concrete types is closed:
// GGA, RMC, GLL, VTG, ZDA, GSA, GSV, and Unrecognized for everything else.
type Record interface {
	isRecord()
}

// GGA is a position fix: time, coordinates, fix quality, satellites used,
// HDOP, and altitude.
type GGA struct {
	Talker    string
	Time      Clock
	Lat       *float64
	Lon       *float64
	Quality   *int
	NumSats   *int
	HDOP      *float64
	AltM      *float64
	GeoidSepM *float64
}

// RMC is the recommended minimum fix: time, date, status, coordinates,
// speed over ground, and track.
type RMC struct {
	Talker   string
	Time     Clock
	Status   string // "A" active, "V" void
	Lat      *float64
	Lon      *float64
	SpeedKt  *float64
	TrackDeg *float64
	Date     Date
}

// GLL is a plain geographic position with time and status.
type GLL struct {
	Talker string
	Lat    *float64
	Lon    *float64
	Time   Clock
	Status string
}

// VTG is course and speed over ground.
type VTG struct {
	Talker       string
	TrackTrueDeg *float64
	TrackMagDeg  *float64
	SpeedKt      *float64
	SpeedKmh     *float64
}

// ZDA is UTC time and date.
type ZDA struct {
	Talker string
	Time   Clock
	Day    *int
	Month  *int
	Year   *int
}

// GSA is the active-satellite selection: fix mode, the PRNs used for the
// solution, and the DOP triple.
type GSA struct {
	Talker  string
	SelMode string // "A" automatic, "M" manual
	FixMode *int   // 1 no fix, 2 2D, 3 3D
	PRNs    []int
	PDOP    *float64
	HDOP    *float64
	VDOP    *float64
}

// GSV is one part of a satellites-in-view report. A full report spans
// TotalMsgs parts of up to four satellites each.
type GSV struct {
	Talker     string
	TotalMsgs  int
	MsgNum     int
	SatsInView int
	Sats       []SatView
}

// SatView is one satellite row from GSV. SNR is empty for satellites that
// are predicted but not being received.
type SatView struct {
	PRN     int
	ElevDeg *int
	AzimDeg *int
	SNRdB   *int
}

// Unrecognized is a checksum-valid sentence of a kind this package does not
// decode. Unknown kinds are common and are surfaced, not dropped.
type Unrecognized struct {
	Talker string
	Tag    string
	Fields []string
}

func (GGA) isRecord()          {}
func (RMC) isRecord()          {}
func (GLL) isRecord()          {}
func (VTG) isRecord()          {}
func (ZDA) isRecord()          {}
func (GSA) isRecord()          {}
func (GSV) isRecord()          {}
func (Unrecognized) isRecord() {}

// decoders is the closed dispatch table keyed by the 3-letter sentence type.
var decoders = map[string]func(talker string, f []string) (Record, *IngestError){
	"GGA": decodeGGA,
	"RMC": decodeRMC,
	"GLL": decodeGLL,
	"VTG": decodeVTG,
	"ZDA": decodeZDA,
	"GSA": decodeGSA,
	"GSV": decodeGSV,
}

// Parse validates one framed line and decodes it into a Record.
//
// The checksum is always verified before any field is looked at; a garbled
// serial read must never produce a plausible-looking record.
func Parse(line string) (Record, *IngestError) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil, errMalformed("empty line")
	}
	if line[0] != '$' && line[0] != '!' {
		return nil, errMalformed(fmt.Sprintf("missing '$' prefix: %q", truncate(line)))
	}
	if strings.Count(line, "*") != 1 {
		return nil, errMalformed(fmt.Sprintf("expected exactly one '*': %q", truncate(line)))
	}
	star := strings.IndexByte(line, '*')
	payload := line[1:star]
	ckStr := line[star+1:]
	if len(ckStr) != 2 {
		return nil, errMalformed(fmt.Sprintf("checksum must be two hex digits: %q", ckStr))
	}
	want, err := strconv.ParseUint(ckStr, 16, 8)
	if err != nil {
		return nil, errMalformed(fmt.Sprintf("bad checksum digits: %q", ckStr))
	}
	got := Checksum(payload)
	if got != byte(want) {
		return nil, errChecksum(fmt.Sprintf("computed %02X, transmitted %s", got, strings.ToUpper(ckStr)))
	}

	fields := strings.Split(payload, ",")
	tag := strings.ToUpper(strings.TrimSpace(fields[0]))
	if len(tag) < 3 {
		return nil, errMalformed(fmt.Sprintf("short sentence tag: %q", tag))
	}

	// Normalize the type to the last three characters so any talker
	// (GP/GN/GL/GA/GB...) resolves to the same decoder.
	typ := tag
	talker := ""
	if len(tag) > 3 {
		typ = tag[len(tag)-3:]
		talker = tag[:len(tag)-3]
	}

	dec, ok := decoders[typ]
	if !ok {
		return Unrecognized{Talker: talker, Tag: tag, Fields: fields[1:]}, nil
	}
	return dec(talker, fields)
}

// Checksum is the XOR of all payload bytes (between the '$'/'!' and the '*').
func Checksum(payload string) byte {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return ck
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}

// GGA fields: 1 time, 2-3 lat, 4-5 lon, 6 quality, 7 sats used, 8 hdop,
// 9-10 altitude (M), 11-12 geoid separation (M).
func decodeGGA(talker string, f []string) (Record, *IngestError) {
	out := GGA{Talker: talker}
	var err *IngestError
	if out.Time, err = optClock(f, 1); err != nil {
		return nil, err
	}
	if out.Lat, err = optLatLon(f, 2, 3); err != nil {
		return nil, err
	}
	if out.Lon, err = optLatLon(f, 4, 5); err != nil {
		return nil, err
	}
	if out.Quality, err = optInt(f, 6); err != nil {
		return nil, err
	}
	if out.NumSats, err = optInt(f, 7); err != nil {
		return nil, err
	}
	if out.HDOP, err = optFloat(f, 8); err != nil {
		return nil, err
	}
	if out.AltM, err = optFloat(f, 9); err != nil {
		return nil, err
	}
	if out.GeoidSepM, err = optFloat(f, 11); err != nil {
		return nil, err
	}
	return out, nil
}

// RMC fields: 1 time, 2 status, 3-4 lat, 5-6 lon, 7 speed kt, 8 track,
// 9 date.
func decodeRMC(talker string, f []string) (Record, *IngestError) {
	out := RMC{Talker: talker, Status: strings.ToUpper(field(f, 2))}
	var err *IngestError
	if out.Time, err = optClock(f, 1); err != nil {
		return nil, err
	}
	if out.Lat, err = optLatLon(f, 3, 4); err != nil {
		return nil, err
	}
	if out.Lon, err = optLatLon(f, 5, 6); err != nil {
		return nil, err
	}
	if out.SpeedKt, err = optFloat(f, 7); err != nil {
		return nil, err
	}
	if out.TrackDeg, err = optFloat(f, 8); err != nil {
		return nil, err
	}
	if out.Date, err = optDate(f, 9); err != nil {
		return nil, err
	}
	return out, nil
}

// GLL fields: 1-2 lat, 3-4 lon, 5 time, 6 status.
func decodeGLL(talker string, f []string) (Record, *IngestError) {
	out := GLL{Talker: talker, Status: strings.ToUpper(field(f, 6))}
	var err *IngestError
	if out.Lat, err = optLatLon(f, 1, 2); err != nil {
		return nil, err
	}
	if out.Lon, err = optLatLon(f, 3, 4); err != nil {
		return nil, err
	}
	if out.Time, err = optClock(f, 5); err != nil {
		return nil, err
	}
	return out, nil
}

// VTG fields: 1 track true (T), 3 track magnetic (M), 5 speed knots (N),
// 7 speed km/h (K).
func decodeVTG(talker string, f []string) (Record, *IngestError) {
	out := VTG{Talker: talker}
	var err *IngestError
	if out.TrackTrueDeg, err = optFloat(f, 1); err != nil {
		return nil, err
	}
	if out.TrackMagDeg, err = optFloat(f, 3); err != nil {
		return nil, err
	}
	if out.SpeedKt, err = optFloat(f, 5); err != nil {
		return nil, err
	}
	if out.SpeedKmh, err = optFloat(f, 7); err != nil {
		return nil, err
	}
	return out, nil
}

// ZDA fields: 1 time, 2 day, 3 month, 4 four-digit year.
func decodeZDA(talker string, f []string) (Record, *IngestError) {
	out := ZDA{Talker: talker}
	var err *IngestError
	if out.Time, err = optClock(f, 1); err != nil {
		return nil, err
	}
	if out.Day, err = optInt(f, 2); err != nil {
		return nil, err
	}
	if out.Month, err = optInt(f, 3); err != nil {
		return nil, err
	}
	if out.Year, err = optInt(f, 4); err != nil {
		return nil, err
	}
	return out, nil
}

// GSA fields: 1 selection mode, 2 fix mode, 3-14 PRNs, 15 pdop, 16 hdop,
// 17 vdop.
func decodeGSA(talker string, f []string) (Record, *IngestError) {
	out := GSA{Talker: talker, SelMode: strings.ToUpper(field(f, 1))}
	var err *IngestError
	if out.FixMode, err = optInt(f, 2); err != nil {
		return nil, err
	}
	for i := 3; i <= 14; i++ {
		prn, perr := optInt(f, i)
		if perr != nil {
			return nil, perr
		}
		if prn != nil {
			out.PRNs = append(out.PRNs, *prn)
		}
	}
	if out.PDOP, err = optFloat(f, 15); err != nil {
		return nil, err
	}
	if out.HDOP, err = optFloat(f, 16); err != nil {
		return nil, err
	}
	if out.VDOP, err = optFloat(f, 17); err != nil {
		return nil, err
	}
	return out, nil
}

// GSV fields: 1 total messages, 2 message number, 3 satellites in view,
// then up to four groups of PRN/elevation/azimuth/SNR.
func decodeGSV(talker string, f []string) (Record, *IngestError) {
	out := GSV{Talker: talker}

	total, err := optInt(f, 1)
	if err != nil {
		return nil, err
	}
	num, err := optInt(f, 2)
	if err != nil {
		return nil, err
	}
	if total == nil || num == nil {
		return nil, errField(1, "GSV requires message count and number")
	}
	if *total < 1 || *num < 1 || *num > *total {
		return nil, errField(2, fmt.Sprintf("bad GSV sequence %d of %d", *num, *total))
	}
	out.TotalMsgs = *total
	out.MsgNum = *num
	if n, err := optInt(f, 3); err != nil {
		return nil, err
	} else if n != nil {
		out.SatsInView = *n
	}

	for base := 4; base < len(f); base += 4 {
		prn, perr := optInt(f, base)
		if perr != nil {
			return nil, perr
		}
		if prn == nil {
			continue
		}
		sat := SatView{PRN: *prn}
		if sat.ElevDeg, perr = optInt(f, base+1); perr != nil {
			return nil, perr
		}
		if sat.AzimDeg, perr = optInt(f, base+2); perr != nil {
			return nil, perr
		}
		if sat.SNRdB, perr = optInt(f, base+3); perr != nil {
			return nil, perr
		}
		out.Sats = append(out.Sats, sat)
	}
	return out, nil
}
