package nmea

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encode renders a supported record back to a checksummed sentence. It is the
// inverse of Parse for the decodable kinds; Unrecognized records carry no
// schema and cannot be encoded.
func Encode(r Record) (string, error) {
	var payload string
	switch v := r.(type) {
	case GGA:
		payload = encodeGGA(v)
	case RMC:
		payload = encodeRMC(v)
	case GLL:
		payload = encodeGLL(v)
	case VTG:
		payload = encodeVTG(v)
	case ZDA:
		payload = encodeZDA(v)
	case GSA:
		payload = encodeGSA(v)
	case GSV:
		payload = encodeGSV(v)
	case Unrecognized:
		return "", fmt.Errorf("nmea: cannot encode unrecognized sentence %q", v.Tag)
	default:
		return "", fmt.Errorf("nmea: cannot encode %T", r)
	}
	return fmt.Sprintf("$%s*%02X", payload, Checksum(payload)), nil
}

func tagFor(talker, typ string) string {
	if talker == "" {
		talker = "GP"
	}
	return talker + typ
}

func fmtF(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtI(v *int, width int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%0*d", width, *v)
}

// fmtLatLon renders signed decimal degrees as ddmm.mmmm (or dddmm.mmmm for
// longitude) plus hemisphere.
func fmtLatLon(v *float64, isLat bool) (coord, hemi string) {
	if v == nil {
		return "", ""
	}
	val := *v
	if isLat {
		hemi = "N"
		if val < 0 {
			hemi = "S"
		}
	} else {
		hemi = "E"
		if val < 0 {
			hemi = "W"
		}
	}
	val = math.Abs(val)
	deg := int(val)
	mins := (val - float64(deg)) * 60
	// Guard against minutes rounding up to 60.0000.
	if mins >= 59.99995 {
		deg++
		mins = 0
	}
	degWidth := 2
	if !isLat {
		degWidth = 3
	}
	return fmt.Sprintf("%0*d%07.4f", degWidth, deg, mins), hemi
}

func encodeGGA(v GGA) string {
	lat, ns := fmtLatLon(v.Lat, true)
	lon, ew := fmtLatLon(v.Lon, false)
	altUnit, sepUnit := "", ""
	if v.AltM != nil {
		altUnit = "M"
	}
	if v.GeoidSepM != nil {
		sepUnit = "M"
	}
	return strings.Join([]string{
		tagFor(v.Talker, "GGA"), v.Time.String(), lat, ns, lon, ew,
		fmtI(v.Quality, 1), fmtI(v.NumSats, 2), fmtF(v.HDOP),
		fmtF(v.AltM), altUnit, fmtF(v.GeoidSepM), sepUnit, "", "",
	}, ",")
}

func encodeRMC(v RMC) string {
	lat, ns := fmtLatLon(v.Lat, true)
	lon, ew := fmtLatLon(v.Lon, false)
	return strings.Join([]string{
		tagFor(v.Talker, "RMC"), v.Time.String(), v.Status, lat, ns, lon, ew,
		fmtF(v.SpeedKt), fmtF(v.TrackDeg), v.Date.String(), "", "",
	}, ",")
}

func encodeGLL(v GLL) string {
	lat, ns := fmtLatLon(v.Lat, true)
	lon, ew := fmtLatLon(v.Lon, false)
	return strings.Join([]string{
		tagFor(v.Talker, "GLL"), lat, ns, lon, ew, v.Time.String(), v.Status,
	}, ",")
}

func encodeVTG(v VTG) string {
	return strings.Join([]string{
		tagFor(v.Talker, "VTG"),
		fmtF(v.TrackTrueDeg), "T", fmtF(v.TrackMagDeg), "M",
		fmtF(v.SpeedKt), "N", fmtF(v.SpeedKmh), "K",
	}, ",")
}

func encodeZDA(v ZDA) string {
	year := ""
	if v.Year != nil {
		year = fmt.Sprintf("%04d", *v.Year)
	}
	return strings.Join([]string{
		tagFor(v.Talker, "ZDA"), v.Time.String(),
		fmtI(v.Day, 2), fmtI(v.Month, 2), year, "00", "00",
	}, ",")
}

func encodeGSA(v GSA) string {
	fields := []string{tagFor(v.Talker, "GSA"), v.SelMode, fmtI(v.FixMode, 1)}
	for i := 0; i < 12; i++ {
		if i < len(v.PRNs) {
			fields = append(fields, fmt.Sprintf("%02d", v.PRNs[i]))
		} else {
			fields = append(fields, "")
		}
	}
	fields = append(fields, fmtF(v.PDOP), fmtF(v.HDOP), fmtF(v.VDOP))
	return strings.Join(fields, ",")
}

func encodeGSV(v GSV) string {
	fields := []string{
		tagFor(v.Talker, "GSV"),
		strconv.Itoa(v.TotalMsgs), strconv.Itoa(v.MsgNum),
		fmt.Sprintf("%02d", v.SatsInView),
	}
	for _, sat := range v.Sats {
		prn := sat.PRN
		fields = append(fields, fmtI(&prn, 2), fmtI(sat.ElevDeg, 2), fmtI(sat.AzimDeg, 3), fmtI(sat.SNRdB, 2))
	}
	return strings.Join(fields, ",")
}
