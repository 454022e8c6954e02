package nmea

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a UTC time-of-day as transmitted (hhmmss.sss). Valid is false when
// the field was empty, which is how receivers report "not available".
type Clock struct {
	Valid  bool
	Hour   int
	Minute int
	Second float64
}

func (c Clock) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02d%02d%06.3f", c.Hour, c.Minute, c.Second)
}

// Date is a UTC calendar date as transmitted (ddmmyy). Two-digit years are
// interpreted in 2000-2099.
type Date struct {
	Valid bool
	Day   int
	Month int
	Year  int
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return fmt.Sprintf("%02d%02d%02d", d.Day, d.Month, d.Year%100)
}

// field returns the raw field at index i, or "" when the sentence is short.
// Trailing fields are routinely omitted by some talkers.
func field(f []string, i int) string {
	if i < 0 || i >= len(f) {
		return ""
	}
	return strings.TrimSpace(f[i])
}

// optFloat decodes a numeric field. Empty is a valid "not available" and
// returns nil; malformed non-empty input is a field decode error.
func optFloat(f []string, i int) (*float64, *IngestError) {
	s := field(f, i)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errField(i, fmt.Sprintf("not a number: %q", s))
	}
	return &v, nil
}

func optInt(f []string, i int) (*int, *IngestError) {
	s := field(f, i)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errField(i, fmt.Sprintf("not an integer: %q", s))
	}
	return &v, nil
}

// optLatLon decodes a ddmm.mmmm/dddmm.mmmm coordinate plus hemisphere into
// signed decimal degrees. Both fields empty means not available; one empty
// or a malformed value is an error on the value's index.
func optLatLon(f []string, vi, hi int) (*float64, *IngestError) {
	v := field(f, vi)
	hemi := strings.ToUpper(field(f, hi))
	if v == "" && hemi == "" {
		return nil, nil
	}
	if v == "" || hemi == "" {
		return nil, errField(vi, "coordinate and hemisphere must both be present")
	}
	if hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W" {
		return nil, errField(hi, fmt.Sprintf("bad hemisphere %q", hemi))
	}

	// Degrees are everything before the last two integer digits; minutes are
	// the rest, including the fraction.
	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return nil, errField(vi, fmt.Sprintf("coordinate too short: %q", v))
	}
	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return nil, errField(vi, fmt.Sprintf("bad degrees in %q", v))
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return nil, errField(vi, fmt.Sprintf("bad minutes in %q", v))
	}
	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return &dec, nil
}

// optClock decodes hhmmss[.sss].
func optClock(f []string, i int) (Clock, *IngestError) {
	s := field(f, i)
	if s == "" {
		return Clock{}, nil
	}
	if len(s) < 6 {
		return Clock{}, errField(i, fmt.Sprintf("time too short: %q", s))
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[2:4])
	sec, err3 := strconv.ParseFloat(s[4:], 64)
	if err1 != nil || err2 != nil || err3 != nil || h > 23 || m > 59 || sec >= 61 {
		return Clock{}, errField(i, fmt.Sprintf("bad time: %q", s))
	}
	return Clock{Valid: true, Hour: h, Minute: m, Second: sec}, nil
}

// optDate decodes ddmmyy.
func optDate(f []string, i int) (Date, *IngestError) {
	s := field(f, i)
	if s == "" {
		return Date{}, nil
	}
	if len(s) != 6 {
		return Date{}, errField(i, fmt.Sprintf("bad date: %q", s))
	}
	d, err1 := strconv.Atoi(s[0:2])
	mo, err2 := strconv.Atoi(s[2:4])
	y, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil || d < 1 || d > 31 || mo < 1 || mo > 12 {
		return Date{}, errField(i, fmt.Sprintf("bad date: %q", s))
	}
	return Date{Valid: true, Day: d, Month: mo, Year: 2000 + y}, nil
}
