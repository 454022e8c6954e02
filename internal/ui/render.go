package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"nmeacli/internal/nav"
)

const notAvailable = "<not available>"

// Render draws the monitor as plain text: a status pane, the satellite
// table, and the most recent raw sentences (newest first). It is a pure
// function of its inputs so it can be tested without a terminal.
func Render(snap nav.Snapshot, health nav.Health, recent []string, now time.Time) string {
	var b strings.Builder

	b.WriteString("== Status ==\n")
	fmt.Fprintf(&b, "datetime   : %s\n", datetimeStr(snap))
	fmt.Fprintf(&b, "latlonalt  : %s\n", latLonAltStr(snap))
	fmt.Fprintf(&b, "dop (h/v/p): %s\n", dopStr(snap))
	fmt.Fprintf(&b, "motion     : %s\n", motionStr(snap))
	fmt.Fprintf(&b, "fix        : %s\n", fixStr(snap))
	fmt.Fprintf(&b, "health     : %s\n", healthStr(health))
	fmt.Fprintf(&b, "age        : %s\n", ageStr(snap, now))

	fmt.Fprintf(&b, "\n== Satellites (used=%s, in view=%d) ==\n",
		intOrDash(snap.SatsUsed), len(snap.SatsInView))
	for _, sat := range snap.SatsInView {
		fmt.Fprintf(&b, "prn %2d  elev %3s  azim %3s  snr %3s\n",
			sat.PRN, intOrDash(sat.ElevDeg), intOrDash(sat.AzimDeg), intOrDash(sat.SNRdB))
	}

	b.WriteString("\n== Messages ==\n")
	for i := len(recent) - 1; i >= 0; i-- {
		b.WriteString(recent[i])
		b.WriteByte('\n')
	}
	return b.String()
}

func datetimeStr(snap nav.Snapshot) string {
	if snap.UTC == nil {
		return notAvailable
	}
	return snap.UTC.Format("2006-01-02 15:04:05.000") + " UTC"
}

func latLonAltStr(snap nav.Snapshot) string {
	if snap.LatDeg == nil || snap.LonDeg == nil {
		return notAvailable
	}
	alt := "-"
	if snap.AltM != nil {
		alt = fmt.Sprintf("%.1fm", *snap.AltM)
	}
	return fmt.Sprintf("%.6f / %.6f / %s", *snap.LatDeg, *snap.LonDeg, alt)
}

func dopStr(snap nav.Snapshot) string {
	if snap.HDOP == nil && snap.VDOP == nil && snap.PDOP == nil {
		return notAvailable
	}
	return fmt.Sprintf("%s / %s / %s",
		optFloatStr(snap.HDOP, "%.2f"), optFloatStr(snap.VDOP, "%.2f"), optFloatStr(snap.PDOP, "%.2f"))
}

func motionStr(snap nav.Snapshot) string {
	if snap.SpeedKt == nil && snap.TrackDeg == nil {
		return notAvailable
	}
	return fmt.Sprintf("%s kt @ %s°",
		optFloatStr(snap.SpeedKt, "%.1f"), optFloatStr(snap.TrackDeg, "%.0f"))
}

func fixStr(snap nav.Snapshot) string {
	if snap.FixQuality == nil && snap.FixMode == nil {
		return notAvailable
	}
	quality := "?"
	if snap.FixQuality != nil {
		switch *snap.FixQuality {
		case 0:
			quality = "none"
		case 1:
			quality = "GPS"
		case 2:
			quality = "DGPS"
		default:
			quality = fmt.Sprintf("quality %d", *snap.FixQuality)
		}
	}
	mode := ""
	if snap.FixMode != nil {
		switch *snap.FixMode {
		case 2:
			mode = " (2D)"
		case 3:
			mode = " (3D)"
		}
	}
	return quality + mode
}

func healthStr(h nav.Health) string {
	parts := []string{fmt.Sprintf("accepted %d", h.Accepted)}
	if h.Unrecognized > 0 {
		parts = append(parts, fmt.Sprintf("unrecognized %d", h.Unrecognized))
	}
	kinds := make([]string, 0, len(h.Errors))
	for k := range h.Errors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s %d", k, h.Errors[k]))
	}
	if h.LastError != "" {
		parts = append(parts, "last: "+h.LastError)
	}
	return strings.Join(parts, ", ")
}

// ageStr shows per-group staleness so a slow GSV cadence is visible without
// making the position look stale.
func ageStr(snap nav.Snapshot, now time.Time) string {
	groups := []struct {
		name string
		at   time.Time
	}{
		{"pos", snap.Updated.Position},
		{"alt", snap.Updated.Altitude},
		{"time", snap.Updated.Time},
		{"motion", snap.Updated.Motion},
		{"quality", snap.Updated.Quality},
		{"sats", snap.Updated.Satellites},
	}
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.at.IsZero() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1fs", g.name, now.Sub(g.at).Seconds()))
	}
	if len(parts) == 0 {
		return notAvailable
	}
	return strings.Join(parts, ", ")
}

func optFloatStr(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
