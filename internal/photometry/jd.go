package photometry

import "time"

// JulianDate converts a wall-clock instant to a Julian date using the
// Fliegel & Van Flandern algorithm. Sub-second precision is irrelevant
// at the scale of nightly photometry.
func JulianDate(t time.Time) float64 {
	utc := t.UTC()
	y := utc.Year()
	m := int(utc.Month())
	d := float64(utc.Day()) +
		(float64(utc.Hour())+(float64(utc.Minute())+float64(utc.Second())/60.0)/60.0)/24.0

	if m <= 2 {
		y--
		m += 12
	}

	a := y / 100
	b := 2 - a + a/4 // Gregorian calendar correction

	return float64(int(365.25*float64(y+4716))) + float64(int(30.6001*float64(m+1))) + d + float64(b) - 1524.5
}
