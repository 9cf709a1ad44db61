package exif

import (
	"fmt"
	"math"
	"time"

	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
)

// TimeFormat is the layout of Exif date/time values.
const TimeFormat = "2006:01:02 15:04:05"

// DateFormat is the layout of GPSDateStamp.
const DateFormat = "2006:01:02"

// OffsetFormat is the layout of the OffsetTime tags.
const OffsetFormat = "-07:00"

// secondFractions is the denominator for the seconds of ToDMS,
// storing coordinates to about 0.3 cm precision on the equator.
const secondFractions = 100

// ToDMS converts the absolute value of the decimal degrees val
// into a degrees, minutes, seconds rational triplet.
// Degrees and minutes are whole numbers, seconds are rounded to 1/100.
func ToDMS(val float64) Rational {
	val = math.Abs(val)

	deg := math.Floor(val)
	min := math.Floor((val - deg) * 60)
	sec := (val - deg - min/60) * 3600

	r := Rational{
		uint32(deg), 1,
		uint32(min), 1,
		uint32(math.Round(sec * secondFractions)), secondFractions,
	}

	// carry rounding overflow
	if r[4] >= 60*secondFractions {
		r[4] -= 60 * secondFractions
		r[2]++
	}
	if r[2] >= 60 {
		r[2] -= 60
		r[0]++
	}

	return r
}

// FromDMS converts a degrees, minutes, seconds rational triplet
// into decimal degrees.
func FromDMS(r Rational) (val float64, ok bool) {
	if len(r) != 6 {
		return 0, false
	}
	div := 1.0
	for i := 0; i < 3; i++ {
		num, denom := r[2*i], r[2*i+1]
		if denom == 0 {
			return 0, false
		}
		val += float64(num) / (div * float64(denom))
		div *= 60
	}
	return val, true
}

// LatLongRefs returns the GPS reference strings for lat and lon.
func LatLongRefs(lat, lon float64) (latref, lonref string) {
	latref, lonref = "N", "E"
	if lat < 0 {
		latref = "S"
	}
	if lon < 0 {
		lonref = "W"
	}
	return
}

// LatLong reports the GPS latitude and longitude.
func (x *Exif) LatLong() (lat, long float64, ok bool) {
	latsig, ok1 := locSig(x.Tag(exiftag.GPSLatitudeRef), "N", "S")
	lonsig, ok2 := locSig(x.Tag(exiftag.GPSLongitudeRef), "E", "W")
	latabs, ok3 := FromDMS(x.Tag(exiftag.GPSLatitude).Rational())
	lonabs, ok4 := FromDMS(x.Tag(exiftag.GPSLongitude).Rational())
	if ok1 && ok2 && ok3 && ok4 {
		return latsig * latabs, lonsig * lonabs, true
	}
	return 0, 0, false
}

// SetLatLong sets the GPS version, latitude and longitude.
func (x *Exif) SetLatLong(lat, lon float64) {
	latref, lonref := LatLongRefs(lat, lon)
	x.Set(exiftag.GPSVersionID, Byte{2, 2, 0, 0})
	x.Set(exiftag.GPSLatitudeRef, Ascii(latref))
	x.Set(exiftag.GPSLatitude, ToDMS(lat))
	x.Set(exiftag.GPSLongitudeRef, Ascii(lonref))
	x.Set(exiftag.GPSLongitude, ToDMS(lon))
}

// GPSTime returns the GPSTimeStamp value of t in UTC.
// Fractional seconds are truncated.
func GPSTime(t time.Time) Rational {
	h, m, s := t.UTC().Clock()
	return Rational{uint32(h), 1, uint32(m), 1, uint32(s), 1}
}

// GPSDate returns the GPSDateStamp value of t in UTC.
func GPSDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// SetGPSDateTime sets GPSDateStamp and GPSTimeStamp from t.
func (x *Exif) SetGPSDateTime(t time.Time) {
	x.Set(exiftag.GPSDateStamp, Ascii(GPSDate(t)))
	x.Set(exiftag.GPSTimeStamp, GPSTime(t))
}

// GPSDateTime reports the UTC time from GPSDateStamp and GPSTimeStamp.
func (x *Exif) GPSDateTime() (t time.Time, ok bool) {
	ds, ok := x.Tag(exiftag.GPSDateStamp).Ascii()
	if !ok {
		return time.Time{}, false
	}

	d, err := time.Parse(DateFormat, ds)
	if err != nil {
		return time.Time{}, false
	}

	r := x.Tag(exiftag.GPSTimeStamp).Rational()
	if len(r) != 6 || r[1] == 0 || r[3] == 0 || r[5] == 0 {
		return time.Time{}, false
	}
	secs := r.Float64(0)*3600 + r.Float64(1)*60 + r.Float64(2)
	return d.Add(time.Duration(secs * float64(time.Second))), true
}

// SubSec returns the milliseconds of t as a three digit string.
func SubSec(t time.Time) string {
	return fmt.Sprintf("%03d", t.Nanosecond()/1e6)
}

// Time reports the time from the timeTag and the optional subSecTag
// in location loc.
func (x *Exif) Time(timeTag, subSecTag uint32, loc *time.Location) (t time.Time, ok bool) {
	s, ok := x.Tag(timeTag).Ascii()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(TimeFormat, s, loc)
	if err != nil {
		return time.Time{}, false
	}

	subs, ok := x.Tag(subSecTag).Ascii()
	if !ok {
		return t, true
	}

	var nanos time.Duration
	res := time.Second
	for _, r := range subs {
		if r < '0' || '9' < r {
			break
		}
		res /= 10
		if res == 0 {
			break
		}
		nanos += time.Duration(r-'0') * res
	}
	return t.Add(nanos), true
}

func locSig(t *Tag, pos, neg string) (sig float64, ok bool) {
	s, ok := t.Ascii()
	if !ok {
		return 0, false
	}
	switch s {
	case pos:
		sig = 1
	case neg:
		sig = -1
	default:
		return 0, false
	}
	return sig, true
}
