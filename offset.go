package geostamp

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/arnauagrupocobra-tech/geostamp/exif"
)

// DefaultOffset is the UTC offset used when none is configured.
const DefaultOffset = "+01:00"

// Offsets outside this range are not used by any time zone.
const (
	minOffset = -12 * 3600
	maxOffset = 14 * 3600
)

// ParseOffset parses a UTC offset such as "+01:00", "-0530", "+02" or "Z",
// and returns a fixed zone named after its canonical "±HH:MM" form.
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	for _, l := range []string{
		"Z07:00",
		"Z0700",
		"Z07",
	} {
		t, err := time.Parse(l, s)
		if err != nil {
			continue
		}
		_, secs := t.Zone()
		if secs < minOffset || secs > maxOffset {
			return nil, &InputError{Field: "offset", Err: errors.Errorf("%q out of range", s)}
		}
		return time.FixedZone(t.Format(exif.OffsetFormat), secs), nil
	}
	return nil, &InputError{Field: "offset", Err: errors.Errorf("can't parse %q", s)}
}

// FormatOffset returns the UTC offset of t as "±HH:MM".
func FormatOffset(t time.Time) string {
	return t.Format(exif.OffsetFormat)
}
