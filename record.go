package geostamp

import (
	"time"

	"github.com/pkg/errors"

	"github.com/arnauagrupocobra-tech/geostamp/exif"
	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
	"github.com/arnauagrupocobra-tech/geostamp/profile"
)

// ImageInfo holds the IFD0 fields of a Record.
type ImageInfo struct {
	Make             string
	Model            string
	Software         string
	DateTime         string
	ImageDescription string
	Orientation      int
}

// CaptureInfo holds the Exif IFD fields of a Record.
type CaptureInfo struct {
	ExposureTime    exif.Rational
	FNumber         exif.Rational
	ISOSpeedRatings int
	ExposureProgram int
	ExifVersion     string

	DateTimeOriginal    string
	DateTimeDigitized   string
	SubSecTimeOriginal  string
	OffsetTime          string
	OffsetTimeOriginal  string
	OffsetTimeDigitized string

	FocalLength     exif.Rational
	ApertureValue   exif.Rational
	ColorSpace      int
	PixelXDimension int
	PixelYDimension int
}

// GPSInfo holds the GPS IFD fields of a Record.
type GPSInfo struct {
	VersionID    []byte
	LatitudeRef  string
	Latitude     exif.Rational
	LongitudeRef string
	Longitude    exif.Rational
	DateStamp    string
	TimeStamp    exif.Rational
}

// ThumbnailInfo is the thumbnail IFD of a Record.
// Records never carry a thumbnail.
type ThumbnailInfo struct{}

// Record is the metadata written into a stamped image.
type Record struct {
	Image     ImageInfo
	Capture   CaptureInfo
	GPS       GPSInfo
	Thumbnail ThumbnailInfo
}

// NewRecord builds the metadata for an image of width×height pixels
// taken by the device p at the instant local (and utc) at c.
//
// The local and utc times must be the same instant, and offset must be
// the UTC offset of local in "±HH:MM" form.
func NewRecord(p profile.Profile, width, height int, local, utc time.Time, offset string, c Coordinate) (*Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, &InputError{Field: "size", Err: errors.Errorf("%dx%d", width, height)}
	}
	if !local.Equal(utc) {
		return nil, &InputError{Field: "time", Err: ErrTimeMismatch}
	}
	if o := FormatOffset(local); o != offset {
		return nil, &InputError{Field: "offset", Err: errors.Errorf("%q is not the offset %q of the local time", offset, o)}
	}

	stamp := local.Format(exif.TimeFormat)
	latref, lonref := exif.LatLongRefs(c.Lat, c.Lon)

	return &Record{
		Image: ImageInfo{
			Make:             p.Make,
			Model:            p.Model,
			Software:         p.Software,
			DateTime:         stamp,
			ImageDescription: p.Description,
			Orientation:      1,
		},
		Capture: CaptureInfo{
			ExposureTime:    p.ExposureTime,
			FNumber:         p.FNumber,
			ISOSpeedRatings: p.ISO,
			ExposureProgram: p.ExposureProgram,
			ExifVersion:     p.ExifVersion,

			DateTimeOriginal:    stamp,
			DateTimeDigitized:   stamp,
			SubSecTimeOriginal:  exif.SubSec(local),
			OffsetTime:          offset,
			OffsetTimeOriginal:  offset,
			OffsetTimeDigitized: offset,

			FocalLength:     p.FocalLength,
			ApertureValue:   p.ApertureValue,
			ColorSpace:      p.ColorSpace,
			PixelXDimension: width,
			PixelYDimension: height,
		},
		GPS: GPSInfo{
			VersionID:    []byte{2, 2, 0, 0},
			LatitudeRef:  latref,
			Latitude:     exif.ToDMS(c.Lat),
			LongitudeRef: lonref,
			Longitude:    exif.ToDMS(c.Lon),
			DateStamp:    exif.GPSDate(utc),
			TimeStamp:    exif.GPSTime(utc),
		},
	}, nil
}

// Fields returns the tags and values of r.
func (r *Record) Fields() []exif.Field {
	return []exif.Field{
		{Tag: exiftag.ImageDescription, Value: r.Image.ImageDescription},
		{Tag: exiftag.Make, Value: r.Image.Make},
		{Tag: exiftag.Model, Value: r.Image.Model},
		{Tag: exiftag.Orientation, Value: r.Image.Orientation},
		{Tag: exiftag.Software, Value: r.Image.Software},
		{Tag: exiftag.DateTime, Value: r.Image.DateTime},

		{Tag: exiftag.ExposureTime, Value: r.Capture.ExposureTime},
		{Tag: exiftag.FNumber, Value: r.Capture.FNumber},
		{Tag: exiftag.ExposureProgram, Value: r.Capture.ExposureProgram},
		{Tag: exiftag.ISOSpeedRatings, Value: r.Capture.ISOSpeedRatings},
		{Tag: exiftag.ExifVersion, Value: r.Capture.ExifVersion},
		{Tag: exiftag.DateTimeOriginal, Value: r.Capture.DateTimeOriginal},
		{Tag: exiftag.DateTimeDigitized, Value: r.Capture.DateTimeDigitized},
		{Tag: exiftag.OffsetTime, Value: r.Capture.OffsetTime},
		{Tag: exiftag.OffsetTimeOriginal, Value: r.Capture.OffsetTimeOriginal},
		{Tag: exiftag.OffsetTimeDigitized, Value: r.Capture.OffsetTimeDigitized},
		{Tag: exiftag.ApertureValue, Value: r.Capture.ApertureValue},
		{Tag: exiftag.FocalLength, Value: r.Capture.FocalLength},
		{Tag: exiftag.SubSecTimeOriginal, Value: r.Capture.SubSecTimeOriginal},
		{Tag: exiftag.ColorSpace, Value: r.Capture.ColorSpace},
		{Tag: exiftag.PixelXDimension, Value: r.Capture.PixelXDimension},
		{Tag: exiftag.PixelYDimension, Value: r.Capture.PixelYDimension},

		{Tag: exiftag.GPSVersionID, Value: exif.Byte(r.GPS.VersionID)},
		{Tag: exiftag.GPSLatitudeRef, Value: r.GPS.LatitudeRef},
		{Tag: exiftag.GPSLatitude, Value: r.GPS.Latitude},
		{Tag: exiftag.GPSLongitudeRef, Value: r.GPS.LongitudeRef},
		{Tag: exiftag.GPSLongitude, Value: r.GPS.Longitude},
		{Tag: exiftag.GPSTimeStamp, Value: r.GPS.TimeStamp},
		{Tag: exiftag.GPSDateStamp, Value: r.GPS.DateStamp},
	}
}

// MarshalExif encodes r as a big endian TIFF/Exif block.
// It returns an *EncodingError if a value does not fit its tag.
func (r *Record) MarshalExif() ([]byte, error) {
	p, err := exif.Encode(r.Fields()...)
	if err != nil {
		var ee *EncodingError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, errors.Wrap(err, "geostamp: encoding exif")
	}
	return p, nil
}
