// Package exiftag lists the Exif tags known to this module.
//
// A tag is a uint32 value holding the directory (namespace) in its
// upper 16 bits and the numeric tag code within the directory in the
// lower 16 bits, eg. Make == Tiff|0x010f.
package exiftag

import "fmt"

// Directories
const (
	Tiff    = 1 << 16 // IFD0 (and IFD1)
	Exif    = 2 << 16 // Exif sub-IFD
	GPS     = 3 << 16 // GPS sub-IFD
	Interop = 4 << 16 // Interoperability sub-IFD

	DirMask = 0xffff0000
)

// Field types, from the TIFF 6.0 specification.
const (
	TypeByte      = 1
	TypeAscii     = 2
	TypeShort     = 3
	TypeLong      = 4
	TypeRational  = 5
	TypeSByte     = 6
	TypeUndef     = 7
	TypeSShort    = 8
	TypeSLong     = 9
	TypeSRational = 10
	TypeFloat     = 11
	TypeDouble    = 12
)

// IFD0 tags
const (
	ImageDescription = Tiff | 0x010e
	Make             = Tiff | 0x010f
	Model            = Tiff | 0x0110
	Orientation      = Tiff | 0x0112
	XResolution      = Tiff | 0x011a
	YResolution      = Tiff | 0x011b
	ResolutionUnit   = Tiff | 0x0128
	Software         = Tiff | 0x0131
	DateTime         = Tiff | 0x0132
	YCbCrPositioning = Tiff | 0x0213

	ExifIFDPointer    = Tiff | 0x8769
	GPSInfoIFDPointer = Tiff | 0x8825
	InteropIFDPointer = Tiff | 0xa005
)

// Exif sub-IFD tags
const (
	ExposureTime            = Exif | 0x829a
	FNumber                 = Exif | 0x829d
	ExposureProgram         = Exif | 0x8822
	ISOSpeedRatings         = Exif | 0x8827
	ExifVersion             = Exif | 0x9000
	DateTimeOriginal        = Exif | 0x9003
	DateTimeDigitized       = Exif | 0x9004
	OffsetTime              = Exif | 0x9010
	OffsetTimeOriginal      = Exif | 0x9011
	OffsetTimeDigitized     = Exif | 0x9012
	ComponentsConfiguration = Exif | 0x9101
	ApertureValue           = Exif | 0x9202
	FocalLength             = Exif | 0x920a
	SubSecTime              = Exif | 0x9290
	SubSecTimeOriginal      = Exif | 0x9291
	SubSecTimeDigitized     = Exif | 0x9292
	FlashpixVersion         = Exif | 0xa000
	ColorSpace              = Exif | 0xa001
	PixelXDimension         = Exif | 0xa002
	PixelYDimension         = Exif | 0xa003
)

// GPS sub-IFD tags
const (
	GPSVersionID    = GPS | 0x0000
	GPSLatitudeRef  = GPS | 0x0001
	GPSLatitude     = GPS | 0x0002
	GPSLongitudeRef = GPS | 0x0003
	GPSLongitude    = GPS | 0x0004
	GPSAltitudeRef  = GPS | 0x0005
	GPSAltitude     = GPS | 0x0006
	GPSTimeStamp    = GPS | 0x0007
	GPSDateStamp    = GPS | 0x001d
)

// Info describes the value a tag must hold.
type Info struct {
	Name string

	// Type is the field type required by the tag.
	Type uint16

	// Count is the required number of values, or 0 if any count is allowed.
	// For ASCII tags it includes the terminating NUL.
	Count uint32
}

var info = map[uint32]Info{
	ImageDescription:  {"ImageDescription", TypeAscii, 0},
	Make:              {"Make", TypeAscii, 0},
	Model:             {"Model", TypeAscii, 0},
	Orientation:       {"Orientation", TypeShort, 1},
	XResolution:       {"XResolution", TypeRational, 1},
	YResolution:       {"YResolution", TypeRational, 1},
	ResolutionUnit:    {"ResolutionUnit", TypeShort, 1},
	Software:          {"Software", TypeAscii, 0},
	DateTime:          {"DateTime", TypeAscii, 20},
	YCbCrPositioning:  {"YCbCrPositioning", TypeShort, 1},
	ExifIFDPointer:    {"ExifIFDPointer", TypeLong, 1},
	GPSInfoIFDPointer: {"GPSInfoIFDPointer", TypeLong, 1},
	InteropIFDPointer: {"InteropIFDPointer", TypeLong, 1},

	ExposureTime:            {"ExposureTime", TypeRational, 1},
	FNumber:                 {"FNumber", TypeRational, 1},
	ExposureProgram:         {"ExposureProgram", TypeShort, 1},
	ISOSpeedRatings:         {"ISOSpeedRatings", TypeShort, 0},
	ExifVersion:             {"ExifVersion", TypeUndef, 4},
	DateTimeOriginal:        {"DateTimeOriginal", TypeAscii, 20},
	DateTimeDigitized:       {"DateTimeDigitized", TypeAscii, 20},
	OffsetTime:              {"OffsetTime", TypeAscii, 7},
	OffsetTimeOriginal:      {"OffsetTimeOriginal", TypeAscii, 7},
	OffsetTimeDigitized:     {"OffsetTimeDigitized", TypeAscii, 7},
	ComponentsConfiguration: {"ComponentsConfiguration", TypeUndef, 4},
	ApertureValue:           {"ApertureValue", TypeRational, 1},
	FocalLength:             {"FocalLength", TypeRational, 1},
	SubSecTime:              {"SubSecTime", TypeAscii, 0},
	SubSecTimeOriginal:      {"SubSecTimeOriginal", TypeAscii, 0},
	SubSecTimeDigitized:     {"SubSecTimeDigitized", TypeAscii, 0},
	FlashpixVersion:         {"FlashpixVersion", TypeUndef, 4},
	ColorSpace:              {"ColorSpace", TypeShort, 1},
	PixelXDimension:         {"PixelXDimension", TypeLong, 1},
	PixelYDimension:         {"PixelYDimension", TypeLong, 1},

	GPSVersionID:    {"GPSVersionID", TypeByte, 4},
	GPSLatitudeRef:  {"GPSLatitudeRef", TypeAscii, 2},
	GPSLatitude:     {"GPSLatitude", TypeRational, 3},
	GPSLongitudeRef: {"GPSLongitudeRef", TypeAscii, 2},
	GPSLongitude:    {"GPSLongitude", TypeRational, 3},
	GPSAltitudeRef:  {"GPSAltitudeRef", TypeByte, 1},
	GPSAltitude:     {"GPSAltitude", TypeRational, 1},
	GPSTimeStamp:    {"GPSTimeStamp", TypeRational, 3},
	GPSDateStamp:    {"GPSDateStamp", TypeAscii, 11},
}

// Lookup returns the Info for tag t.
func Lookup(t uint32) (Info, bool) {
	i, ok := info[t]
	return i, ok
}

// Id returns the name of tag t, or a hex representation
// of t for unknown tags.
func Id(t uint32) string {
	if i, ok := info[t]; ok {
		return i.Name
	}
	return fmt.Sprintf("%s.%04x", DirName(t), t&0xffff)
}

// DirName returns the name of the directory of tag t.
func DirName(t uint32) string {
	switch t & DirMask {
	case Tiff:
		return "Tiff"
	case Exif:
		return "Exif"
	case GPS:
		return "GPS"
	case Interop:
		return "Interop"
	}
	return "?"
}
