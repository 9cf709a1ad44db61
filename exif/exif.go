// Package exif encodes and decodes Exif metadata as found
// in the APP1 segment of JPEG files.
package exif

import (
	"encoding/binary"

	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
)

// Field types
const (
	TypeByte      = exiftag.TypeByte
	TypeAscii     = exiftag.TypeAscii
	TypeShort     = exiftag.TypeShort
	TypeLong      = exiftag.TypeLong
	TypeRational  = exiftag.TypeRational
	TypeSByte     = exiftag.TypeSByte
	TypeUndef     = exiftag.TypeUndef
	TypeSShort    = exiftag.TypeSShort
	TypeSLong     = exiftag.TypeSLong
	TypeSRational = exiftag.TypeSRational
	TypeFloat     = exiftag.TypeFloat
	TypeDouble    = exiftag.TypeDouble
)

// Exif represents Exif metadata split into its directories.
type Exif struct {
	// ByteOrder of the values of all entries.
	ByteOrder binary.ByteOrder

	IFD0    Dir // main image
	IFD1    Dir // thumbnail
	Exif    Dir
	GPS     Dir
	Interop Dir

	// Thumb holds the raw thumbnail data referenced from IFD1.
	Thumb []byte
}

// Entry is a raw tagged field within a Dir.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32

	// Value is the raw value of the entry in the Exif byte order.
	Value []byte
}

// Set sets tag to v. The directory is selected using the
// upper 16 bits of tag. If v is nil, tag is removed.
//
// Set panics if the tag directory is unknown.
func (x *Exif) Set(tag uint32, v Value) {
	d := x.dir(tag)
	if d == nil {
		panic("exif: invalid tag directory")
	}
	t := uint16(tag)
	if v == nil {
		d.Remove(t)
		return
	}
	*d.EnsureTag(t) = entryFunc(x.ByteOrder)(tag, v)
}

// Tag returns the entry for tag, or nil if tag is missing from x.
func (x *Exif) Tag(tag uint32) *Tag {
	d := x.dir(tag)
	if d == nil {
		return nil
	}
	e := d.Tag(uint16(tag))
	if e == nil {
		return nil
	}
	return &Tag{ByteOrder: x.ByteOrder, E: *e}
}

func (x *Exif) dir(tag uint32) *Dir {
	switch tag & exiftag.DirMask {
	case exiftag.Tiff:
		return &x.IFD0
	case exiftag.Exif:
		return &x.Exif
	case exiftag.GPS:
		return &x.GPS
	case exiftag.Interop:
		return &x.Interop
	}
	return nil
}

func entryFunc(bo binary.ByteOrder) func(tag uint32, v Value) Entry {
	return func(tag uint32, v Value) Entry {
		return Entry{
			Tag:   uint16(tag),
			Type:  v.Type(),
			Count: v.Count(),
			Value: v.Bytes(bo),
		}
	}
}

// typeSize returns the number of bytes of count values of typ,
// or 0 for an unknown type.
func typeSize(typ uint16, count uint32) int {
	var n int
	switch typ {
	case TypeByte, TypeAscii, TypeSByte, TypeUndef:
		n = 1
	case TypeShort, TypeSShort:
		n = 2
	case TypeLong, TypeSLong, TypeFloat:
		n = 4
	case TypeRational, TypeSRational, TypeDouble:
		n = 8
	default:
		return 0
	}
	return n * int(count)
}
