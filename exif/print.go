package exif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
)

// Fdump writes the entries of x in human readable form to w.
func Fdump(w io.Writer, x *Exif) {
	f := Formatter{x.ByteOrder}
	f.showTags(w, "IFD0", exiftag.Tiff, x.IFD0)
	f.showTags(w, "Exif", exiftag.Exif, x.Exif)
	f.showTags(w, "GPS", exiftag.GPS, x.GPS)
	f.showTags(w, "Interop", exiftag.Interop, x.Interop)
	f.showTags(w, "IFD1", exiftag.Tiff, x.IFD1)

	if x.Thumb != nil {
		fmt.Fprintf(w, "thumb: %v bytes\n", len(x.Thumb))
	}
}

// Sdump returns the entries of x in human readable form.
func Sdump(x *Exif) string {
	buf := new(bytes.Buffer)
	Fdump(buf, x)
	return buf.String()
}

func (f Formatter) showTags(w io.Writer, pfx string, dir uint32, d Dir) {
	if len(d) == 0 {
		return
	}
	fmt.Fprintln(w, pfx+":")
	for _, e := range d {
		name := fmtName(dir, e.Tag, 24)
		fmt.Fprintf(w, "  %s %-4s %s\n", name, fmtType(e.Type, e.Count), f.Value(e.Type, e.Count, e.Value))
	}
}

func fmtName(dir uint32, tag uint16, maxlen int) string {
	id := exiftag.Id(dir | uint32(tag))
	return fmt.Sprintf("%04x %-*.*s", tag, maxlen, maxlen, id)
}

func fmtType(typ uint16, count uint32) string {
	var n string
	switch typ {
	case TypeByte:
		n = "b"
	case TypeAscii:
		n = "a"
	case TypeShort:
		n = "s"
	case TypeLong:
		n = "l"
	case TypeRational:
		n = "r"
	case TypeUndef:
		n = "u"
	case TypeSLong:
		n = "L"
	case TypeSRational:
		n = "R"
	case TypeSByte:
		n = "B"
	case TypeSShort:
		n = "S"
	case TypeFloat, TypeDouble:
		n = "f"
	default:
		n = "?"
	}
	return fmt.Sprintf("%d%s", count, n)
}

// Formatter formats raw entry values.
type Formatter struct {
	binary.ByteOrder
}

// RawValue formats p as hex bytes grouped by the size of typ.
func (f Formatter) RawValue(typ uint16, cnt uint32, p []byte) string {
	var g int
	switch typ {
	case TypeShort, TypeSShort:
		g = 2
	case TypeLong, TypeSLong, TypeRational, TypeSRational, TypeFloat, TypeDouble:
		g = 4
	default:
		g = 1
	}

	buf := new(bytes.Buffer)
	buf.WriteRune('[')
	for i, b := range p {
		if i != 0 && i%g == 0 {
			buf.WriteRune(' ')
		}
		fmt.Fprintf(buf, "%02x", b)
	}
	buf.WriteRune(']')
	return buf.String()
}

// Value formats the value p of type typ.
// Invalid values are shown with RawValue.
func (f Formatter) Value(typ uint16, count uint32, p []byte) string {
	n := typeSize(typ, count)
	if n <= 0 || len(p) < n {
		return f.RawValue(typ, count, p)
	}

	var values []interface{}
	cnt := int(count)

	switch typ {

	case TypeAscii:
		if p[cnt-1] != 0 {
			// without NUL
			return f.RawValue(typ, count, p)
		}
		return fmt.Sprintf("%q", p[:cnt-1])

	case TypeRational, TypeSRational:
		for i := 0; i < cnt; i++ {
			num := f.ByteOrder.Uint32(p[8*i:])
			den := f.ByteOrder.Uint32(p[8*i+4:])
			if typ == TypeRational {
				values = append(values, fmt.Sprintf("%d/%d", num, den))
			} else {
				values = append(values, fmt.Sprintf("%d/%d", int32(num), int32(den)))
			}
		}

	case TypeShort, TypeSShort:
		for i := 0; i < cnt; i++ {
			v := f.ByteOrder.Uint16(p[2*i:])
			if typ == TypeSShort {
				values = append(values, int16(v))
			} else {
				values = append(values, v)
			}
		}

	case TypeLong, TypeSLong, TypeFloat:
		for i := 0; i < cnt; i++ {
			v := f.ByteOrder.Uint32(p[4*i:])
			switch typ {
			case TypeSLong:
				values = append(values, int32(v))
			case TypeFloat:
				values = append(values, math.Float32frombits(v))
			default:
				values = append(values, v)
			}
		}

	case TypeDouble:
		for i := 0; i < cnt; i++ {
			values = append(values, math.Float64frombits(f.ByteOrder.Uint64(p[8*i:])))
		}

	default:
		// TypeByte, TypeUndef, TypeSByte
		return fmt.Sprintf("[% x]", p[:n])
	}

	buf := new(bytes.Buffer)
	buf.WriteRune('[')
	for i, e := range values {
		if i != 0 {
			buf.WriteRune(' ')
		}
		fmt.Fprint(buf, e)
	}
	buf.WriteRune(']')
	return buf.String()
}
