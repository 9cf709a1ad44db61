package exif

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"

	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
)

// Field is a tag with a Go value to be encoded.
//
// The accepted values depend on the type required by the tag:
//
//	ASCII      string or Ascii
//	BYTE       []byte, string or Byte
//	UNDEFINED  []byte, string or Undef
//	SHORT      integer, slice or array of integers, or Short
//	LONG       integer, slice or array of integers, or Long
//	RATIONAL   Rational
type Field struct {
	Tag   uint32
	Value interface{}
}

// EncodingError is returned when the value of a Field
// does not match the type required by its tag.
type EncodingError struct {
	Tag    uint32
	Value  interface{}
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("exif: can't encode %s value %#v: %s", exiftag.Id(e.Tag), e.Value, e.Reason)
}

// Encode validates fields and encodes them as big endian Exif.
//
// All fields are checked before encoding starts. If any of them is invalid,
// an *EncodingError is returned and no data.
func Encode(fields ...Field) ([]byte, error) {
	x, err := FromFields(binary.BigEndian, fields...)
	if err != nil {
		return nil, err
	}
	return x.EncodeBytes()
}

// FromFields creates Exif with byte order bo from fields.
// It returns an *EncodingError if a field value is invalid for its tag.
func FromFields(bo binary.ByteOrder, fields ...Field) (*Exif, error) {
	values := make([]Value, len(fields))
	for i, f := range fields {
		v, err := convert(f.Tag, f.Value)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	x := &Exif{ByteOrder: bo}
	for i, f := range fields {
		x.Set(f.Tag, values[i])
	}
	return x, nil
}

func convert(tag uint32, val interface{}) (Value, error) {
	fail := func(format string, arg ...interface{}) (Value, error) {
		return nil, &EncodingError{Tag: tag, Value: val, Reason: fmt.Sprintf(format, arg...)}
	}

	info, ok := exiftag.Lookup(tag)
	if !ok {
		return fail("unknown tag")
	}
	switch tag {
	case exiftag.ExifIFDPointer, exiftag.GPSInfoIFDPointer, exiftag.InteropIFDPointer:
		return fail("sub-IFD pointers are set by the encoder")
	}
	if val == nil {
		return fail("missing value")
	}

	var v Value
	switch info.Type {

	case TypeAscii:
		var s string
		switch x := val.(type) {
		case string:
			s = x
		case Ascii:
			s = string(x)
		default:
			return fail("want string, got %T", val)
		}
		if strings.IndexByte(s, 0) >= 0 {
			return fail("string contains NUL")
		}
		v = Ascii(s)

	case TypeByte, TypeUndef:
		var p []byte
		switch x := val.(type) {
		case []byte:
			p = x
		case string:
			p = []byte(x)
		case Byte:
			p = x
		case Undef:
			p = x
		default:
			return fail("want bytes, got %T", val)
		}
		if info.Type == TypeByte {
			v = Byte(p)
		} else {
			v = Undef(p)
		}

	case TypeShort:
		u, err := uints(val, 1<<16-1)
		if err != "" {
			return fail("%s", err)
		}
		s := make(Short, len(u))
		for i := range u {
			s[i] = uint16(u[i])
		}
		v = s

	case TypeLong:
		u, err := uints(val, 1<<32-1)
		if err != "" {
			return fail("%s", err)
		}
		l := make(Long, len(u))
		for i := range u {
			l[i] = uint32(u[i])
		}
		v = l

	case TypeRational:
		r, ok := val.(Rational)
		if !ok {
			return fail("want Rational, got %T", val)
		}
		if len(r) == 0 || len(r)%2 != 0 {
			return fail("rational needs numerator/denominator pairs")
		}
		for i := 1; i < len(r); i += 2 {
			if r[i] == 0 {
				return fail("zero denominator")
			}
		}
		v = r

	default:
		return fail("unsupported type %d", info.Type)
	}

	if v.Count() == 0 {
		return fail("empty value")
	}
	if info.Count != 0 && v.Count() != info.Count {
		return fail("count is %d, want %d", v.Count(), info.Count)
	}
	return v, nil
}

// uints converts an integer or a slice of integers to uint64 values.
// It returns a non-empty reason if v is not an integer or
// if a value is out of the range [0, max].
func uints(v interface{}, max uint64) ([]uint64, string) {
	switch x := v.(type) {
	case Short:
		u := make([]uint64, len(x))
		for i := range x {
			u[i] = uint64(x[i])
		}
		return checkMax(u, max)
	case Long:
		u := make([]uint64, len(x))
		for i := range x {
			u[i] = uint64(x[i])
		}
		return checkMax(u, max)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		u := make([]uint64, rv.Len())
		for i := range u {
			n, reason := uintValue(rv.Index(i))
			if reason != "" {
				return nil, reason
			}
			u[i] = n
		}
		return checkMax(u, max)
	}
	n, reason := uintValue(rv)
	if reason != "" {
		return nil, reason
	}
	return checkMax([]uint64{n}, max)
}

func uintValue(rv reflect.Value) (uint64, string) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, fmt.Sprintf("negative value %d", n)
		}
		return uint64(n), ""
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), ""
	case reflect.Float32, reflect.Float64:
		return 0, fmt.Sprintf("non-integer value %v", rv.Float())
	}
	return 0, fmt.Sprintf("want integer, got %s", rv.Type())
}

func checkMax(u []uint64, max uint64) ([]uint64, string) {
	for _, n := range u {
		if n > max {
			return nil, fmt.Sprintf("value %d out of range", n)
		}
	}
	return u, ""
}
