package exif

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Value is a typed value that can be stored in an Entry.
type Value interface {
	Type() uint16
	Count() uint32

	// Bytes returns the raw value in byte order bo.
	Bytes(bo binary.ByteOrder) []byte
}

// Byte is a value of TypeByte.
type Byte []byte

func (v Byte) Type() uint16                     { return TypeByte }
func (v Byte) Count() uint32                    { return uint32(len(v)) }
func (v Byte) Bytes(bo binary.ByteOrder) []byte { return append([]byte(nil), v...) }

// Undef is a value of TypeUndef.
type Undef []byte

func (v Undef) Type() uint16                     { return TypeUndef }
func (v Undef) Count() uint32                    { return uint32(len(v)) }
func (v Undef) Bytes(bo binary.ByteOrder) []byte { return append([]byte(nil), v...) }

// Ascii is a value of TypeAscii. The terminating NUL is added by Bytes.
type Ascii string

func (v Ascii) Type() uint16  { return TypeAscii }
func (v Ascii) Count() uint32 { return uint32(len(v) + 1) }
func (v Ascii) Bytes(bo binary.ByteOrder) []byte {
	p := make([]byte, len(v)+1)
	copy(p, v)
	return p
}

// Short is a value of TypeShort.
type Short []uint16

func (v Short) Type() uint16  { return TypeShort }
func (v Short) Count() uint32 { return uint32(len(v)) }
func (v Short) Bytes(bo binary.ByteOrder) []byte {
	p := make([]byte, 2*len(v))
	for i, n := range v {
		bo.PutUint16(p[2*i:], n)
	}
	return p
}

// Long is a value of TypeLong.
type Long []uint32

func (v Long) Type() uint16  { return TypeLong }
func (v Long) Count() uint32 { return uint32(len(v)) }
func (v Long) Bytes(bo binary.ByteOrder) []byte {
	p := make([]byte, 4*len(v))
	for i, n := range v {
		bo.PutUint32(p[4*i:], n)
	}
	return p
}

// Rational is a value of TypeRational.
// It holds numerator/denominator pairs, therefore its length must be even.
type Rational []uint32

func (v Rational) Type() uint16  { return TypeRational }
func (v Rational) Count() uint32 { return uint32(len(v) / 2) }
func (v Rational) Bytes(bo binary.ByteOrder) []byte {
	return Long(v[:len(v)&^1]).Bytes(bo)
}

// Float64 returns the i-th rational of v as a float64.
func (v Rational) Float64(i int) float64 {
	return float64(v[2*i]) / float64(v[2*i+1])
}

// String formats v as space separated num/denom pairs.
func (v Rational) String() string {
	var s []string
	for i := 0; i+1 < len(v); i += 2 {
		s = append(s, fmt.Sprintf("%d/%d", v[i], v[i+1]))
	}
	return strings.Join(s, " ")
}

// MarshalText implements encoding.TextMarshaler.
func (v Rational) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses space separated num/denom pairs,
// such as "1/221" or "40/1 25/1 1234/100". A plain integer n is read as n/1.
func (v *Rational) UnmarshalText(p []byte) error {
	var r Rational
	for _, f := range strings.Fields(string(p)) {
		ns, ds := f, "1"
		if i := strings.IndexByte(f, '/'); i >= 0 {
			ns, ds = f[:i], f[i+1:]
		}
		n, err := strconv.ParseUint(ns, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "exif: invalid rational %q", f)
		}
		d, err := strconv.ParseUint(ds, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "exif: invalid rational %q", f)
		}
		if d == 0 {
			return errors.Errorf("exif: zero denominator in %q", f)
		}
		r = append(r, uint32(n), uint32(d))
	}
	if len(r) == 0 {
		return errors.New("exif: empty rational")
	}
	*v = r
	return nil
}

// Tag is an Entry together with its byte order.
//
// The getters of Tag return zero values if the
// Tag is nil or is not of the requested type.
type Tag struct {
	ByteOrder binary.ByteOrder
	E         Entry
}

// Valid reports whether the value length of t matches its type and count.
func (t *Tag) Valid() bool {
	if t == nil {
		return false
	}
	n := typeSize(t.E.Type, t.E.Count)
	return n != 0 && n == len(t.E.Value)
}

// IsType reports whether t is valid and of type typ.
func (t *Tag) IsType(typ uint16) bool {
	return t.Valid() && t.E.Type == typ
}

// Byte returns the value of a TypeByte tag.
func (t *Tag) Byte() []byte {
	if !t.IsType(TypeByte) {
		return nil
	}
	return t.E.Value
}

// Undef returns the value of a TypeUndef tag.
func (t *Tag) Undef() []byte {
	if !t.IsType(TypeUndef) {
		return nil
	}
	return t.E.Value
}

// Ascii returns the value of a TypeAscii tag without the terminating NUL.
func (t *Tag) Ascii() (string, bool) {
	if !t.IsType(TypeAscii) {
		return "", false
	}
	p := t.E.Value
	for i, b := range p {
		if b == 0 {
			p = p[:i]
			break
		}
	}
	return string(p), true
}

// Short returns the values of a TypeShort tag.
func (t *Tag) Short() []uint16 {
	if !t.IsType(TypeShort) {
		return nil
	}
	v := make([]uint16, t.E.Count)
	for i := range v {
		v[i] = t.ByteOrder.Uint16(t.E.Value[2*i:])
	}
	return v
}

// Long returns the values of a TypeLong tag.
func (t *Tag) Long() []uint32 {
	if !t.IsType(TypeLong) {
		return nil
	}
	return t.uint32s()
}

// SLong returns the values of a TypeSLong tag.
func (t *Tag) SLong() []int32 {
	if !t.IsType(TypeSLong) {
		return nil
	}
	u := t.uint32s()
	v := make([]int32, len(u))
	for i := range u {
		v[i] = int32(u[i])
	}
	return v
}

// Rational returns the values of a TypeRational tag
// as numerator/denominator pairs.
func (t *Tag) Rational() Rational {
	if !t.IsType(TypeRational) {
		return nil
	}
	return Rational(t.uint32s())
}

func (t *Tag) uint32s() []uint32 {
	v := make([]uint32, len(t.E.Value)/4)
	for i := range v {
		v[i] = t.ByteOrder.Uint32(t.E.Value[4*i:])
	}
	return v
}
