package exif

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestTagGetters(t *testing.T) {
	testTagGetter(t, TypeByte, 2, []byte{1, 2}, []byte{1, 2}, func(tag *Tag) {
		if have, want := tag.Byte(), []byte{1, 2}; !bytes.Equal(have, want) {
			t.Errorf("Byte got %v, want %v", have, want)
		}
	})

	testTagGetter(t, TypeUndef, 2, []byte{1, 2}, []byte{1, 2}, func(tag *Tag) {
		if have, want := tag.Undef(), []byte{1, 2}; !bytes.Equal(have, want) {
			t.Errorf("Undef got %v, want %v", have, want)
		}
	})

	testTagGetter(t, TypeAscii, 6, []byte("hello\x00"), []byte("hello\x00"), func(tag *Tag) {
		if have, ok := tag.Ascii(); !ok || have != "hello" {
			t.Errorf("Ascii got %q, want %q", have, "hello")
		}
	})

	testTagGetter(t, TypeShort, 1, []byte{1, 2}, []byte{2, 1}, func(tag *Tag) {
		testUint32s(t, "Short", u16to32(tag.Short()), []uint32{0x102})
	})

	testTagGetter(t, TypeLong, 1, []byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}, func(tag *Tag) {
		testUint32s(t, "Long", tag.Long(), []uint32{0x1020304})
	})

	testTagGetter(t, TypeSLong, 1, []byte{0xff, 0xff, 0xff, 0xfe}, []byte{0xfe, 0xff, 0xff, 0xff}, func(tag *Tag) {
		if have := tag.SLong(); len(have) != 1 || have[0] != -2 {
			t.Errorf("SLong got %v, want [-2]", have)
		}
	})

	testTagGetter(t, TypeRational, 1,
		[]byte{1, 2, 3, 4, 5, 6, 7, 8},
		[]byte{4, 3, 2, 1, 8, 7, 6, 5},
		func(tag *Tag) {
			testUint32s(t, "Rational", tag.Rational(), []uint32{0x1020304, 0x5060708})
		})
}

func TestTagWrongType(t *testing.T) {
	tag := &Tag{
		ByteOrder: binary.BigEndian,
		E:         Entry{Type: TypeShort, Count: 1, Value: []byte{0, 1}},
	}
	if _, ok := tag.Ascii(); ok {
		t.Error("Short tag read as Ascii")
	}
	if tag.Rational() != nil {
		t.Error("Short tag read as Rational")
	}

	// value length does not match count
	tag.E.Count = 2
	if tag.Valid() || tag.Short() != nil {
		t.Error("invalid tag considered valid")
	}

	var nilTag *Tag
	if nilTag.Valid() || nilTag.Short() != nil {
		t.Error("nil tag considered valid")
	}
	if _, ok := nilTag.Ascii(); ok {
		t.Error("nil tag has Ascii value")
	}
}

func testTagGetter(t *testing.T, typ uint16, count uint32, beraw, leraw []byte, f func(tag *Tag)) {
	testTagGetterBo(t, binary.BigEndian, typ, count, beraw, f)
	testTagGetterBo(t, binary.LittleEndian, typ, count, leraw, f)
}

func testTagGetterBo(t *testing.T, bo binary.ByteOrder, typ uint16, count uint32, raw []byte, f func(tag *Tag)) {
	tag := &Tag{
		ByteOrder: bo,
		E: Entry{
			Type:  typ,
			Count: count,
			Value: raw,
		},
	}
	if !tag.Valid() {
		t.Errorf("tag %s thinks it is invalid", fmtType(typ, count))
		return
	}
	if !tag.IsType(typ) {
		t.Errorf("tag thinks it is not %s", fmtType(typ, count))
		return
	}
	f(tag)
}

func testUint32s(t *testing.T, name string, have, want []uint32) {
	if len(have) != len(want) {
		t.Errorf("%s got %v, want %v", name, have, want)
		return
	}
	for i := range have {
		if have[i] != want[i] {
			t.Errorf("%s got %v, want %v", name, have, want)
			return
		}
	}
}

func u16to32(v []uint16) []uint32 {
	r := make([]uint32, len(v))
	for i := range v {
		r[i] = uint32(v[i])
	}
	return r
}
