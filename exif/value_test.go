package exif

import (
	"encoding/binary"
	"testing"
)

func TestRationalText(t *testing.T) {
	cases := []struct {
		src  string
		want Rational
	}{
		{"1/221", Rational{1, 221}},
		{"40", Rational{40, 1}},
		{" 40/1  25/1 3604/100 ", Rational{40, 1, 25, 1, 3604, 100}},
	}
	for _, c := range cases {
		var r Rational
		if err := r.UnmarshalText([]byte(c.src)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", c.src, err)
			continue
		}
		if r.String() != c.want.String() {
			t.Errorf("UnmarshalText(%q) = %v, want %v", c.src, r, c.want)
		}
	}

	for _, src := range []string{"", "1/0", "a/2", "1/b", "-1/2", "1.8"} {
		var r Rational
		if err := r.UnmarshalText([]byte(src)); err == nil {
			t.Errorf("UnmarshalText(%q) succeeded with %v", src, r)
		}
	}

	p, err := Rational{18, 10}.MarshalText()
	if err != nil || string(p) != "18/10" {
		t.Errorf("MarshalText = %q, %v", p, err)
	}
}

func TestValueBytes(t *testing.T) {
	bo := binary.BigEndian
	if p := Ascii("N").Bytes(bo); string(p) != "N\x00" {
		t.Errorf("Ascii bytes %q", p)
	}
	if n := Ascii("N").Count(); n != 2 {
		t.Errorf("Ascii count %d, want 2", n)
	}
	if p := (Rational{1, 2}).Bytes(bo); len(p) != 8 || p[3] != 1 || p[7] != 2 {
		t.Errorf("Rational bytes %v", p)
	}
	if p := (Short{0x102}).Bytes(binary.LittleEndian); p[0] != 2 || p[1] != 1 {
		t.Errorf("Short bytes %v", p)
	}
	if f := (Rational{1, 4, 18, 10}).Float64(1); f != 1.8 {
		t.Errorf("Float64 = %v, want 1.8", f)
	}
}
