package jpeg

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"os"
	"testing"

	"github.com/arnauagrupocobra-tech/geostamp/testutil"
)

var (
	jfif    = testutil.Segment(APP0, []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"))
	oldExif = testutil.Segment(APP1, append([]byte("Exif\x00\x00"), "MM\x00\x2aold"...))
	comment = testutil.Segment(0xfe, []byte("comment"))
	xmp     = testutil.Segment(APP1, []byte("http://ns.adobe.com/xap/1.0/\x00<x/>"))
)

func sampleJpeg(t *testing.T) []byte {
	return testutil.InsertSegments(testutil.JPEG(t, 64, 48), jfif, oldExif, comment, xmp)
}

func TestScanner(t *testing.T) {
	p := sampleJpeg(t)
	testScannerBytes(t, p)

	// fill bytes before a marker
	q := append(append([]byte(nil), p[:2]...), 0xff, 0xff)
	q = append(q, p[2:]...)
	testScannerBytes(t, q)
}

func TestScannerMedia(t *testing.T) {
	for _, fn := range testutil.MediaFileNames(t, ".jpg") {
		t.Log(fn)
		p, err := os.ReadFile(fn)
		if err != nil {
			t.Error(err)
			continue
		}
		testScannerBytes(t, p)
	}
}

// testScannerBytes tests if using Scanner.Bytes on
// the bytes of p yields the same bytes as the source.
func testScannerBytes(t *testing.T, p []byte) {
	s, err := NewScanner(bytes.NewReader(p))
	if err != nil {
		t.Error("NewScanner error:", err)
		return
	}

	dump := new(bytes.Buffer)
	var q []byte
	for s.Next() {
		if len(s.Bytes()) == 0 {
			t.Errorf("testScannerBytes got 0 bytes\n%s", dump.Bytes())
			return
		}
		fmt.Fprintf(dump, "%6d %02x %5d %.16x\n", len(q), s.Marker(), len(s.Bytes()), s.Bytes())

		if s.Marker() != 0 && s.Marker() != SOI {
			seg := s.Bytes()
			if l := int(seg[2])<<8 + int(seg[3]); l+2 != len(seg) {
				t.Errorf("segment len: want %v got %v", l+2, len(seg))
			}
		}
		q = append(q, s.Bytes()...)
	}
	if err := s.Err(); err != nil {
		t.Error("testScannerBytes finish error:", err)
		return
	}

	rest, err := io.ReadAll(s.Reader())
	if err != nil {
		t.Error(err)
		return
	}
	if len(rest) < 2 || rest[0] != 0xff || rest[1] != SOS {
		t.Errorf("scan data starts with %.4x, want ffda", rest)
	}
	q = append(q, rest...)

	if !bytes.Equal(p, q) {
		t.Errorf("bytes scanned with Scanner.Bytes differ from source\n%s", dump.Bytes())
	}
}

func TestNotJpeg(t *testing.T) {
	if _, err := NewScanner(bytes.NewReader([]byte("\x89PNG\r\n"))); err != ErrNotJpeg {
		t.Errorf("NewScanner got %v, want %v", err, ErrNotJpeg)
	}
	if _, err := NewScanner(bytes.NewReader(nil)); err != io.ErrUnexpectedEOF {
		t.Errorf("NewScanner got %v, want %v", err, io.ErrUnexpectedEOF)
	}
	if _, err := ExtractExif(bytes.NewReader([]byte("GIF89a"))); err != ErrNotJpeg {
		t.Errorf("ExtractExif got %v, want %v", err, ErrNotJpeg)
	}
}

func TestScannerTruncated(t *testing.T) {
	p := sampleJpeg(t)
	s, err := NewScanner(bytes.NewReader(p[:2+len(jfif)+10]))
	if err != nil {
		t.Fatal(err)
	}
	for s.Next() {
	}
	if s.Err() != io.ErrUnexpectedEOF {
		t.Errorf("Err got %v, want %v", s.Err(), io.ErrUnexpectedEOF)
	}
}

func TestReplaceExif(t *testing.T) {
	src := sampleJpeg(t)
	tiff := []byte("MM\x00\x2anew exif data")

	buf := new(bytes.Buffer)
	if err := ReplaceExif(buf, bytes.NewReader(src), tiff); err != nil {
		t.Fatal("ReplaceExif:", err)
	}
	out := buf.Bytes()

	got, err := ExtractExif(bytes.NewReader(out))
	if err != nil {
		t.Fatal("ExtractExif:", err)
	}
	if !bytes.Equal(got, tiff) {
		t.Errorf("ExtractExif got %q, want %q", got, tiff)
	}

	// SOI, JFIF and the new Exif come first, the old one is dropped
	var markers []byte
	var exifCount int
	s, err := NewScanner(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	for s.Next() {
		markers = append(markers, s.Marker())
		if s.IsChunk(APP1, ExifPrefix) {
			exifCount++
		}
	}
	if exifCount != 1 {
		t.Errorf("output has %d Exif segments, want 1", exifCount)
	}
	if len(markers) < 5 || markers[0] != SOI || markers[1] != APP0 || markers[2] != APP1 ||
		markers[3] != 0xfe || markers[4] != APP1 {
		t.Errorf("unexpected segment order % x", markers)
	}
	if !bytes.Contains(out, xmp) {
		t.Error("non-Exif APP1 segment dropped")
	}

	// the scan data is untouched
	if !bytes.HasSuffix(out, src[bytes.LastIndex(src, []byte{0xff, SOS}):]) {
		t.Error("scan data changed")
	}

	m, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal("decode output:", err)
	}
	if b := m.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("output bounds %v", b)
	}
}

func TestReplaceExifPlain(t *testing.T) {
	// image/jpeg writes no APP segments
	src := testutil.JPEG(t, 16, 16)
	tiff := []byte("II\x2a\x00")

	buf := new(bytes.Buffer)
	if err := ReplaceExif(buf, bytes.NewReader(src), tiff); err != nil {
		t.Fatal("ReplaceExif:", err)
	}

	want := append([]byte{0xff, SOI}, testutil.Segment(APP1, append(append([]byte(nil), ExifPrefix...), tiff...))...)
	if !bytes.HasPrefix(buf.Bytes(), want) {
		t.Errorf("output starts with %.16x, want %.16x", buf.Bytes(), want)
	}
	if buf.Len() != len(src)+len(want)-2 {
		t.Errorf("output length %d, want %d", buf.Len(), len(src)+len(want)-2)
	}
}

func TestNoExif(t *testing.T) {
	if _, err := ExtractExif(bytes.NewReader(testutil.JPEG(t, 8, 8))); err != ErrNoExif {
		t.Errorf("ExtractExif got %v, want %v", err, ErrNoExif)
	}
}

func TestTooLong(t *testing.T) {
	if err := WriteChunk(io.Discard, APP1, make([]byte, 65533)); err != nil {
		t.Errorf("WriteChunk of max length failed: %v", err)
	}
	if err := WriteChunk(io.Discard, APP1, make([]byte, 65534)); err != ErrTooLong {
		t.Errorf("WriteChunk got %v, want %v", err, ErrTooLong)
	}

	tiff := make([]byte, 65533-len(ExifPrefix)+1)
	err := ReplaceExif(io.Discard, bytes.NewReader(testutil.JPEG(t, 8, 8)), tiff)
	if err != ErrTooLong {
		t.Errorf("ReplaceExif got %v, want %v", err, ErrTooLong)
	}
}
