// Package testutil provides image fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Gradient returns a w×h image with a colour gradient.
// If alpha is true, the alpha channel fades from opaque to transparent.
func Gradient(w, h int, alpha bool) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = uint8(255 - 255*x/w)
			}
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255 * x / w),
				G: uint8(255 * y / h),
				B: 128,
				A: a,
			})
		}
	}
	return m
}

// JPEG returns a w×h JPEG image.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, Gradient(w, h, false), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal("jpeg encode:", err)
	}
	return buf.Bytes()
}

// PNG returns a w×h PNG image, with transparency if alpha is true.
func PNG(t testing.TB, w, h int, alpha bool) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, Gradient(w, h, alpha)); err != nil {
		t.Fatal("png encode:", err)
	}
	return buf.Bytes()
}

// PNGHeader returns a PNG that declares a w×h RGBA image
// but carries no pixel data.
func PNGHeader(w, h int) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	p := []byte("\x89PNG\r\n\x1a\n")
	p = pngChunk(p, "IHDR", ihdr)
	p = pngChunk(p, "IDAT", nil)
	return pngChunk(p, "IEND", nil)
}

func pngChunk(p []byte, typ string, data []byte) []byte {
	p = binary.BigEndian.AppendUint32(p, uint32(len(data)))
	start := len(p)
	p = append(p, typ...)
	p = append(p, data...)
	return binary.BigEndian.AppendUint32(p, crc32.ChecksumIEEE(p[start:]))
}

// Segment returns a JPEG segment with marker and payload.
func Segment(marker byte, payload []byte) []byte {
	n := len(payload) + 2
	p := []byte{0xff, marker, byte(n >> 8), byte(n)}
	return append(p, payload...)
}

// InsertSegments inserts segs right after the SOI marker of the JPEG in p.
func InsertSegments(p []byte, segs ...[]byte) []byte {
	r := append([]byte(nil), p[:2]...)
	for _, s := range segs {
		r = append(r, s...)
	}
	return append(r, p[2:]...)
}

// MediaFileNames returns the files with extension ext
// in the directory named by MEDIA_TEST.
// It skips the test if there are none.
func MediaFileNames(t *testing.T, ext string) []string {
	root := os.Getenv("MEDIA_TEST")
	if root == "" {
		t.Skip("MEDIA_TEST not set")
	}

	var files []string
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.Mode().IsRegular() && strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Skipf("%s: %v", root, err)
	}

	if len(files) == 0 {
		t.Skip("no test files found")
	}
	sort.Strings(files)
	return files
}
