// Package orient bakes an Exif orientation into the pixels of an image.
package orient

import (
	"image"

	"golang.org/x/image/draw"
)

// Normal is the orientation of an image that needs no change.
const Normal = 1

// Orient returns im transformed so that it displays upright
// when its Exif orientation is Normal.
//
// It performs the following operation based on o:
//
//	2: flip horizontal
//	3: rotate 180°
//	4: flip vertical
//	5: transpose
//	6: rotate 90°
//	7: transverse (transpose and rotate 180°)
//	8: rotate 270°
//
// It returns a new *image.NRGBA for the values of o above,
// or im itself otherwise.
func Orient(im image.Image, o int) image.Image {
	if o < 2 || o > 8 {
		return im
	}

	src := asNRGBA(im)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	dw, dh := w, h
	if IsTranspose(o) {
		dw, dh = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch o {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			si := sy*src.Stride + sx*4
			di := y*dst.Stride + x*4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// IsTranspose reports whether orientation o swaps width and height.
func IsTranspose(o int) bool {
	return 5 <= o && o <= 8
}

// asNRGBA returns im as an NRGBA image with its origin at 0,0.
func asNRGBA(im image.Image) *image.NRGBA {
	if m, ok := im.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := im.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Rect, im, b.Min, draw.Src)
	return m
}
