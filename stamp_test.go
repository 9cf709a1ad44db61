package geostamp

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnauagrupocobra-tech/geostamp/exif"
	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
	"github.com/arnauagrupocobra-tech/geostamp/jpeg"
	"github.com/arnauagrupocobra-tech/geostamp/testutil"
)

func newTestStamper(t *testing.T, opt Options) *Stamper {
	opt.Seed = [2]uint64{1, 2}
	s, err := NewStamper(opt)
	require.NoError(t, err)
	s.Now = func() time.Time {
		return time.Date(2024, time.March, 15, 13, 30, 45, 123e6, time.UTC)
	}
	return s
}

func TestStamp(t *testing.T) {
	s := newTestStamper(t, Options{})

	res, err := s.Stamp(testutil.JPEG(t, 64, 48), madrid)
	require.NoError(t, err)

	assert.Equal(t, "imagen_20240315_143045.jpg", res.Filename)
	assert.Equal(t, "+01:00", FormatOffset(res.Time))
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)
	assert.LessOrEqual(t, haversine(madrid, res.Coordinate), DefaultRadius)

	m, format, err := image.Decode(bytes.NewReader(res.Image))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 64, 48), m.Bounds())

	tiff, err := jpeg.ExtractExif(bytes.NewReader(res.Image))
	require.NoError(t, err)
	x, err := exif.DecodeBytes(tiff)
	require.NoError(t, err)

	lat, lon, ok := x.LatLong()
	require.True(t, ok)
	assert.InDelta(t, res.Coordinate.Lat, lat, 0.01/3600)
	assert.InDelta(t, res.Coordinate.Lon, lon, 0.01/3600)
	assert.Equal(t, []uint32{64}, x.Tag(exiftag.PixelXDimension).Long())
	assert.Equal(t, []uint32{48}, x.Tag(exiftag.PixelYDimension).Long())

	// the JPEG is readable by an independent decoder
	gx, err := goexif.Decode(bytes.NewReader(res.Image))
	require.NoError(t, err)
	tag, err := gx.Get(goexif.DateTimeOriginal)
	require.NoError(t, err)
	dt, err := tag.StringVal()
	require.NoError(t, err)
	assert.Equal(t, "2024:03:15 14:30:45", dt)

	tag, err = gx.Get(goexif.GPSTimeStamp)
	require.NoError(t, err)
	for i, want := range []int64{13, 30, 45} {
		num, den, err := tag.Rat2(i)
		require.NoError(t, err)
		assert.Equal(t, want, num/den)
	}

	tag, err = gx.Get(goexif.PixelXDimension)
	require.NoError(t, err)
	w, err := tag.Int(0)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
}

func TestStampFormats(t *testing.T) {
	s := newTestStamper(t, Options{})
	for name, src := range map[string][]byte{
		"png":       testutil.PNG(t, 20, 10, false),
		"png alpha": testutil.PNG(t, 20, 10, true),
	} {
		res, err := s.Stamp(src, madrid)
		require.NoError(t, err, name)

		m, format, err := image.Decode(bytes.NewReader(res.Image))
		require.NoError(t, err, name)
		assert.Equal(t, "jpeg", format, name)
		assert.Equal(t, image.Rect(0, 0, 20, 10), m.Bounds(), name)
	}
}

func TestStampErrors(t *testing.T) {
	s := newTestStamper(t, Options{})
	src := testutil.JPEG(t, 8, 8)

	res, err := s.Stamp(nil, madrid)
	assert.Nil(t, res)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "image", ie.Field)

	res, err = s.Stamp([]byte("not an image"), madrid)
	assert.Nil(t, res)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
	assert.True(t, IsInputError(err))

	res, err = s.Stamp(src, Coordinate{Lat: 120, Lon: 0})
	assert.Nil(t, res)
	assert.ErrorAs(t, err, &ie)

	res, err = s.Stamp(src, Coordinate{Lat: 90, Lon: 0})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPolarLatitude)
}

func TestStampMaxPixels(t *testing.T) {
	s := newTestStamper(t, Options{})

	// the header alone would make the decoder allocate about 14 GB
	res, err := s.Stamp(testutil.PNGHeader(60000, 60000), madrid)
	assert.Nil(t, res)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.True(t, IsInputError(err))

	s = newTestStamper(t, Options{MaxPixels: 64 * 48})
	_, err = s.Stamp(testutil.JPEG(t, 64, 48), madrid)
	assert.NoError(t, err)
	_, err = s.Stamp(testutil.JPEG(t, 64, 49), madrid)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = NewStamper(Options{MaxPixels: -1})
	assert.Error(t, err)
}

func TestStampAutoOrient(t *testing.T) {
	tiff, err := exif.Encode(exif.Field{Tag: exiftag.Orientation, Value: 6})
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.ReplaceExif(buf, bytes.NewReader(testutil.JPEG(t, 64, 48)), tiff))
	src := buf.Bytes()

	res, err := newTestStamper(t, Options{}).Stamp(src, madrid)
	require.NoError(t, err)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)

	res, err = newTestStamper(t, Options{AutoOrient: true}).Stamp(src, madrid)
	require.NoError(t, err)
	assert.Equal(t, 48, res.Width)
	assert.Equal(t, 64, res.Height)

	x, err := goexif.Decode(bytes.NewReader(res.Image))
	require.NoError(t, err)
	tag, err := x.Get(goexif.Orientation)
	require.NoError(t, err)
	o, err := tag.Int(0)
	require.NoError(t, err)
	assert.Equal(t, 1, o)
}

func TestStampOptions(t *testing.T) {
	loc, err := ParseOffset("-05:00")
	require.NoError(t, err)

	s := newTestStamper(t, Options{Zone: loc, FilenamePrefix: "img_", Radius: 10})
	res, err := s.Stamp(testutil.JPEG(t, 8, 8), madrid)
	require.NoError(t, err)
	assert.Equal(t, "img_20240315_083045.jpg", res.Filename)
	assert.LessOrEqual(t, haversine(madrid, res.Coordinate), 10.0)

	_, err = NewStamper(Options{Quality: 101})
	assert.Error(t, err)
	_, err = NewStamper(Options{Radius: -1})
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{200, 10, 20, 0})
	m.SetNRGBA(1, 0, color.NRGBA{1, 2, 3, 128})

	f := flatten(m)
	assert.Equal(t, color.NRGBA{200, 10, 20, 255}, f.At(0, 0))
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, f.At(1, 0))

	opaque := image.NewGray(image.Rect(0, 0, 1, 1))
	assert.Same(t, opaque, flatten(opaque))
}
