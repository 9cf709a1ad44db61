package geostamp

import (
	"bytes"
	"image"
	_ "image/gif"
	stdjpeg "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	goexif "github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/arnauagrupocobra-tech/geostamp/jpeg"
	"github.com/arnauagrupocobra-tech/geostamp/orient"
	"github.com/arnauagrupocobra-tech/geostamp/profile"
)

// DefaultQuality is the JPEG quality of stamped images.
const DefaultQuality = 95

// DefaultFilenamePrefix starts the file names of stamped images.
const DefaultFilenamePrefix = "imagen_"

// DefaultMaxPixels is the largest image size accepted by a Stamper.
const DefaultMaxPixels = 178956970

// filenameTime is the time layout in file names.
const filenameTime = "20060102_150405"

// Options configure a Stamper.
type Options struct {
	// Profile provides the camera fields.
	Profile profile.Profile

	// Zone is the fixed zone of the generated local times.
	// If nil, DefaultOffset is used.
	Zone *time.Location

	// Radius is the jitter radius in metres, DefaultRadius if zero.
	Radius float64

	// Quality is the JPEG quality, DefaultQuality if zero.
	Quality int

	FilenamePrefix string

	// MaxPixels limits the width×height of source images,
	// DefaultMaxPixels if zero.
	MaxPixels int64

	// AutoOrient bakes the Exif orientation of the source into the pixels.
	AutoOrient bool

	// Seed seeds the jitter generator. A zero Seed uses a random one.
	Seed [2]uint64
}

// Stamper re-encodes images with generated metadata.
// It is safe for concurrent use.
type Stamper struct {
	opt    Options
	jitter *Jitterer

	// Now returns the current time. It is time.Now by default.
	Now func() time.Time
}

// Result is a stamped image.
type Result struct {
	Filename   string
	Image      []byte     // JPEG data
	Coordinate Coordinate // jittered position written to the metadata
	Time       time.Time  // local capture time written to the metadata

	Width, Height int
}

// NewStamper returns a Stamper using opt.
func NewStamper(opt Options) (*Stamper, error) {
	if opt.Profile.Name == "" {
		opt.Profile = profile.GalaxyA54
	}
	if err := opt.Profile.Validate(); err != nil {
		return nil, err
	}
	if opt.Zone == nil {
		loc, err := ParseOffset(DefaultOffset)
		if err != nil {
			return nil, err
		}
		opt.Zone = loc
	}
	if opt.Radius == 0 {
		opt.Radius = DefaultRadius
	}
	if opt.Quality == 0 {
		opt.Quality = DefaultQuality
	}
	if opt.Quality < 1 || opt.Quality > 100 {
		return nil, errors.Errorf("geostamp: invalid jpeg quality %d", opt.Quality)
	}
	if opt.MaxPixels == 0 {
		opt.MaxPixels = DefaultMaxPixels
	}
	if opt.MaxPixels < 0 {
		return nil, errors.Errorf("geostamp: invalid pixel limit %d", opt.MaxPixels)
	}
	if opt.FilenamePrefix == "" {
		opt.FilenamePrefix = DefaultFilenamePrefix
	}
	if opt.Seed == [2]uint64{} {
		opt.Seed = [2]uint64{rand.Uint64(), rand.Uint64()}
	}

	// the block size depends on the profile only
	t0 := time.Unix(0, 0).In(opt.Zone)
	rec, err := NewRecord(opt.Profile, 1, 1, t0, t0.UTC(), FormatOffset(t0), Coordinate{})
	if err != nil {
		return nil, err
	}
	if _, err := rec.MarshalExif(); err != nil {
		return nil, errors.Wrapf(err, "geostamp: profile %q", opt.Profile.Name)
	}

	// check radius before the first request
	if _, err := Jitter(rand.New(rand.NewPCG(0, 0)), Coordinate{}, opt.Radius); err != nil {
		return nil, err
	}

	return &Stamper{
		opt:    opt,
		jitter: NewJitterer(opt.Seed[0], opt.Seed[1], opt.Radius),
		Now:    time.Now,
	}, nil
}

// Profile returns the device profile of s.
func (s *Stamper) Profile() profile.Profile {
	return s.opt.Profile
}

// Stamp decodes img, and returns it as a JPEG carrying metadata
// of the profile of s, the current time and a position jittered around c.
//
// Errors are *InputError for invalid arguments, *DecodeError
// if img can't be decoded and *EncodingError if the metadata is invalid.
func (s *Stamper) Stamp(img []byte, c Coordinate) (*Result, error) {
	if len(img) == 0 {
		return nil, &InputError{Field: "image", Err: ErrEmptyImage}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// check the size before the decoder allocates the pixels
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if n := int64(cfg.Width) * int64(cfg.Height); n > s.opt.MaxPixels {
		return nil, &DecodeError{Err: errors.Wrapf(ErrTooManyPixels, "%dx%d exceeds %d",
			cfg.Width, cfg.Height, s.opt.MaxPixels)}
	}

	m, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	if s.opt.AutoOrient {
		m = orient.Orient(m, sourceOrientation(img))
	}
	m = flatten(m)

	b := m.Bounds()
	now := s.Now().In(s.opt.Zone)

	jc, err := s.jitter.Jitter(c)
	if err != nil {
		return nil, err
	}

	rec, err := NewRecord(s.opt.Profile, b.Dx(), b.Dy(), now, now.UTC(), FormatOffset(now), jc)
	if err != nil {
		return nil, err
	}
	tiff, err := rec.MarshalExif()
	if err != nil {
		return nil, err
	}

	raw := new(bytes.Buffer)
	if err := stdjpeg.Encode(raw, m, &stdjpeg.Options{Quality: s.opt.Quality}); err != nil {
		return nil, errors.Wrap(err, "geostamp: encoding jpeg")
	}

	out := new(bytes.Buffer)
	out.Grow(raw.Len() + len(tiff) + 16)
	if err := jpeg.ReplaceExif(out, raw, tiff); err != nil {
		return nil, errors.Wrap(err, "geostamp: embedding exif")
	}

	return &Result{
		Filename:   Filename(s.opt.FilenamePrefix, now),
		Image:      out.Bytes(),
		Coordinate: jc,
		Time:       now,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}

// Filename returns the name of an image stamped at t.
func Filename(prefix string, t time.Time) string {
	return prefix + t.Format(filenameTime) + ".jpg"
}

// sourceOrientation returns the Exif orientation of img,
// or orient.Normal if it has none.
func sourceOrientation(img []byte) int {
	x, err := goexif.Decode(bytes.NewReader(img))
	if err != nil {
		return orient.Normal
	}
	tag, err := x.Get(goexif.Orientation)
	if err != nil {
		return orient.Normal
	}
	o, err := tag.Int(0)
	if err != nil {
		return orient.Normal
	}
	return o
}

// flatten returns m without transparency. The colour channels of
// translucent pixels are kept as they are, as if alpha was dropped.
func flatten(m image.Image) image.Image {
	if o, ok := m.(interface{ Opaque() bool }); ok && o.Opaque() {
		return m
	}

	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := m.(*image.NRGBA); ok {
		// keep colour of fully transparent pixels
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	} else {
		draw.Draw(dst, dst.Rect, m, b.Min, draw.Src)
	}
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
