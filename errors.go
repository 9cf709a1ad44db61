package geostamp

import (
	"github.com/pkg/errors"

	"github.com/arnauagrupocobra-tech/geostamp/exif"
)

var (
	// ErrEmptyImage is reported for requests without image data.
	ErrEmptyImage = errors.New("empty image")

	// ErrPolarLatitude is reported when the longitude offset of a jitter
	// can't be computed because the latitude is at a pole.
	ErrPolarLatitude = errors.New("latitude too close to a pole")

	// ErrTimeMismatch is reported when the local and UTC
	// times of a record are not the same instant.
	ErrTimeMismatch = errors.New("local and UTC times differ")

	// ErrTooManyPixels is reported for images larger than
	// the pixel limit of a Stamper.
	ErrTooManyPixels = errors.New("image has too many pixels")
)

// InputError reports a missing or malformed input value.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return "geostamp: invalid " + e.Field + ": " + e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// DecodeError reports image data that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "geostamp: decoding image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodingError reports a metadata value that does not
// match the type required by its tag.
type EncodingError = exif.EncodingError

// IsInputError reports whether err is caused by invalid input,
// such as an *InputError or a *DecodeError.
func IsInputError(err error) bool {
	var ie *InputError
	var de *DecodeError
	return errors.As(err, &ie) || errors.As(err, &de)
}
