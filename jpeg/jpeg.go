// Package jpeg reads and rewrites the marker segments of JPEG files.
package jpeg

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrNotJpeg is returned if the file is not a jpeg file.
	ErrNotJpeg = errors.New("jpeg: missing start of image marker")

	// ErrFormat is returned if a segment is malformed.
	ErrFormat = errors.New("jpeg: invalid segment")

	// ErrTooLong is returned if a chunk is too long to be written in a jpeg file.
	ErrTooLong = errors.New("jpeg: encoded length too long")

	// ErrNoExif is returned by ExtractExif if there is no Exif segment in the file.
	ErrNoExif = errors.New("jpeg: no exif segment")
)

// Markers used by this package.
const (
	SOI  = 0xd8 // start of image
	EOI  = 0xd9 // end of image
	SOS  = 0xda // start of scan
	APP0 = 0xe0
	APP1 = 0xe1
)

// ExifPrefix starts the payload of an APP1 segment holding Exif.
var ExifPrefix = []byte("Exif\x00\x00")

// JFIFPrefix starts the payload of the JFIF APP0 segment.
var JFIFPrefix = []byte("JFIF\x00")

// maxChunk is the longest payload a segment may carry.
const maxChunk = 65535 - 2

// Scanner reads the header segments of a JPEG stream, up to the start of scan.
type Scanner struct {
	r *bufio.Reader

	seg    []byte // current segment with marker
	marker byte   // marker of seg, or 0 for padding
	ofs    int    // payload offset in seg

	started bool
	done    bool
	err     error
}

// NewScanner returns a Scanner reading from r.
// It returns ErrNotJpeg if r does not start with SOI.
func NewScanner(r io.Reader) (*Scanner, error) {
	br := bufio.NewReader(r)
	p, err := br.Peek(2)
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if p[0] != 0xff || p[1] != SOI {
		return nil, ErrNotJpeg
	}
	return &Scanner{r: br}, nil
}

// Next reads the next segment. It returns false at the start of scan,
// the end of image or on error.
//
// Bytes between segments that are not part of any marker are
// returned as a segment with Marker 0.
func (j *Scanner) Next() bool {
	if j.done || j.err != nil {
		return false
	}

	j.seg, j.marker, j.ofs = nil, 0, 0

	if !j.started {
		j.started = true
		j.seg = make([]byte, 2)
		if _, j.err = io.ReadFull(j.r, j.seg); j.err != nil {
			return false
		}
		j.marker = SOI
		j.ofs = 2
		return true
	}

	// padding before the next marker
	var pad []byte
	for {
		p, err := j.r.Peek(2)
		if err != nil {
			if err == io.EOF {
				if len(p) == 0 && len(pad) == 0 {
					// file without scan data
					j.done = true
					return false
				}
				err = io.ErrUnexpectedEOF
			}
			j.err = err
			return false
		}
		if p[0] == 0xff && p[1] != 0xff && p[1] != 0 {
			break
		}
		c, _ := j.r.ReadByte()
		pad = append(pad, c)
	}
	if len(pad) != 0 {
		j.seg = pad
		return true
	}

	p, _ := j.r.Peek(2)
	m := p[1]
	if m == SOS {
		// leave SOS to Reader
		j.done = true
		return false
	}

	if m == EOI || m == 0x01 || (0xd0 <= m && m <= 0xd7) {
		// marker without content
		j.seg = make([]byte, 2)
		io.ReadFull(j.r, j.seg)
		j.marker, j.ofs = m, 2
		if m == EOI {
			j.done = true
		}
		return true
	}

	p, err := j.r.Peek(4)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		j.err = err
		return false
	}
	n := int(p[2])<<8 | int(p[3])
	if n < 2 {
		j.err = ErrFormat
		return false
	}

	j.seg = make([]byte, 2+n)
	if _, err := io.ReadFull(j.r, j.seg); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		j.err = err
		return false
	}
	j.marker, j.ofs = m, 4
	return true
}

// Marker returns the marker of the current segment, or 0 for padding.
func (j *Scanner) Marker() byte {
	return j.marker
}

// Bytes returns the current segment including its marker and length.
// The returned slice must not be modified.
func (j *Scanner) Bytes() []byte {
	return j.seg
}

// Payload returns the data of the current segment after its length.
func (j *Scanner) Payload() []byte {
	return j.seg[j.ofs:]
}

// IsChunk reports whether the current segment has the
// specified marker and its payload starts with pfx.
func (j *Scanner) IsChunk(marker byte, pfx []byte) bool {
	return j.marker == marker && bytes.HasPrefix(j.Payload(), pfx)
}

// Reader returns a reader for the data following the last segment,
// starting with the SOS marker.
func (j *Scanner) Reader() io.Reader {
	return j.r
}

// Err returns the first error encountered during Next.
func (j *Scanner) Err() error {
	return j.err
}

// WriteChunk writes a segment with marker and payload chunkdata to w.
func WriteChunk(w io.Writer, marker byte, chunkdata []byte) error {
	if len(chunkdata) > maxChunk {
		return ErrTooLong
	}
	n := len(chunkdata) + 2

	buf := []byte{0xff, marker, byte(n >> 8), byte(n)}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	_, err := w.Write(chunkdata)
	return err
}

// ReplaceExif copies the JPEG from r to w, replacing its Exif with tiff.
//
// The new Exif segment is written after SOI and the JFIF segment, if any.
// Previous Exif segments are dropped, other segments are copied unchanged.
func ReplaceExif(w io.Writer, r io.Reader, tiff []byte) error {
	if len(ExifPrefix)+len(tiff) > maxChunk {
		return ErrTooLong
	}

	j, err := NewScanner(r)
	if err != nil {
		return err
	}

	written := false
	writeExif := func() error {
		written = true
		p := make([]byte, 0, len(ExifPrefix)+len(tiff))
		p = append(p, ExifPrefix...)
		p = append(p, tiff...)
		return WriteChunk(w, APP1, p)
	}

	for j.Next() {
		switch {
		case j.marker == SOI:
		case j.IsChunk(APP0, JFIFPrefix):
		case j.IsChunk(APP1, ExifPrefix):
			continue
		default:
			if !written {
				if err := writeExif(); err != nil {
					return err
				}
			}
		}
		if _, err := w.Write(j.seg); err != nil {
			return err
		}
	}
	if err := j.Err(); err != nil {
		return errors.Wrap(err, "jpeg: reading segments")
	}

	if !written {
		if err := writeExif(); err != nil {
			return err
		}
	}

	_, err = io.Copy(w, j.Reader())
	return err
}

// ExtractExif returns the TIFF data of the first Exif segment in r.
func ExtractExif(r io.Reader) ([]byte, error) {
	j, err := NewScanner(r)
	if err != nil {
		return nil, err
	}
	for j.Next() {
		if j.IsChunk(APP1, ExifPrefix) {
			p := j.Payload()[len(ExifPrefix):]
			return append([]byte(nil), p...), nil
		}
	}
	if err := j.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoExif
}
