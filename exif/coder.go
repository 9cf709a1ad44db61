package exif

import (
	"encoding/binary"
	"errors"
	"sort"

	"github.com/arnauagrupocobra-tech/geostamp/exif/exiftag"
)

const (
	// sub-IFD pointers within IFD0
	ifd0exifSub    = exiftag.ExifIFDPointer & 0xffff
	ifd0gpsSub     = exiftag.GPSInfoIFDPointer & 0xffff
	ifd0interopSub = exiftag.InteropIFDPointer & 0xffff

	// thumbnail location within IFD1
	ifd1thumbOffset = 0x201
	ifd1thumbLength = 0x202

	// MaxLen is the maximum length of encoded Exif
	// that fits in a JPEG APP1 segment after the length
	// and the Exif header.
	MaxLen = 65535 - 2 - 6
)

var (
	ErrCorruptHeader = errors.New("exif: corrupt header")
	ErrCorruptDir    = errors.New("exif: corrupt IFD")
	ErrCorruptTag    = errors.New("exif: corrupt IFD tag")
	ErrDuplicateSub  = errors.New("exif: duplicate sub-IFD entry")

	// ErrEmpty is returned when x.EncodeBytes is used with no exif data to encode.
	ErrEmpty = errors.New("exif: nothing to encode")

	// ErrTooLong is returned if the serialized exif is too long to be written in an Exif file.
	ErrTooLong = errors.New("exif: encoded length too long")
)

// DecodeBytes decodes the raw Exif data from p.
func DecodeBytes(p []byte) (*Exif, error) {
	if len(p) < 8 {
		return nil, ErrCorruptHeader
	}

	var bo binary.ByteOrder
	switch {
	case p[0] == 'M' && p[1] == 'M':
		bo = binary.BigEndian
	case p[0] == 'I' && p[1] == 'I':
		bo = binary.LittleEndian
	default:
		return nil, ErrCorruptHeader
	}

	if bo.Uint16(p[2:]) != 42 {
		return nil, ErrCorruptHeader
	}

	// location of IFD0 offset
	offset := 4

	var d []Dir
	for len(d) < 2 {
		if len(p) < offset+4 {
			return nil, ErrCorruptDir
		}
		ptr := int(bo.Uint32(p[offset:]))
		if ptr == 0 {
			break
		}
		if ptr < 8 || len(p) < ptr {
			return nil, ErrCorruptDir
		}

		dir, next, err := decodeDir(bo, p, ptr)
		if err != nil {
			return nil, err
		}
		d = append(d, dir)
		offset = next
	}

	x := &Exif{ByteOrder: bo}
	if len(d) > 0 {
		x.IFD0 = d[0]
	}
	if len(d) > 1 {
		x.IFD1 = d[1]
	}

	for _, t := range x.IFD0 {
		var psub *Dir
		switch t.Tag {
		case ifd0exifSub:
			psub = &x.Exif
		case ifd0gpsSub:
			psub = &x.GPS
		case ifd0interopSub:
			psub = &x.Interop
		default:
			continue
		}
		if *psub != nil {
			return nil, ErrDuplicateSub
		}
		ptr, ok := fieldOfs(bo, &t)
		if !ok || ptr < 8 || len(p) < ptr {
			return nil, ErrCorruptTag
		}
		subdir, _, err := decodeDir(bo, p, ptr)
		if err != nil {
			return nil, err
		}
		*psub = subdir
	}

	// keep raw thumb data
	tofs, tlen, ok := getOffsetLen(bo, x.IFD1, ifd1thumbOffset, ifd1thumbLength)
	if ok && 0 <= tofs && tofs+tlen <= len(p) {
		x.Thumb = make([]byte, tlen)
		copy(x.Thumb, p[tofs:tofs+tlen])
	}

	return x, nil
}

// EncodeBytes encodes Exif data as a byte slice.
//
// IFD0 is written first followed by the Exif, GPS and Interop
// sub-IFDs, then IFD1 and the thumbnail, if any.
// Pointers to the sub-IFDs are added to or removed from IFD0 as needed.
// IFD1 is dropped unless there is a thumbnail it can point to.
func (x *Exif) EncodeBytes() ([]byte, error) {
	bo := x.ByteOrder
	switch bo {
	case binary.BigEndian, binary.LittleEndian:
	default:
		return nil, ErrCorruptHeader
	}

	subifd := []struct {
		tag uint16
		dir Dir
	}{
		{ifd0exifSub, x.Exif},
		{ifd0gpsSub, x.GPS},
		{ifd0interopSub, x.Interop},
	}

	ifd0 := x.IFD0.clone()
	for _, sub := range subifd {
		if len(sub.dir) == 0 {
			ifd0.Remove(sub.tag)
		} else {
			*ifd0.EnsureTag(sub.tag) = Entry{
				Tag:   sub.tag,
				Type:  TypeLong,
				Count: 1,
				Value: make([]byte, 4),
			}
		}
	}

	if len(ifd0) == 0 {
		return nil, ErrEmpty
	}

	ifd1 := x.IFD1.clone()
	thumb := x.Thumb
	if len(thumb) == 0 || !putOffsetLen(bo, ifd1, ifd1thumbOffset, ifd1thumbLength, 0, 0) {
		// can't write thumb
		ifd1, thumb = nil, nil
	}

	// header: endianness, magic, IFD0 pointer
	offset := 8

	offset += ifd0.encodedLen()
	for _, sub := range subifd {
		if len(sub.dir) != 0 {
			bo.PutUint32(ifd0.Tag(sub.tag).Value, uint32(offset))
			offset += sub.dir.encodedLen()
		}
	}

	ifd1offset := offset
	if len(ifd1) != 0 {
		offset += ifd1.encodedLen()
		putOffsetLen(bo, ifd1, ifd1thumbOffset, ifd1thumbLength, offset, len(thumb))
		offset += len(thumb)
	}

	if offset > MaxLen {
		return nil, ErrTooLong
	}

	p := make([]byte, offset)
	switch bo {
	case binary.BigEndian:
		p[0], p[1] = 'M', 'M'
	case binary.LittleEndian:
		p[0], p[1] = 'I', 'I'
	}
	bo.PutUint16(p[2:], 42)
	bo.PutUint32(p[4:], 8)

	next := 0
	if len(ifd1) != 0 {
		next = ifd1offset
	}
	offset = ifd0.encode(bo, p, 8, next)
	for _, sub := range subifd {
		if len(sub.dir) != 0 {
			offset = sub.dir.encode(bo, p, offset, 0)
		}
	}
	if len(ifd1) != 0 {
		offset = ifd1.encode(bo, p, offset, 0)
		copy(p[offset:], thumb)
	}

	return p, nil
}

// Dir represents an Image File Directory (IFD) within Exif.
// It is a directory of raw tagged fields, also named entries.
type Dir []Entry

func decodeDir(bo binary.ByteOrder, p []byte, offset int) (Dir, int, error) {
	if len(p) < offset+2 {
		return nil, 0, ErrCorruptDir
	}
	ntags := int(bo.Uint16(p[offset:]))
	offset += 2

	d := make(Dir, 0, ntags)
	for i := 0; i < ntags; i++ {
		if len(p) < offset+12 {
			return nil, 0, ErrCorruptTag
		}
		tag := bo.Uint16(p[offset:])
		typ := bo.Uint16(p[offset+2:])
		count := bo.Uint32(p[offset+4:])
		valuebits := p[offset+8 : offset+12]
		offset += 12

		nbytes := typeSize(typ, count)
		if nbytes <= 0 {
			return nil, 0, ErrCorruptDir
		}

		// If value doesn't fit in tag header,
		// then it is an offset from the start
		// of the tiff header (EXIF 2.2 §4.6.2).
		if nbytes > 4 {
			valueoffset := int(bo.Uint32(valuebits))
			if valueoffset < 0 || len(p) < valueoffset+nbytes {
				return nil, 0, ErrCorruptDir
			}
			valuebits = p[valueoffset : valueoffset+nbytes]
		} else {
			valuebits = valuebits[:nbytes]
		}

		d = append(d, Entry{
			Tag:   tag,
			Type:  typ,
			Count: count,
			Value: append([]byte(nil), valuebits...),
		})
	}

	// Tags should appear sorted according to TIFF spec,
	// and it will help in searching as well.
	d.Sort()

	return d, offset, nil
}

// clone returns a deep copy of d, so that pointers
// can be set without modifying the source.
func (d Dir) clone() Dir {
	if d == nil {
		return nil
	}
	c := make(Dir, len(d))
	for i, e := range d {
		e.Value = append([]byte(nil), e.Value...)
		c[i] = e
	}
	return c
}

// encodedLen is the length of d with its entries, next IFD pointer
// and out of line values, padded to word boundaries.
func (d Dir) encodedLen() int {
	n := 2 + len(d)*12 + 4
	for _, t := range d {
		if l := len(t.Value); l > 4 {
			n += l + l&1
		}
	}
	return n
}

// encode writes d into p at offset, and returns the offset after it.
func (d Dir) encode(bo binary.ByteOrder, p []byte, offset, next int) int {
	// offset for data outside tag header
	dataoffset := offset + 2 + len(d)*12 + 4

	bo.PutUint16(p[offset:], uint16(len(d)))
	offset += 2

	for _, t := range d {
		bo.PutUint16(p[offset:], t.Tag)
		bo.PutUint16(p[offset+2:], t.Type)
		bo.PutUint32(p[offset+4:], t.Count)
		if len(t.Value) <= 4 {
			copy(p[offset+8:offset+12], t.Value)
		} else {
			bo.PutUint32(p[offset+8:], uint32(dataoffset))
			copy(p[dataoffset:], t.Value)
			dataoffset += len(t.Value) + len(t.Value)&1
		}
		offset += 12
	}

	bo.PutUint32(p[offset:], uint32(next))

	return dataoffset
}

// Sort sorts entries according to tag values, as needed by Tag() and Index().
//
// Tags should appear sorted according to TIFF spec, therefore
// the functions of this package keep Dirs always sorted.
func (d Dir) Sort() {
	sort.Stable(dirSort(d))
}

// Tag returns a pointer to the Entry with tag t, or nil if t does not exist.
func (d Dir) Tag(t uint16) *Entry {
	i := d.Index(t)
	if i != -1 {
		return &d[i]
	}
	return nil
}

// Index returns the index of tag t, or -1 if t does not exist in d.
func (d Dir) Index(t uint16) int {
	i := sort.Search(len(d), func(i int) bool {
		return t <= d[i].Tag
	})
	if i == len(d) || d[i].Tag != t {
		return -1
	}
	return i
}

// EnsureTag returns a pointer to the Entry with tag t.
//
// An empty Entry with no Type or Count is created if t does not exist in d.
func (d *Dir) EnsureTag(t uint16) *Entry {
	i := sort.Search(len(*d), func(i int) bool {
		return t <= (*d)[i].Tag
	})
	switch {
	case i == len(*d):
		*d = append(*d, Entry{Tag: t})
	case (*d)[i].Tag != t:
		*d = append(*d, Entry{})
		copy((*d)[i+1:], (*d)[i:])
		(*d)[i] = Entry{Tag: t}
	}
	return &(*d)[i]
}

// Remove removes t from d.
func (d *Dir) Remove(t uint16) {
	i := d.Index(t)
	if i == -1 {
		return
	}

	copy((*d)[i:], (*d)[i+1:])
	*d = (*d)[:len(*d)-1]
}

type dirSort []Entry

func (s dirSort) Len() int           { return len(s) }
func (s dirSort) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s dirSort) Less(i, j int) bool { return s[i].Tag < s[j].Tag }

func getOffsetLen(bo binary.ByteOrder, d Dir, ofst, lent uint16) (offset, length int, ok bool) {
	offset, ok = fieldOfs(bo, d.Tag(ofst))
	if !ok {
		return
	}
	length, ok = fieldOfs(bo, d.Tag(lent))
	return
}

func putOffsetLen(bo binary.ByteOrder, d Dir, ofst, lent uint16, offset, length int) (ok bool) {
	ok = putFieldOfs(bo, d.Tag(ofst), offset)
	ok = ok && putFieldOfs(bo, d.Tag(lent), length)
	return ok
}

// fieldOfs reads a single SHORT or LONG value from e.
func fieldOfs(bo binary.ByteOrder, e *Entry) (int, bool) {
	if e == nil || e.Count != 1 {
		return 0, false
	}
	switch {
	case e.Type == TypeLong && len(e.Value) == 4:
		return int(bo.Uint32(e.Value)), true
	case e.Type == TypeShort && len(e.Value) == 2:
		return int(bo.Uint16(e.Value)), true
	}
	return 0, false
}

// putFieldOfs stores v in e, which must be a single LONG.
func putFieldOfs(bo binary.ByteOrder, e *Entry, v int) bool {
	if e == nil || e.Count != 1 || e.Type != TypeLong || len(e.Value) != 4 {
		return false
	}
	bo.PutUint32(e.Value, uint32(v))
	return true
}
