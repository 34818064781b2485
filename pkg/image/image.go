// Package image holds the code and data segments of one assembled file.
//
// An Image is used in two phases. During discovery only Extend is called,
// accumulating each segment's declared size. Commit then allocates the
// buffers, and during emission Write appends bytes until every segment is
// exactly full.
package image

import (
	"errors"
	"fmt"
)

// Segment selects one of the two output regions.
type Segment int

const (
	Code Segment = iota
	Data
)

func (s Segment) String() string {
	switch s {
	case Code:
		return "code"
	case Data:
		return "data"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

// Width is the byte size of a value written to a segment.
type Width int

const (
	Byte Width = 1
	Half Width = 2
	Word Width = 4
)

// ErrImageTooLarge is returned by Commit when the declared segments exceed
// the image's byte limit.
var ErrImageTooLarge = errors.New("could not allocate required memory")

type segment struct {
	buf  []byte
	pos  int
	size int
}

// Image is a pair of growable segments.
type Image struct {
	segs  [2]segment
	limit int
}

// New creates an empty image. A limit of zero means unlimited.
func New(limit int) *Image {
	return &Image{limit: limit}
}

// Extend grows the declared size of seg by n bytes.
func (m *Image) Extend(seg Segment, n Width) {
	m.segs[seg].size += int(n)
}

// Size returns the declared size of seg.
func (m *Image) Size(seg Segment) int {
	return m.segs[seg].size
}

// Offset returns the number of bytes written to seg so far.
func (m *Image) Offset(seg Segment) int {
	return m.segs[seg].pos
}

// Commit allocates both segments at their declared sizes. Empty segments
// stay unallocated. On failure no buffer survives.
func (m *Image) Commit() error {
	for i := range m.segs {
		s := &m.segs[i]
		if s.size == 0 {
			continue
		}
		if m.limit > 0 && m.committed()+s.size > m.limit {
			m.release()
			return fmt.Errorf("%s segment of %d bytes: %w", Segment(i), s.size, ErrImageTooLarge)
		}
		s.buf = make([]byte, s.size)
		s.pos = 0
	}
	return nil
}

func (m *Image) committed() int {
	total := 0
	for _, s := range m.segs {
		total += len(s.buf)
	}
	return total
}

func (m *Image) release() {
	for i := range m.segs {
		m.segs[i].buf = nil
		m.segs[i].pos = 0
	}
}

// Write appends the n low-order bytes of value to seg, least significant
// byte first. Writing past the committed size means discovery and emission
// disagree, which is a bug in the caller.
func (m *Image) Write(seg Segment, value int64, n Width) {
	s := &m.segs[seg]
	if s.pos+int(n) > len(s.buf) {
		panic(fmt.Sprintf("image: %s write of %d bytes at %d overruns committed size %d", seg, n, s.pos, len(s.buf)))
	}
	for i := 0; i < int(n); i++ {
		s.buf[s.pos] = byte(value)
		s.pos++
		value >>= 8
	}
}

// Byte returns the byte at index i of seg.
func (m *Image) Byte(seg Segment, i int) byte {
	return m.segs[seg].buf[i]
}

// Bytes returns the committed contents of seg. The slice aliases the image.
func (m *Image) Bytes(seg Segment) []byte {
	return m.segs[seg].buf
}

// Full reports whether every committed byte has been written.
func (m *Image) Full() bool {
	for _, s := range m.segs {
		if s.pos != s.size {
			return false
		}
	}
	return true
}

// Reset frees both buffers and zeroes the declared sizes.
func (m *Image) Reset() {
	m.release()
	for i := range m.segs {
		m.segs[i].size = 0
	}
}
