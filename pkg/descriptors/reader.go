package descriptors

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

// fieldReader extracts little-endian fields at fixed offsets of a raw
// descriptor. Descriptor buffers carry no alignment guarantee, so every
// multi-byte value is assembled from individual bytes.
//
// The first out-of-range access latches err; every later read returns zero.
type fieldReader struct {
	buf []byte
	err error
}

func newFieldReader(buf []byte) *fieldReader {
	return &fieldReader{buf: buf}
}

func (r *fieldReader) has(off, n int) bool {
	if r.err != nil {
		return false
	}
	if off < 0 || n < 0 || off+n > len(r.buf) {
		r.err = errors.Wrapf(ErrShortDescriptor, "field %d:%d exceeds %d bytes", off, off+n, len(r.buf))
		return false
	}
	return true
}

func (r *fieldReader) u8(off int) uint8 {
	if !r.has(off, 1) {
		return 0
	}
	return r.buf[off]
}

func (r *fieldReader) u16(off int) uint16 {
	if !r.has(off, 2) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.buf[off : off+2])
}

func (r *fieldReader) u32(off int) uint32 {
	if !r.has(off, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[off : off+4])
}

// view returns buf[off:off+n] without copying.
func (r *fieldReader) view(off, n int) []byte {
	if !r.has(off, n) {
		return nil
	}
	return r.buf[off : off+n : off+n]
}

// interval reads a 32-bit frame interval expressed in 100ns units.
func (r *fieldReader) interval(off int) time.Duration {
	return time.Duration(r.u32(off)) * 100 * time.Nanosecond
}

// header checks the descriptor type and subtype bytes.
func (r *fieldReader) header(dtype ClassSpecificDescriptorType, subtype byte) error {
	if len(r.buf) < 3 {
		return errors.Wrapf(ErrShortDescriptor, "%d byte descriptor", len(r.buf))
	}
	if ClassSpecificDescriptorType(r.buf[1]) != dtype || r.buf[2] != subtype {
		return errors.Wrapf(ErrInvalidDescriptor, "type %#02x subtype %#02x", r.buf[1], r.buf[2])
	}
	return nil
}
