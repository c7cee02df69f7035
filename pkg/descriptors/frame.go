package descriptors

import "time"

// FrameDescriptor is implemented by every frame record kind.
type FrameDescriptor interface {
	isFrameDescriptor()
	Frame() *VideoFrame
}

// FormatDescriptor is implemented by every format record kind.
type FormatDescriptor interface {
	isFormatDescriptor()
	Index() uint8
}

// VideoFrame holds the fields shared by the uncompressed and MJPEG frame
// descriptors as defined in the UVC 1.5 payload specifications.
type VideoFrame struct {
	Raw []byte

	FrameIndex              uint8
	Capabilities            uint8
	Width, Height           uint16
	MinBitRate, MaxBitRate  uint32
	MaxVideoFrameBufferSize uint32
	DefaultFrameInterval    time.Duration
	FrameIntervalType       uint8
}

const videoFrameMinLength = 26

func (vf *VideoFrame) unmarshal(buf []byte, subtype VideoStreamingInterfaceDescriptorSubtype) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(subtype)); err != nil {
		return err
	}
	*vf = VideoFrame{
		Raw:                     buf,
		FrameIndex:              r.u8(3),
		Capabilities:            r.u8(4),
		Width:                   r.u16(5),
		Height:                  r.u16(7),
		MinBitRate:              r.u32(9),
		MaxBitRate:              r.u32(13),
		MaxVideoFrameBufferSize: r.u32(17),
		DefaultFrameInterval:    r.interval(21),
		FrameIntervalType:       r.u8(25),
	}
	return r.err
}

// Continuous reports whether the frame advertises a min/max/step interval
// range rather than a discrete list.
func (vf *VideoFrame) Continuous() bool {
	return vf.FrameIntervalType == 0
}

// IntervalCount is the number of interval entries present in the raw
// descriptor: three for a continuous range, otherwise the discrete count,
// capped by what the descriptor length actually holds.
func (vf *VideoFrame) IntervalCount() int {
	n := int(vf.FrameIntervalType)
	if n == 0 {
		n = 3
	}
	if avail := (len(vf.Raw) - videoFrameMinLength) / 4; avail < n {
		n = max(avail, 0)
	}
	return n
}

// Interval returns the i-th interval entry, or 0 when out of range. For a
// continuous frame the entries are min, max and step.
func (vf *VideoFrame) Interval(i int) time.Duration {
	if i < 0 || i >= vf.IntervalCount() {
		return 0
	}
	return newFieldReader(vf.Raw).interval(videoFrameMinLength + 4*i)
}

// FrameRate converts the default interval to frames per second.
func (vf *VideoFrame) FrameRate() float64 {
	if vf.DefaultFrameInterval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(vf.DefaultFrameInterval)
}
