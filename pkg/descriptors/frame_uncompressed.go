package descriptors

import "github.com/kevmo314/go-uvcstream/pkg/formats"

// UncompressedFormatDescriptor as defined in the UVC 1.5 uncompressed payload
// specification, section 3.1.1.
type UncompressedFormatDescriptor struct {
	Raw []byte

	FormatIndex         uint8
	NumFrameDescriptors uint8
	// GUIDFormat is kept in descriptor byte order.
	GUIDFormat            [16]byte
	BitsPerPixel          uint8
	DefaultFrameIndex     uint8
	AspectRatioX          uint8
	AspectRatioY          uint8
	InterlaceFlagsBitmask uint8
	CopyProtect           uint8
}

func (ufd *UncompressedFormatDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed)); err != nil {
		return err
	}
	*ufd = UncompressedFormatDescriptor{
		Raw:                   buf,
		FormatIndex:           r.u8(3),
		NumFrameDescriptors:   r.u8(4),
		BitsPerPixel:          r.u8(21),
		DefaultFrameIndex:     r.u8(22),
		AspectRatioX:          r.u8(23),
		AspectRatioY:          r.u8(24),
		InterlaceFlagsBitmask: r.u8(25),
		CopyProtect:           r.u8(26),
	}
	if guid := r.view(5, 16); guid != nil {
		copy(ufd.GUIDFormat[:], guid)
	}
	return r.err
}

// Format returns the GUID in canonical order.
func (ufd *UncompressedFormatDescriptor) Format() formats.CompressionFormat {
	return formats.FromGUID(ufd.GUIDFormat)
}

// FourCC is the first four GUID bytes as they appear in the descriptor.
func (ufd *UncompressedFormatDescriptor) FourCC() formats.FourCC {
	return formats.FourCC(ufd.GUIDFormat[:4])
}

func (ufd *UncompressedFormatDescriptor) Index() uint8 { return ufd.FormatIndex }

func (ufd *UncompressedFormatDescriptor) isFormatDescriptor() {}

// UncompressedFrameDescriptor as defined in the UVC 1.5 uncompressed payload
// specification, section 3.1.2.
type UncompressedFrameDescriptor struct {
	VideoFrame
}

func (ufd *UncompressedFrameDescriptor) UnmarshalBinary(buf []byte) error {
	return ufd.unmarshal(buf, VideoStreamingInterfaceDescriptorSubtypeFrameUncompressed)
}

func (ufd *UncompressedFrameDescriptor) Frame() *VideoFrame { return &ufd.VideoFrame }

func (ufd *UncompressedFrameDescriptor) isFrameDescriptor() {}
