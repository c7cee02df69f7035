package descriptors

// MJPEGFormatDescriptor as defined in the UVC 1.5 MJPEG payload
// specification, section 3.1.1.
type MJPEGFormatDescriptor struct {
	Raw []byte

	FormatIndex                uint8
	NumFrameDescriptors        uint8
	Flags                      uint8
	DefaultFrameIndex          uint8
	AspectRatioX, AspectRatioY uint8
	InterlaceFlags             uint8
	CopyProtect                uint8
}

func (mfd *MJPEGFormatDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoStreamingInterfaceDescriptorSubtypeFormatMJPEG)); err != nil {
		return err
	}
	*mfd = MJPEGFormatDescriptor{
		Raw:                 buf,
		FormatIndex:         r.u8(3),
		NumFrameDescriptors: r.u8(4),
		Flags:               r.u8(5),
		DefaultFrameIndex:   r.u8(6),
		AspectRatioX:        r.u8(7),
		AspectRatioY:        r.u8(8),
		InterlaceFlags:      r.u8(9),
		CopyProtect:         r.u8(10),
	}
	return r.err
}

// FixedSizeSamples reports bmFlags bit 0.
func (mfd *MJPEGFormatDescriptor) FixedSizeSamples() bool {
	return mfd.Flags&0b1 != 0
}

func (mfd *MJPEGFormatDescriptor) Index() uint8 { return mfd.FormatIndex }

func (mfd *MJPEGFormatDescriptor) isFormatDescriptor() {}

// MJPEGFrameDescriptor as defined in the UVC 1.5 MJPEG payload
// specification, section 3.1.2.
type MJPEGFrameDescriptor struct {
	VideoFrame
}

func (mfd *MJPEGFrameDescriptor) UnmarshalBinary(buf []byte) error {
	return mfd.unmarshal(buf, VideoStreamingInterfaceDescriptorSubtypeFrameMJPEG)
}

func (mfd *MJPEGFrameDescriptor) Frame() *VideoFrame { return &mfd.VideoFrame }

func (mfd *MJPEGFrameDescriptor) isFrameDescriptor() {}
