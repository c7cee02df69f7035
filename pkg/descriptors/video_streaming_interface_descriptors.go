// This file implements the descriptors as defined in the UVC spec 1.5, section 3.9.
package descriptors

type VideoStreamingInterfaceDescriptorSubtype byte

const (
	VideoStreamingInterfaceDescriptorSubtypeUndefined           VideoStreamingInterfaceDescriptorSubtype = 0x00
	VideoStreamingInterfaceDescriptorSubtypeInputHeader         VideoStreamingInterfaceDescriptorSubtype = 0x01
	VideoStreamingInterfaceDescriptorSubtypeOutputHeader        VideoStreamingInterfaceDescriptorSubtype = 0x02
	VideoStreamingInterfaceDescriptorSubtypeStillImageFrame     VideoStreamingInterfaceDescriptorSubtype = 0x03
	VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed  VideoStreamingInterfaceDescriptorSubtype = 0x04
	VideoStreamingInterfaceDescriptorSubtypeFrameUncompressed   VideoStreamingInterfaceDescriptorSubtype = 0x05
	VideoStreamingInterfaceDescriptorSubtypeFormatMJPEG         VideoStreamingInterfaceDescriptorSubtype = 0x06
	VideoStreamingInterfaceDescriptorSubtypeFrameMJPEG          VideoStreamingInterfaceDescriptorSubtype = 0x07
	VideoStreamingInterfaceDescriptorSubtypeFormatMPEG2TS       VideoStreamingInterfaceDescriptorSubtype = 0x0A
	VideoStreamingInterfaceDescriptorSubtypeFormatDV            VideoStreamingInterfaceDescriptorSubtype = 0x0C
	VideoStreamingInterfaceDescriptorSubtypeColorFormat         VideoStreamingInterfaceDescriptorSubtype = 0x0D
	VideoStreamingInterfaceDescriptorSubtypeFormatFrameBased    VideoStreamingInterfaceDescriptorSubtype = 0x10
	VideoStreamingInterfaceDescriptorSubtypeFrameFrameBased     VideoStreamingInterfaceDescriptorSubtype = 0x11
	VideoStreamingInterfaceDescriptorSubtypeFormatStreamBased   VideoStreamingInterfaceDescriptorSubtype = 0x12
	VideoStreamingInterfaceDescriptorSubtypeFormatH264          VideoStreamingInterfaceDescriptorSubtype = 0x13
	VideoStreamingInterfaceDescriptorSubtypeFrameH264           VideoStreamingInterfaceDescriptorSubtype = 0x14
	VideoStreamingInterfaceDescriptorSubtypeFormatH264Simulcast VideoStreamingInterfaceDescriptorSubtype = 0x15
	VideoStreamingInterfaceDescriptorSubtypeFormatVP8           VideoStreamingInterfaceDescriptorSubtype = 0x16
	VideoStreamingInterfaceDescriptorSubtypeFrameVP8            VideoStreamingInterfaceDescriptorSubtype = 0x17
	VideoStreamingInterfaceDescriptorSubtypeFormatVP8Simulcast  VideoStreamingInterfaceDescriptorSubtype = 0x18
)

// InputHeaderDescriptor as defined in UVC spec 1.5, 3.9.2.1
type InputHeaderDescriptor struct {
	Raw []byte

	NumFormats         uint8
	TotalLength        uint16
	EndpointAddress    uint8
	InfoBitmask        uint8
	TerminalLink       uint8
	StillCaptureMethod uint8
	TriggerSupport     uint8
	TriggerUsage       uint8
	ControlSize        uint8
}

func (ihd *InputHeaderDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoStreamingInterfaceDescriptorSubtypeInputHeader)); err != nil {
		return err
	}
	*ihd = InputHeaderDescriptor{
		Raw:                buf,
		NumFormats:         r.u8(3),
		TotalLength:        r.u16(4),
		EndpointAddress:    r.u8(6),
		InfoBitmask:        r.u8(7),
		TerminalLink:       r.u8(8),
		StillCaptureMethod: r.u8(9),
		TriggerSupport:     r.u8(10),
		TriggerUsage:       r.u8(11),
		ControlSize:        r.u8(12),
	}
	return r.err
}

// ControlBitmask returns the bmaControls entry for the i-th format, or nil if
// the descriptor is too short to hold it.
func (ihd *InputHeaderDescriptor) ControlBitmask(i int) []byte {
	if i < 0 || i >= int(ihd.NumFormats) {
		return nil
	}
	n := int(ihd.ControlSize)
	return newFieldReader(ihd.Raw).view(13+i*n, n)
}

// DynamicFormatChange reports bmInfo bit 0.
func (ihd *InputHeaderDescriptor) DynamicFormatChange() bool {
	return ihd.InfoBitmask&0b1 != 0
}
