// This file implements the descriptors as defined in the UVC spec 1.5, section 3.7.
package descriptors

type VideoControlInterfaceDescriptorSubtype byte

const (
	VideoControlInterfaceDescriptorSubtypeUndefined      VideoControlInterfaceDescriptorSubtype = 0x00
	VideoControlInterfaceDescriptorSubtypeHeader         VideoControlInterfaceDescriptorSubtype = 0x01
	VideoControlInterfaceDescriptorSubtypeInputTerminal  VideoControlInterfaceDescriptorSubtype = 0x02
	VideoControlInterfaceDescriptorSubtypeOutputTerminal VideoControlInterfaceDescriptorSubtype = 0x03
	VideoControlInterfaceDescriptorSubtypeSelectorUnit   VideoControlInterfaceDescriptorSubtype = 0x04
	VideoControlInterfaceDescriptorSubtypeProcessingUnit VideoControlInterfaceDescriptorSubtype = 0x05
	VideoControlInterfaceDescriptorSubtypeExtensionUnit  VideoControlInterfaceDescriptorSubtype = 0x06
	VideoControlInterfaceDescriptorSubtypeEncodingUnit   VideoControlInterfaceDescriptorSubtype = 0x07
)

type TerminalType uint16

const (
	TerminalTypeVendorSpecific TerminalType = 0x0100
	TerminalTypeStreaming      TerminalType = 0x0101
)

type InputTerminalType uint16

const (
	InputTerminalTypeVendorSpecific      InputTerminalType = 0x0200
	InputTerminalTypeCamera              InputTerminalType = 0x0201
	InputTerminalTypeMediaTransportInput InputTerminalType = 0x0202
)

func (t InputTerminalType) String() string {
	switch t {
	case InputTerminalTypeVendorSpecific:
		return "vendor"
	case InputTerminalTypeCamera:
		return "camera"
	case InputTerminalTypeMediaTransportInput:
		return "media-transport"
	case InputTerminalType(TerminalTypeStreaming):
		return "streaming"
	}
	return "unknown"
}

type OutputTerminalType uint16

const (
	OutputTerminalTypeVendorSpecific       OutputTerminalType = 0x0300
	OutputTerminalTypeDisplay              OutputTerminalType = 0x0301
	OutputTerminalTypeMediaTransportOutput OutputTerminalType = 0x0302
)

func (t OutputTerminalType) String() string {
	switch t {
	case OutputTerminalTypeVendorSpecific:
		return "vendor"
	case OutputTerminalTypeDisplay:
		return "display"
	case OutputTerminalTypeMediaTransportOutput:
		return "media-transport"
	case OutputTerminalType(TerminalTypeStreaming):
		return "streaming"
	}
	return "unknown"
}

// HeaderDescriptor as defined in UVC spec 1.5, 3.7.2.1
type HeaderDescriptor struct {
	Raw []byte

	UVC            BinaryCodedDecimal
	TotalLength    uint16
	ClockFrequency uint32
	// VideoStreamingInterfaceIndexes aliases Raw.
	VideoStreamingInterfaceIndexes []uint8
}

func (hd *HeaderDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoControlInterfaceDescriptorSubtypeHeader)); err != nil {
		return err
	}
	*hd = HeaderDescriptor{
		Raw:            buf,
		UVC:            BinaryCodedDecimal(r.u16(3)),
		TotalLength:    r.u16(5),
		ClockFrequency: r.u32(7),
	}
	hd.VideoStreamingInterfaceIndexes = r.view(12, int(r.u8(11)))
	return r.err
}

// InputTerminalDescriptor as defined in UVC spec 1.5, 3.7.2.1
type InputTerminalDescriptor struct {
	Raw []byte

	TerminalID           uint8
	TerminalType         InputTerminalType
	AssociatedTerminalID uint8
	DescriptionIndex     uint8
}

func (itd *InputTerminalDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoControlInterfaceDescriptorSubtypeInputTerminal)); err != nil {
		return err
	}
	*itd = InputTerminalDescriptor{
		Raw:                  buf,
		TerminalID:           r.u8(3),
		TerminalType:         InputTerminalType(r.u16(4)),
		AssociatedTerminalID: r.u8(6),
		DescriptionIndex:     r.u8(7),
	}
	return r.err
}

// OutputTerminalDescriptor as defined in UVC spec 1.5, 3.7.2.2
type OutputTerminalDescriptor struct {
	Raw []byte

	TerminalID           uint8
	TerminalType         OutputTerminalType
	AssociatedTerminalID uint8
	SourceID             uint8
	DescriptionIndex     uint8
}

func (otd *OutputTerminalDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoControlInterfaceDescriptorSubtypeOutputTerminal)); err != nil {
		return err
	}
	*otd = OutputTerminalDescriptor{
		Raw:                  buf,
		TerminalID:           r.u8(3),
		TerminalType:         OutputTerminalType(r.u16(4)),
		AssociatedTerminalID: r.u8(6),
		SourceID:             r.u8(7),
		DescriptionIndex:     r.u8(8),
	}
	return r.err
}

// SelectorUnitDescriptor as defined in UVC spec 1.5, 3.7.2.4
type SelectorUnitDescriptor struct {
	Raw []byte

	UnitID uint8
	// SourceIDs aliases Raw.
	SourceIDs        []uint8
	DescriptionIndex uint8
}

func (sud *SelectorUnitDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if err := r.header(ClassSpecificDescriptorTypeInterface, byte(VideoControlInterfaceDescriptorSubtypeSelectorUnit)); err != nil {
		return err
	}
	p := int(r.u8(4))
	*sud = SelectorUnitDescriptor{
		Raw:              buf,
		UnitID:           r.u8(3),
		SourceIDs:        r.view(5, p),
		DescriptionIndex: r.u8(5 + p),
	}
	return r.err
}
