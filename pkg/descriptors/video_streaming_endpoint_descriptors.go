// This file implements the descriptors as defined in the UVC spec 1.5, section 3.10.
package descriptors

import "github.com/pkg/errors"

type TransferType uint8

const (
	TransferTypeControl     TransferType = 0b00
	TransferTypeIsochronous TransferType = 0b01
	TransferTypeBulk        TransferType = 0b10
	TransferTypeInterrupt   TransferType = 0b11
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeControl:
		return "control"
	case TransferTypeIsochronous:
		return "isochronous"
	case TransferTypeBulk:
		return "bulk"
	}
	return "interrupt"
}

// VideoDataEndpointDescriptor is the standard endpoint descriptor of a video
// streaming alternate setting, UVC spec 1.5, 3.10.1.1 and 3.10.1.2.
type VideoDataEndpointDescriptor struct {
	EndpointAddress   uint8
	AttributesBitmask uint8
	MaxPacketSize     uint16
	Interval          uint8
}

const endpointDescriptorLength = 7

func (ved *VideoDataEndpointDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if r.u8(1) != uint8(StandardDescriptorTypeEndpoint) {
		if r.err != nil {
			return r.err
		}
		return errors.Wrapf(ErrInvalidDescriptor, "type %#02x is not an endpoint", buf[1])
	}
	*ved = VideoDataEndpointDescriptor{
		EndpointAddress:   r.u8(2),
		AttributesBitmask: r.u8(3),
		MaxPacketSize:     r.u16(4),
		Interval:          r.u8(6),
	}
	return r.err
}

func (ved *VideoDataEndpointDescriptor) TransferType() TransferType {
	return TransferType(ved.AttributesBitmask & 0b11)
}

// In reports whether the endpoint direction is device to host.
func (ved *VideoDataEndpointDescriptor) In() bool {
	return ved.EndpointAddress&0x80 != 0
}

// PayloadSize is the number of bytes the endpoint can move per service
// interval, including high-bandwidth additional transactions.
func (ved *VideoDataEndpointDescriptor) PayloadSize() uint32 {
	return EndpointPayloadSize(ved.MaxPacketSize)
}

// EndpointPayloadSize decodes wMaxPacketSize: bits 10..0 are the packet size
// and bits 12..11 the number of additional transactions per microframe.
func EndpointPayloadSize(wMaxPacketSize uint16) uint32 {
	return uint32(wMaxPacketSize&0x7ff) * uint32(1+(wMaxPacketSize>>11)&0b11)
}

// AlternateSetting is one alternate setting of a video streaming interface
// together with its data endpoints.
type AlternateSetting struct {
	InterfaceNumber  uint8
	AlternateSetting uint8
	Endpoints        []VideoDataEndpointDescriptor
}

// MaxPayloadSize is the largest PayloadSize across the setting's IN endpoints.
func (as *AlternateSetting) MaxPayloadSize() uint32 {
	var n uint32
	for i := range as.Endpoints {
		if as.Endpoints[i].In() {
			n = max(n, as.Endpoints[i].PayloadSize())
		}
	}
	return n
}
