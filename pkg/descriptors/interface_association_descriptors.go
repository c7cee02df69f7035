// This file implements the descriptors as defined in the UVC spec 1.5, section 3.6.
package descriptors

import "github.com/pkg/errors"

// InterfaceAssociationDescriptor groups the VideoControl interface with its
// VideoStreaming interfaces.
type InterfaceAssociationDescriptor struct {
	FirstInterface   uint8
	InterfaceCount   uint8
	FunctionClass    ClassCode
	FunctionSubclass SubclassCode
	FunctionProtocol ProtocolCode
	DescriptionIndex uint8
}

func (iad *InterfaceAssociationDescriptor) UnmarshalBinary(buf []byte) error {
	r := newFieldReader(buf)
	if t := r.u8(1); r.err == nil && StandardDescriptorType(t) != StandardDescriptorTypeInterfaceAssociation {
		return errors.Wrapf(ErrInvalidDescriptor, "type %#02x is not an interface association", t)
	}
	*iad = InterfaceAssociationDescriptor{
		FirstInterface:   r.u8(2),
		InterfaceCount:   r.u8(3),
		FunctionClass:    ClassCode(r.u8(4)),
		FunctionSubclass: SubclassCode(r.u8(5)),
		FunctionProtocol: ProtocolCode(r.u8(6)),
		DescriptionIndex: r.u8(7),
	}
	return r.err
}

// Video reports whether the association is a video interface collection.
func (iad *InterfaceAssociationDescriptor) Video() bool {
	return iad.FunctionClass == ClassCodeVideo && iad.FunctionSubclass == SubclassCodeVideoInterfaceCollection
}

// Contains reports whether interface number n belongs to the association.
func (iad *InterfaceAssociationDescriptor) Contains(n uint8) bool {
	return n >= iad.FirstInterface && int(n) < int(iad.FirstInterface)+int(iad.InterfaceCount)
}
