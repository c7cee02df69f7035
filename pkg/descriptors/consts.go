package descriptors

type ClassCode byte

const (
	ClassCodeVideo ClassCode = 0x0E
)

type SubclassCode byte

const (
	SubclassCodeUndefined                SubclassCode = 0x00
	SubclassCodeVideoControl             SubclassCode = 0x01
	SubclassCodeVideoStreaming           SubclassCode = 0x02
	SubclassCodeVideoInterfaceCollection SubclassCode = 0x03
)

func (s SubclassCode) String() string {
	switch s {
	case SubclassCodeVideoControl:
		return "VideoControl"
	case SubclassCodeVideoStreaming:
		return "VideoStreaming"
	case SubclassCodeVideoInterfaceCollection:
		return "VideoInterfaceCollection"
	}
	return "Undefined"
}

type ProtocolCode byte

const (
	ProtocolCodeUndefined ProtocolCode = 0x00
	ProtocolCode15        ProtocolCode = 0x01
)

// StandardDescriptorType is the bDescriptorType of the standard USB
// descriptors that appear in a configuration descriptor set.
type StandardDescriptorType byte

const (
	StandardDescriptorTypeConfiguration        StandardDescriptorType = 0x02
	StandardDescriptorTypeInterface            StandardDescriptorType = 0x04
	StandardDescriptorTypeEndpoint             StandardDescriptorType = 0x05
	StandardDescriptorTypeInterfaceAssociation StandardDescriptorType = 0x0B
)

type ClassSpecificDescriptorType int

const (
	ClassSpecificDescriptorTypeUndefined     ClassSpecificDescriptorType = 0x20
	ClassSpecificDescriptorTypeDevice        ClassSpecificDescriptorType = 0x21
	ClassSpecificDescriptorTypeConfiguration ClassSpecificDescriptorType = 0x22
	ClassSpecificDescriptorTypeString        ClassSpecificDescriptorType = 0x23
	ClassSpecificDescriptorTypeInterface     ClassSpecificDescriptorType = 0x24
	ClassSpecificDescriptorTypeEndpoint      ClassSpecificDescriptorType = 0x25
)
