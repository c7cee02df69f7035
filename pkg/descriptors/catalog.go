package descriptors

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Limits caps the number of records of each kind a Catalog keeps.
type Limits struct {
	InputHeaders        int
	MJPEGFormats        int
	MJPEGFrames         int
	UncompressedFormats int
	UncompressedFrames  int
	InputTerminals      int
	OutputTerminals     int
	SelectorUnits       int
}

func DefaultLimits() Limits {
	return Limits{
		InputHeaders:        3,
		MJPEGFormats:        3,
		MJPEGFrames:         10,
		UncompressedFormats: 3,
		UncompressedFrames:  10,
		InputTerminals:      3,
		OutputTerminals:     3,
		SelectorUnits:       3,
	}
}

// Catalog is the set of class-specific descriptors advertised by one camera.
// All record storage is allocated by NewCatalog; parsing only fills it.
type Catalog struct {
	// Header is the most recent VideoControl header, nil if none was seen.
	Header *HeaderDescriptor

	InputTerminals  Bounded[InputTerminalDescriptor]
	OutputTerminals Bounded[OutputTerminalDescriptor]
	SelectorUnits   Bounded[SelectorUnitDescriptor]

	InputHeaders        Bounded[InputHeaderDescriptor]
	MJPEGFormats        Bounded[MJPEGFormatDescriptor]
	MJPEGFrames         Bounded[MJPEGFrameDescriptor]
	UncompressedFormats Bounded[UncompressedFormatDescriptor]
	UncompressedFrames  Bounded[UncompressedFrameDescriptor]

	// ParseConfiguration fills Association and Alternates. ParseBlock never
	// touches them, so callers walking interfaces themselves append to
	// Alternates directly.
	Association *InterfaceAssociationDescriptor
	Alternates  []AlternateSetting

	// Skipped counts records that were too short for their kind or carried
	// an unknown subtype.
	Skipped int

	Logger *logrus.Entry

	header      HeaderDescriptor
	association InterfaceAssociationDescriptor
}

func NewCatalog(limits Limits) *Catalog {
	return &Catalog{
		InputTerminals:      NewBounded[InputTerminalDescriptor](limits.InputTerminals),
		OutputTerminals:     NewBounded[OutputTerminalDescriptor](limits.OutputTerminals),
		SelectorUnits:       NewBounded[SelectorUnitDescriptor](limits.SelectorUnits),
		InputHeaders:        NewBounded[InputHeaderDescriptor](limits.InputHeaders),
		MJPEGFormats:        NewBounded[MJPEGFormatDescriptor](limits.MJPEGFormats),
		MJPEGFrames:         NewBounded[MJPEGFrameDescriptor](limits.MJPEGFrames),
		UncompressedFormats: NewBounded[UncompressedFormatDescriptor](limits.UncompressedFormats),
		UncompressedFrames:  NewBounded[UncompressedFrameDescriptor](limits.UncompressedFrames),
		Logger:              logrus.NewEntry(logrus.StandardLogger()).WithField("component", "descriptors"),
	}
}

// walk calls visit with every length-prefixed descriptor in buf.
func walk(buf []byte, visit func(desc []byte)) error {
	for off := 0; off < len(buf); {
		n := int(buf[off])
		if n < 2 {
			return errors.Wrapf(ErrMalformedDescriptor, "length %d at offset %d", n, off)
		}
		if off+n > len(buf) {
			return errors.Wrapf(ErrMalformedDescriptor, "length %d at offset %d overruns %d bytes", n, off, len(buf))
		}
		visit(buf[off : off+n : off+n])
		off += n
	}
	return nil
}

// ParseBlock adds every class-specific interface descriptor in buf to the
// catalog, interpreting subtypes in the given interface subclass. A
// malformed length stops the walk; records parsed before it are kept.
func (c *Catalog) ParseBlock(subclass SubclassCode, buf []byte) error {
	return walk(buf, func(desc []byte) {
		if ClassSpecificDescriptorType(desc[1]) == ClassSpecificDescriptorTypeInterface {
			c.add(subclass, desc)
		}
	})
}

// ParseConfiguration walks a full configuration descriptor set. Each
// standard interface descriptor sets the subclass used for the
// class-specific descriptors that follow it; interfaces of any class other
// than video switch interpretation off until the next video interface.
func (c *Catalog) ParseConfiguration(raw []byte) error {
	subclass := SubclassCodeUndefined
	current := -1
	return walk(raw, func(desc []byte) {
		switch desc[1] {
		case byte(StandardDescriptorTypeInterface):
			r := newFieldReader(desc)
			number, alt, class, sub := r.u8(2), r.u8(3), ClassCode(r.u8(5)), SubclassCode(r.u8(6))
			subclass, current = SubclassCodeUndefined, -1
			if r.err != nil {
				c.skip(desc, r.err)
				return
			}
			if class != ClassCodeVideo {
				return
			}
			subclass = sub
			if sub == SubclassCodeVideoStreaming {
				c.Alternates = append(c.Alternates, AlternateSetting{InterfaceNumber: number, AlternateSetting: alt})
				current = len(c.Alternates) - 1
			}
		case byte(StandardDescriptorTypeEndpoint):
			if current < 0 {
				return
			}
			var ep VideoDataEndpointDescriptor
			if err := ep.UnmarshalBinary(desc); err != nil {
				c.skip(desc, err)
				return
			}
			c.Alternates[current].Endpoints = append(c.Alternates[current].Endpoints, ep)
		case byte(StandardDescriptorTypeInterfaceAssociation):
			var iad InterfaceAssociationDescriptor
			if err := iad.UnmarshalBinary(desc); err != nil {
				c.skip(desc, err)
				return
			}
			if iad.Video() && c.Association == nil {
				c.association = iad
				c.Association = &c.association
			}
		case byte(ClassSpecificDescriptorTypeInterface):
			c.add(subclass, desc)
		}
	})
}

func (c *Catalog) add(subclass SubclassCode, desc []byte) {
	if len(desc) < 3 {
		c.skip(desc, errors.Wrapf(ErrShortDescriptor, "%d byte descriptor", len(desc)))
		return
	}
	switch subclass {
	case SubclassCodeVideoControl:
		switch VideoControlInterfaceDescriptorSubtype(desc[2]) {
		case VideoControlInterfaceDescriptorSubtypeHeader:
			var hd HeaderDescriptor
			if err := hd.UnmarshalBinary(desc); err != nil {
				c.skip(desc, err)
				return
			}
			c.header = hd
			c.Header = &c.header
			c.stored(KindHeader, desc)
		case VideoControlInterfaceDescriptorSubtypeInputTerminal:
			push(c, KindInputTerminal, &c.InputTerminals, desc)
		case VideoControlInterfaceDescriptorSubtypeOutputTerminal:
			push(c, KindOutputTerminal, &c.OutputTerminals, desc)
		case VideoControlInterfaceDescriptorSubtypeSelectorUnit:
			push(c, KindSelectorUnit, &c.SelectorUnits, desc)
		default:
			c.skip(desc, ErrUnknownDescriptor)
		}
	case SubclassCodeVideoStreaming:
		switch VideoStreamingInterfaceDescriptorSubtype(desc[2]) {
		case VideoStreamingInterfaceDescriptorSubtypeInputHeader:
			push(c, KindInputHeader, &c.InputHeaders, desc)
		case VideoStreamingInterfaceDescriptorSubtypeFormatMJPEG:
			push(c, KindMJPEGFormat, &c.MJPEGFormats, desc)
		case VideoStreamingInterfaceDescriptorSubtypeFrameMJPEG:
			push(c, KindMJPEGFrame, &c.MJPEGFrames, desc)
		case VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed:
			push(c, KindUncompressedFormat, &c.UncompressedFormats, desc)
		case VideoStreamingInterfaceDescriptorSubtypeFrameUncompressed:
			push(c, KindUncompressedFrame, &c.UncompressedFrames, desc)
		default:
			c.skip(desc, ErrUnknownDescriptor)
		}
	default:
		c.skip(desc, ErrUnknownDescriptor)
	}
}

type unmarshaler[T any] interface {
	*T
	UnmarshalBinary([]byte) error
}

func push[T any, P unmarshaler[T]](c *Catalog, kind Kind, seq *Bounded[T], desc []byte) {
	var v T
	if err := P(&v).UnmarshalBinary(desc); err != nil {
		c.skip(desc, err)
		return
	}
	if !seq.Push(v) {
		c.Logger.WithFields(logrus.Fields{"kind": kind, "dropped": seq.Dropped()}).Debug("descriptor limit reached")
		return
	}
	c.stored(kind, desc)
}

func (c *Catalog) stored(kind Kind, desc []byte) {
	c.Logger.WithFields(logrus.Fields{"kind": kind, "length": len(desc)}).Debug("stored descriptor")
}

func (c *Catalog) skip(desc []byte, err error) {
	c.Skipped++
	c.Logger.WithError(err).WithField("length", len(desc)).Debug("skipped descriptor")
}

// KindStats is the stored and dropped count of one record kind.
type KindStats struct {
	Kind    Kind
	Stored  int
	Dropped int
}

// Stats reports per-kind counts in Kind order.
func (c *Catalog) Stats() []KindStats {
	header := 0
	if c.Header != nil {
		header = 1
	}
	return []KindStats{
		{KindHeader, header, 0},
		{KindInputTerminal, c.InputTerminals.Len(), c.InputTerminals.Dropped()},
		{KindOutputTerminal, c.OutputTerminals.Len(), c.OutputTerminals.Dropped()},
		{KindSelectorUnit, c.SelectorUnits.Len(), c.SelectorUnits.Dropped()},
		{KindInputHeader, c.InputHeaders.Len(), c.InputHeaders.Dropped()},
		{KindMJPEGFormat, c.MJPEGFormats.Len(), c.MJPEGFormats.Dropped()},
		{KindMJPEGFrame, c.MJPEGFrames.Len(), c.MJPEGFrames.Dropped()},
		{KindUncompressedFormat, c.UncompressedFormats.Len(), c.UncompressedFormats.Dropped()},
		{KindUncompressedFrame, c.UncompressedFrames.Len(), c.UncompressedFrames.Dropped()},
	}
}

// Reset empties the catalog so it can be filled from a new buffer.
func (c *Catalog) Reset() {
	c.Header, c.Association = nil, nil
	c.header, c.association = HeaderDescriptor{}, InterfaceAssociationDescriptor{}
	c.InputTerminals.Reset()
	c.OutputTerminals.Reset()
	c.SelectorUnits.Reset()
	c.InputHeaders.Reset()
	c.MJPEGFormats.Reset()
	c.MJPEGFrames.Reset()
	c.UncompressedFormats.Reset()
	c.UncompressedFrames.Reset()
	c.Alternates = c.Alternates[:0]
	c.Skipped = 0
}
