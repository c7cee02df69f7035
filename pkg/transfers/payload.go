package transfers

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrMalformedPayload reports a payload whose header length byte is below
// the two byte minimum or runs past the end of the packet.
var ErrMalformedPayload = errors.New("malformed payload header")

// Payload is one UVC payload transfer, UVC spec 1.5, section 2.4.3.3.
// Data aliases the packet it was decoded from.
type Payload struct {
	HeaderLength      uint8
	HeaderInfoBitmask uint8
	PTS               uint32
	SCR               struct {
		SourceTimeClock uint32
		TokenCounter    uint16
	}
	Data []byte
}

func (f *Payload) FrameID() bool {
	return f.HeaderInfoBitmask&0b00000001 != 0
}

func (f *Payload) EndOfFrame() bool {
	return f.HeaderInfoBitmask&0b00000010 != 0
}

func (f *Payload) HasPTS() bool {
	return f.HeaderInfoBitmask&0b00000100 != 0
}

func (f *Payload) HasSCR() bool {
	return f.HeaderInfoBitmask&0b00001000 != 0
}

func (f *Payload) PayloadSpecificBit() bool {
	return f.HeaderInfoBitmask&0b00010000 != 0
}

func (f *Payload) StillImage() bool {
	return f.HeaderInfoBitmask&0b00100000 != 0
}

func (f *Payload) Error() bool {
	return f.HeaderInfoBitmask&0b01000000 != 0
}

func (f *Payload) EndOfHeader() bool {
	return f.HeaderInfoBitmask&0b10000000 != 0
}

// UnmarshalBinary decodes the header whose length is given by buf[0]. PTS
// and SCR are only read when their flag is set and the declared header is
// long enough to hold them; the payload data always starts right after the
// declared header.
func (f *Payload) UnmarshalBinary(buf []byte) error {
	if len(buf) < 2 {
		return errors.Wrapf(ErrMalformedPayload, "%d byte packet", len(buf))
	}
	hl := int(buf[0])
	if hl < 2 || hl > len(buf) {
		return errors.Wrapf(ErrMalformedPayload, "header length %d in %d byte packet", hl, len(buf))
	}
	f.HeaderLength = buf[0]
	f.HeaderInfoBitmask = buf[1]
	f.PTS = 0
	f.SCR.SourceTimeClock, f.SCR.TokenCounter = 0, 0
	offset := 2
	if f.HasPTS() && offset+4 <= hl {
		f.PTS = binary.LittleEndian.Uint32(buf[offset : offset+4])
		offset += 4
	}
	if f.HasSCR() && offset+6 <= hl {
		f.SCR.SourceTimeClock = binary.LittleEndian.Uint32(buf[offset : offset+4])
		f.SCR.TokenCounter = binary.LittleEndian.Uint16(buf[offset+4 : offset+6])
	}
	f.Data = buf[hl:]
	return nil
}
