// Package descriptortest builds raw UVC class-specific descriptors for tests.
package descriptortest

import "encoding/binary"

const csInterface = 0x24

// GUIDYUY2 is the YUY2 format GUID in descriptor byte order.
var GUIDYUY2 = [16]byte{'Y', 'U', 'Y', '2', 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// GUIDNV12 is the NV12 format GUID in descriptor byte order.
var GUIDNV12 = [16]byte{'N', 'V', '1', '2', 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

func finish(b []byte) []byte {
	b[0] = byte(len(b))
	return b
}

// Header is a VideoControl header listing one streaming interface.
func Header(bcdUVC uint16, streaming ...byte) []byte {
	b := []byte{0, csInterface, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, byte(len(streaming))}
	binary.LittleEndian.PutUint16(b[3:5], bcdUVC)
	binary.LittleEndian.PutUint32(b[7:11], 48000000)
	return finish(append(b, streaming...))
}

// InputTerminal is a camera input terminal.
func InputTerminal(id byte) []byte {
	return finish([]byte{0, csInterface, 0x02, id, 0x01, 0x02, 0, 0})
}

// OutputTerminal is a USB streaming output terminal fed by source.
func OutputTerminal(id, source byte) []byte {
	return finish([]byte{0, csInterface, 0x03, id, 0x01, 0x01, 0, source, 0})
}

func SelectorUnit(id byte, sources ...byte) []byte {
	b := append([]byte{0, csInterface, 0x04, id, byte(len(sources))}, sources...)
	return finish(append(b, 0))
}

// InputHeader declares formats formats with a one byte control bitmask each.
func InputHeader(formats int, endpoint byte) []byte {
	b := []byte{0, csInterface, 0x01, byte(formats), 0, 0, endpoint, 0, 3, 0, 0, 0, 1}
	for i := 0; i < formats; i++ {
		b = append(b, byte(i))
	}
	return finish(b)
}

func MJPEGFormat(index, frames byte) []byte {
	return finish([]byte{0, csInterface, 0x06, index, frames, 0x01, 1, 0, 0, 0, 0})
}

func UncompressedFormat(index, frames byte, guid [16]byte) []byte {
	b := []byte{0, csInterface, 0x04, index, frames}
	b = append(b, guid[:]...)
	b = append(b, 16, 1, 0, 0, 0, 0)
	return finish(b)
}

// Frame is a frame descriptor of the given subtype with discrete intervals
// in 100ns units. With no intervals it describes a continuous range of
// 333333..1000000 step 166667.
func Frame(subtype, index byte, width, height uint16, intervals ...uint32) []byte {
	b := make([]byte, 26)
	b[1], b[2], b[3] = csInterface, subtype, index
	binary.LittleEndian.PutUint16(b[5:7], width)
	binary.LittleEndian.PutUint16(b[7:9], height)
	binary.LittleEndian.PutUint32(b[9:13], uint32(width)*uint32(height)*16*5)
	binary.LittleEndian.PutUint32(b[13:17], uint32(width)*uint32(height)*16*30)
	binary.LittleEndian.PutUint32(b[17:21], uint32(width)*uint32(height)*2)
	b[25] = byte(len(intervals))
	if len(intervals) == 0 {
		intervals = []uint32{333333, 1000000, 166667}
	}
	binary.LittleEndian.PutUint32(b[21:25], intervals[0])
	for _, iv := range intervals {
		b = binary.LittleEndian.AppendUint32(b, iv)
	}
	return finish(b)
}

func MJPEGFrame(index byte, width, height uint16, intervals ...uint32) []byte {
	return Frame(0x07, index, width, height, intervals...)
}

func UncompressedFrame(index byte, width, height uint16, intervals ...uint32) []byte {
	return Frame(0x05, index, width, height, intervals...)
}

// Interface is a standard interface descriptor.
func Interface(number, alt, class, subclass, endpoints byte) []byte {
	return []byte{9, 0x04, number, alt, endpoints, class, subclass, 0, 0}
}

// Endpoint is a standard endpoint descriptor.
func Endpoint(address, attributes byte, maxPacketSize uint16) []byte {
	b := []byte{7, 0x05, address, attributes, 0, 0, 1}
	binary.LittleEndian.PutUint16(b[4:6], maxPacketSize)
	return b
}

// Association is a video interface collection association.
func Association(first, count byte) []byte {
	return []byte{8, 0x0B, first, count, 0x0E, 0x03, 0x00, 0}
}

func Concat(descs ...[]byte) []byte {
	var out []byte
	for _, d := range descs {
		out = append(out, d...)
	}
	return out
}
