package formats

import "github.com/google/uuid"

// CompressionFormat is a format GUID in canonical (RFC 4122 text) byte order.
type CompressionFormat [16]byte

var (
	CompressionFormatYUY2 = CompressionFormat(uuid.MustParse("32595559-0000-0010-8000-00AA00389B71"))
	CompressionFormatNV12 = CompressionFormat(uuid.MustParse("3231564E-0000-0010-8000-00AA00389B71"))
	CompressionFormatM420 = CompressionFormat(uuid.MustParse("3032344D-0000-0010-8000-00AA00389B71"))
	CompressionFormatI420 = CompressionFormat(uuid.MustParse("30323449-0000-0010-8000-00AA00389B71"))
)

var names = map[CompressionFormat]string{
	CompressionFormatYUY2: "YUY2",
	CompressionFormatNV12: "NV12",
	CompressionFormatM420: "M420",
	CompressionFormatI420: "I420",
}

// FromGUID converts a GUID as it is laid out in a descriptor, with the first
// three fields little endian (UVC spec 1.5, section 2.9), to canonical order.
func FromGUID(wire [16]byte) CompressionFormat {
	var f CompressionFormat
	swapGUID(f[:], wire[:])
	return f
}

// GUID returns the descriptor byte layout of f.
func (f CompressionFormat) GUID() [16]byte {
	var wire [16]byte
	swapGUID(wire[:], f[:])
	return wire
}

// FourCC is the first four descriptor bytes of the GUID, which for the
// standard uncompressed formats spell the format name.
func (f CompressionFormat) FourCC() FourCC {
	wire := f.GUID()
	return FourCC(wire[:4])
}

func (f CompressionFormat) String() string {
	if name, ok := names[f]; ok {
		return name
	}
	return uuid.UUID(f).String()
}

func swapGUID(dst, src []byte) {
	dst[0], dst[1], dst[2], dst[3] = src[3], src[2], src[1], src[0]
	dst[4], dst[5] = src[5], src[4]
	dst[6], dst[7] = src[7], src[6]
	copy(dst[8:16], src[8:16])
}
