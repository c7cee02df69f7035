package formats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestYUY2GUIDLayout(t *testing.T) {
	wire := CompressionFormatYUY2.GUID()
	assert.Equal(t, []byte("YUY2"), wire[:4])
	assert.Equal(t, FourCCYUY2, CompressionFormatYUY2.FourCC())
	assert.Equal(t, CompressionFormatYUY2, FromGUID(wire))
}

func TestCompressionFormatString(t *testing.T) {
	assert.Equal(t, "NV12", CompressionFormatNV12.String())

	unknown := CompressionFormat(uuid.MustParse("00000000-1111-2222-3333-444455556666"))
	assert.Equal(t, "00000000-1111-2222-3333-444455556666", unknown.String())
}

func TestFourCCString(t *testing.T) {
	assert.Equal(t, "YUY2", FourCCYUY2.String())
	assert.Equal(t, "A.B.", FourCC{'A', 0, 'B', 0xff}.String())
}
