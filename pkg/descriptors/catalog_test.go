package descriptors

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dt "github.com/kevmo314/go-uvcstream/pkg/descriptors/descriptortest"
	"github.com/kevmo314/go-uvcstream/pkg/formats"
)

func TestParseBlockVideoControl(t *testing.T) {
	block := dt.Concat(
		dt.Header(0x0110, 1),
		dt.InputTerminal(1),
		dt.SelectorUnit(2, 1, 4),
		dt.OutputTerminal(3, 2),
	)
	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoControl, block))

	require.NotNil(t, cat.Header)
	assert.Equal(t, "1.10", cat.Header.UVC.String())
	assert.Equal(t, []uint8{1}, cat.Header.VideoStreamingInterfaceIndexes)

	require.Equal(t, 1, cat.InputTerminals.Len())
	assert.Equal(t, InputTerminalTypeCamera, cat.InputTerminals.At(0).TerminalType)
	require.Equal(t, 1, cat.SelectorUnits.Len())
	assert.Equal(t, []uint8{1, 4}, cat.SelectorUnits.At(0).SourceIDs)
	require.Equal(t, 1, cat.OutputTerminals.Len())
	assert.Equal(t, uint8(2), cat.OutputTerminals.At(0).SourceID)
	assert.Zero(t, cat.Skipped)
}

func TestOutputTerminalDisplay(t *testing.T) {
	desc := dt.OutputTerminal(3, 2)
	desc[4], desc[5] = 0x01, 0x03

	var otd OutputTerminalDescriptor
	require.NoError(t, otd.UnmarshalBinary(desc))
	assert.Equal(t, OutputTerminalTypeDisplay, otd.TerminalType)
	assert.Equal(t, "display", otd.TerminalType.String())
	assert.Equal(t, "streaming", OutputTerminalType(TerminalTypeStreaming).String())
}

func TestParseBlockVideoStreaming(t *testing.T) {
	block := dt.Concat(
		dt.InputHeader(2, 0x81),
		dt.MJPEGFormat(1, 2),
		dt.MJPEGFrame(1, 640, 480, 333333, 666666),
		dt.MJPEGFrame(2, 1280, 720),
		dt.UncompressedFormat(2, 1, dt.GUIDYUY2),
		dt.UncompressedFrame(1, 640, 480, 333333),
	)
	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoStreaming, block))

	require.Equal(t, 1, cat.InputHeaders.Len())
	ih := cat.InputHeaders.At(0)
	assert.Equal(t, uint8(0x81), ih.EndpointAddress)
	assert.Equal(t, []byte{1}, ih.ControlBitmask(1))
	assert.Nil(t, ih.ControlBitmask(2))

	require.Equal(t, 1, cat.MJPEGFormats.Len())
	assert.Equal(t, uint8(1), cat.MJPEGFormats.At(0).Index())
	require.Equal(t, 2, cat.MJPEGFrames.Len())

	discrete := cat.MJPEGFrames.At(0).Frame()
	assert.Equal(t, uint16(640), discrete.Width)
	assert.Equal(t, uint16(480), discrete.Height)
	assert.Equal(t, uint32(640*480*2), discrete.MaxVideoFrameBufferSize)
	assert.False(t, discrete.Continuous())
	assert.Equal(t, 2, discrete.IntervalCount())
	assert.Equal(t, 66666600*time.Nanosecond, discrete.Interval(1))
	assert.InDelta(t, 30.0, discrete.FrameRate(), 0.01)

	continuous := cat.MJPEGFrames.At(1).Frame()
	assert.True(t, continuous.Continuous())
	assert.Equal(t, 3, continuous.IntervalCount())
	assert.Equal(t, 16666700*time.Nanosecond, continuous.Interval(2))
	assert.Zero(t, continuous.Interval(3))

	require.Equal(t, 1, cat.UncompressedFormats.Len())
	uf := cat.UncompressedFormats.At(0)
	assert.Equal(t, formats.FourCCYUY2, uf.FourCC())
	assert.Equal(t, formats.CompressionFormatYUY2, uf.Format())
	assert.Equal(t, uint8(16), uf.BitsPerPixel)
	require.Equal(t, 1, cat.UncompressedFrames.Len())
}

func TestParseBlockOverflowKeepsFirst(t *testing.T) {
	var block []byte
	for i := 1; i <= 12; i++ {
		block = append(block, dt.MJPEGFrame(byte(i), uint16(100*i), 100)...)
	}
	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoStreaming, block))

	assert.Equal(t, 10, cat.MJPEGFrames.Len())
	assert.Equal(t, 2, cat.MJPEGFrames.Dropped())
	for i, f := range cat.MJPEGFrames.Items() {
		assert.Equal(t, uint8(i+1), f.FrameIndex)
	}
}

func TestParseBlockMalformedLength(t *testing.T) {
	t.Run("zero length", func(t *testing.T) {
		block := dt.Concat(dt.MJPEGFormat(1, 1), []byte{0, 0x24, 0x07})
		cat := NewCatalog(DefaultLimits())
		err := cat.ParseBlock(SubclassCodeVideoStreaming, block)
		assert.True(t, errors.Is(err, ErrMalformedDescriptor))
		assert.Equal(t, 1, cat.MJPEGFormats.Len())
	})

	t.Run("overrun", func(t *testing.T) {
		frame := dt.MJPEGFrame(1, 640, 480)
		block := dt.Concat(dt.MJPEGFormat(1, 1), frame[:len(frame)-4])
		cat := NewCatalog(DefaultLimits())
		err := cat.ParseBlock(SubclassCodeVideoStreaming, block)
		assert.True(t, errors.Is(err, ErrMalformedDescriptor))
		assert.Equal(t, 1, cat.MJPEGFormats.Len())
		assert.Zero(t, cat.MJPEGFrames.Len())
	})
}

func TestParseBlockSkipsShortAndUnknown(t *testing.T) {
	short := []byte{6, 0x24, 0x07, 1, 0, 0x80}
	unknown := []byte{4, 0x24, 0x10, 0}
	other := []byte{3, 0x25, 0x01}
	block := dt.Concat(short, unknown, other, dt.MJPEGFrame(2, 320, 240))

	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoStreaming, block))

	assert.Equal(t, 2, cat.Skipped)
	require.Equal(t, 1, cat.MJPEGFrames.Len())
	assert.Equal(t, uint16(320), cat.MJPEGFrames.At(0).Width)
}

func TestParseBlockRecordsAliasBuffer(t *testing.T) {
	block := dt.MJPEGFrame(1, 640, 480, 333333)
	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoStreaming, block))

	raw := cat.MJPEGFrames.At(0).Raw
	require.NotEmpty(t, raw)
	assert.Same(t, &block[0], &raw[0])
}

func TestParseConfiguration(t *testing.T) {
	raw := dt.Concat(
		[]byte{9, 0x02, 0, 0, 2, 1, 0, 0x80, 0xfa},
		dt.Association(0, 2),
		dt.Interface(0, 0, 0x0E, 0x01, 1),
		dt.Header(0x0100, 1),
		dt.InputTerminal(1),
		dt.OutputTerminal(2, 1),
		dt.Endpoint(0x83, 0x03, 16),
		dt.Interface(1, 0, 0x0E, 0x02, 0),
		dt.InputHeader(1, 0x81),
		dt.MJPEGFormat(1, 1),
		dt.MJPEGFrame(1, 640, 480),
		dt.Interface(1, 1, 0x0E, 0x02, 1),
		dt.Endpoint(0x81, 0x05, 0x0c00),
		dt.Interface(1, 2, 0x0E, 0x02, 1),
		dt.Endpoint(0x81, 0x05, 0x1400),
		// an audio interface whose 0x24 descriptors must not be read as video
		dt.Interface(2, 0, 0x01, 0x02, 0),
		dt.MJPEGFormat(9, 1),
	)

	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseConfiguration(raw))

	require.NotNil(t, cat.Association)
	assert.True(t, cat.Association.Contains(1))
	require.NotNil(t, cat.Header)
	assert.Equal(t, 1, cat.InputTerminals.Len())
	assert.Equal(t, 1, cat.OutputTerminals.Len())
	assert.Equal(t, 1, cat.InputHeaders.Len())
	assert.Equal(t, 1, cat.MJPEGFormats.Len())
	assert.Equal(t, uint8(1), cat.MJPEGFormats.At(0).FormatIndex)
	assert.Equal(t, 1, cat.MJPEGFrames.Len())

	require.Len(t, cat.Alternates, 3)
	assert.Empty(t, cat.Alternates[0].Endpoints)
	assert.Equal(t, uint32(0x400*2), cat.Alternates[1].MaxPayloadSize())
	assert.Equal(t, uint32(0x400*3), cat.Alternates[2].MaxPayloadSize())
	assert.Equal(t, TransferTypeIsochronous, cat.Alternates[2].Endpoints[0].TransferType())
}

func TestCatalogStatsAndReset(t *testing.T) {
	var block []byte
	for i := 1; i <= 4; i++ {
		block = append(block, dt.MJPEGFormat(byte(i), 1)...)
	}
	cat := NewCatalog(DefaultLimits())
	require.NoError(t, cat.ParseBlock(SubclassCodeVideoStreaming, block))

	stats := cat.Stats()
	assert.Equal(t, KindStats{KindMJPEGFormat, 3, 1}, stats[KindMJPEGFormat])
	assert.Equal(t, 4, cat.MJPEGFormats.Seen())

	cat.Reset()
	assert.Zero(t, cat.MJPEGFormats.Seen())
	assert.Nil(t, cat.Header)
}

func TestEndpointPayloadSize(t *testing.T) {
	assert.Equal(t, uint32(1024), EndpointPayloadSize(0x0400))
	assert.Equal(t, uint32(3072), EndpointPayloadSize(0x1400))
	assert.Equal(t, uint32(512), EndpointPayloadSize(0x0200))
}
