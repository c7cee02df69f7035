package uvc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	dt "github.com/kevmo314/go-uvcstream/pkg/descriptors/descriptortest"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

func webcamConfig() *usb.ConfigDescriptor {
	control := usb.InterfaceAltSetting{
		InterfaceNumber:   0,
		InterfaceClass:    0x0E,
		InterfaceSubClass: 0x01,
		Extra:             dt.Concat(dt.Header(0x0100, 1), dt.InputTerminal(1), dt.OutputTerminal(2, 1)),
	}
	streaming := []usb.InterfaceAltSetting{
		{
			InterfaceNumber:   1,
			InterfaceClass:    0x0E,
			InterfaceSubClass: 0x02,
			Extra: dt.Concat(
				dt.InputHeader(1, 0x81),
				dt.MJPEGFormat(1, 2),
				dt.MJPEGFrame(1, 1280, 720, 333333),
				dt.MJPEGFrame(2, 640, 480, 333333, 666666),
			),
		},
		{
			InterfaceNumber:   1,
			AlternateSetting:  1,
			InterfaceClass:    0x0E,
			InterfaceSubClass: 0x02,
			NumEndpoints:      1,
			Endpoints:         []usb.Endpoint{{EndpointAddr: 0x81, Attributes: 0x05, MaxPacketSize: 0x0200}},
		},
		{
			InterfaceNumber:   1,
			AlternateSetting:  2,
			InterfaceClass:    0x0E,
			InterfaceSubClass: 0x02,
			NumEndpoints:      1,
			Endpoints:         []usb.Endpoint{{EndpointAddr: 0x81, Attributes: 0x05, MaxPacketSize: 0x1400}},
		},
	}
	audio := usb.InterfaceAltSetting{
		InterfaceNumber:   2,
		InterfaceClass:    0x01,
		InterfaceSubClass: 0x01,
		// An audio header uses the same subtype as the video header.
		Extra: dt.Header(0x0100),
	}
	return &usb.ConfigDescriptor{
		Interfaces: []usb.Interface{
			{AltSettings: []usb.InterfaceAltSetting{control}},
			{AltSettings: streaming},
			{AltSettings: []usb.InterfaceAltSetting{audio}},
		},
	}
}

func TestBuildCatalog(t *testing.T) {
	cat := descriptors.NewCatalog(descriptors.DefaultLimits())
	control, err := buildCatalog(cat, webcamConfig())
	require.NoError(t, err)

	assert.Equal(t, uint8(0), control)
	require.NotNil(t, cat.Header)
	assert.Equal(t, "1.00", cat.Header.UVC.String())
	assert.Equal(t, 1, cat.InputTerminals.Len())
	assert.Equal(t, 1, cat.OutputTerminals.Len())
	assert.Equal(t, 1, cat.InputHeaders.Len())
	assert.Equal(t, 1, cat.MJPEGFormats.Len())
	assert.Equal(t, 2, cat.MJPEGFrames.Len())
	assert.Zero(t, cat.Skipped)

	require.Len(t, cat.Alternates, 3)
	assert.Empty(t, cat.Alternates[0].Endpoints)
	assert.Equal(t, uint32(3072), cat.Alternates[2].MaxPayloadSize())

	sel, err := transfers.SelectFormat(cat, transfers.Target{Encoding: transfers.EncodingMJPEG, Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Equal(t, uint8(1), sel.FormatIndex)
	assert.Equal(t, uint8(2), sel.FrameIndex)
}

func TestBuildCatalogWithoutVideoControl(t *testing.T) {
	cfg := webcamConfig()
	cfg.Interfaces = cfg.Interfaces[1:]
	_, err := buildCatalog(descriptors.NewCatalog(descriptors.DefaultLimits()), cfg)
	assert.ErrorIs(t, err, ErrNoVideoControl)
}

func TestBuildCatalogNotVideo(t *testing.T) {
	cfg := webcamConfig()
	cfg.Interfaces = cfg.Interfaces[2:]
	_, err := buildCatalog(descriptors.NewCatalog(descriptors.DefaultLimits()), cfg)
	assert.ErrorIs(t, err, ErrNotVideoDevice)
}

func TestBuildCatalogMalformedExtra(t *testing.T) {
	cfg := webcamConfig()
	cfg.Interfaces[0].AltSettings[0].Extra = []byte{0x09, 0x24, 0x01}
	_, err := buildCatalog(descriptors.NewCatalog(descriptors.DefaultLimits()), cfg)
	assert.ErrorIs(t, err, descriptors.ErrMalformedDescriptor)
}

func TestGroupAlternates(t *testing.T) {
	groups := groupAlternates([]descriptors.AlternateSetting{
		{InterfaceNumber: 3, AlternateSetting: 0},
		{InterfaceNumber: 1, AlternateSetting: 0},
		{InterfaceNumber: 3, AlternateSetting: 1},
		{InterfaceNumber: 1, AlternateSetting: 1},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, uint8(1), groups[0][0].InterfaceNumber)
	assert.Len(t, groups[0], 2)
	assert.Equal(t, uint8(3), groups[1][0].InterfaceNumber)
	assert.Equal(t, uint8(1), groups[1][1].AlternateSetting)
}

func TestHasVideoInterface(t *testing.T) {
	assert.True(t, hasVideoInterface(webcamConfig()))
	assert.False(t, hasVideoInterface(&usb.ConfigDescriptor{
		Interfaces: []usb.Interface{{AltSettings: []usb.InterfaceAltSetting{{InterfaceClass: 0x03}}}},
	}))
}

// stalledReader blocks in ReadPacket until it is closed, like a camera that
// has stopped sending.
type stalledReader struct {
	closed chan struct{}
	once   sync.Once
	closes atomic.Int32
}

func newStalledReader() *stalledReader {
	return &stalledReader{closed: make(chan struct{})}
}

func (r *stalledReader) ReadPacket(buf []byte) (int, error) {
	<-r.closed
	return 0, transfers.ErrReaderClosed
}

func (r *stalledReader) Close() error {
	r.closes.Add(1)
	r.once.Do(func() { close(r.closed) })
	return nil
}

func TestRunReturnsWhenSourceStalls(t *testing.T) {
	reader := newStalledReader()
	s := &Stream{
		reader:      reader,
		reassembler: transfers.NewReassembler(),
		queue:       transfers.NewFrameQueue(1, 16),
		packet:      make([]byte, 64),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(transfers.Frame) error { return nil })
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after its context expired")
	}
	assert.GreaterOrEqual(t, reader.closes.Load(), int32(1))
}

func TestRunReportsConsumerError(t *testing.T) {
	failure := errors.New("sink full")
	reader := newStalledReader()
	s := &Stream{
		reader:      reader,
		reassembler: transfers.NewReassembler(),
		queue:       transfers.NewFrameQueue(1, 16),
		packet:      make([]byte, 64),
	}
	s.queue.Offer([]byte{1, 2, 3})

	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), func(transfers.Frame) error { return failure })
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, failure)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the consumer failed")
	}
}
