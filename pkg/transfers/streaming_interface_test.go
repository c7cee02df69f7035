package transfers

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/requests"
)

type controlCall struct {
	requestType, request uint8
	value, index         uint16
	length               int
}

type fakeHandle struct {
	calls    []controlCall
	probe    []byte
	alts     []uint8
	claimed  bool
	released bool
	// frameSize is what GET_CUR reports as dwMaxVideoFrameSize.
	frameSize uint32
}

func (f *fakeHandle) ControlTransfer(requestType, request uint8, value, index uint16, data []byte, timeout time.Duration) (int, error) {
	f.calls = append(f.calls, controlCall{requestType, request, value, index, len(data)})
	switch requests.RequestCode(request) {
	case requests.RequestCodeSetCur:
		f.probe = append(f.probe[:0], data...)
	case requests.RequestCodeGetCur:
		copy(data, f.probe)
		binary.LittleEndian.PutUint32(data[18:22], f.frameSize)
	}
	return len(data), nil
}

func (f *fakeHandle) ClaimInterface(uint8) error   { f.claimed = true; return nil }
func (f *fakeHandle) ReleaseInterface(uint8) error { f.released = true; return nil }
func (f *fakeHandle) DetachKernelDriver(uint8) error {
	return errors.New("no driver bound")
}
func (f *fakeHandle) SetInterfaceAltSetting(_, alt uint8) error {
	f.alts = append(f.alts, alt)
	return nil
}

func alternates() []descriptors.AlternateSetting {
	ep := func(addr, attrs uint8, size uint16) descriptors.VideoDataEndpointDescriptor {
		return descriptors.VideoDataEndpointDescriptor{EndpointAddress: addr, AttributesBitmask: attrs, MaxPacketSize: size}
	}
	return []descriptors.AlternateSetting{
		{InterfaceNumber: 1, AlternateSetting: 0},
		{InterfaceNumber: 1, AlternateSetting: 1, Endpoints: []descriptors.VideoDataEndpointDescriptor{ep(0x81, 0x05, 0x0080)}},
		{InterfaceNumber: 1, AlternateSetting: 2, Endpoints: []descriptors.VideoDataEndpointDescriptor{ep(0x81, 0x05, 0x0200)}},
		{InterfaceNumber: 1, AlternateSetting: 3, Endpoints: []descriptors.VideoDataEndpointDescriptor{ep(0x81, 0x05, 0x1400)}},
		{InterfaceNumber: 1, AlternateSetting: 4, Endpoints: []descriptors.VideoDataEndpointDescriptor{ep(0x02, 0x05, 0x0400)}},
	}
}

func TestSelectEndpointLargestUnderLimit(t *testing.T) {
	si := newStreamingInterface(&fakeHandle{}, 0x0100, alternates())

	assert.Len(t, si.Endpoints(), 3)

	ep, err := si.SelectEndpoint(1023)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), ep.AlternateSetting)
	assert.Equal(t, uint32(512), ep.PayloadSize)

	ep, err = si.SelectEndpoint(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), ep.AlternateSetting)
	assert.Equal(t, uint32(3072), ep.PayloadSize)

	_, err = si.SelectEndpoint(64)
	assert.True(t, errors.Is(err, ErrNoEndpoint))
}

func TestNegotiateSequence(t *testing.T) {
	h := &fakeHandle{frameSize: 614400}
	si := newStreamingInterface(h, 0x0100, alternates())
	require.NoError(t, si.Claim())
	assert.True(t, h.claimed)

	probe := Selection{FormatIndex: 1, FrameIndex: 2, DefaultFrameInterval: 33333300, MaxVideoFrameBufferSize: 614400}.ProbeControl(512)
	negotiated, err := si.Negotiate(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), negotiated.FormatIndex)
	assert.Equal(t, uint8(2), negotiated.FrameIndex)
	assert.Equal(t, uint32(512), negotiated.MaxPayloadTransferSize)

	set, get := uint8(requests.RequestTypeVideoInterfaceSetRequest), uint8(requests.RequestTypeVideoInterfaceGetRequest)
	assert.Equal(t, []controlCall{
		{set, uint8(requests.RequestCodeSetCur), 0x0100, 1, 26},
		{get, uint8(requests.RequestCodeGetCur), 0x0100, 1, 26},
		{set, uint8(requests.RequestCodeSetCur), 0x0200, 1, 26},
	}, h.calls)
}

func TestNegotiateUsesRevisionSize(t *testing.T) {
	h := &fakeHandle{frameSize: 1}
	si := newStreamingInterface(h, 0x0150, alternates())
	_, err := si.Negotiate(context.Background(), &descriptors.VideoProbeCommitControl{})
	require.NoError(t, err)
	assert.Equal(t, 48, h.calls[0].length)
}

func TestNegotiateRejectsZeroFrameSize(t *testing.T) {
	h := &fakeHandle{}
	si := newStreamingInterface(h, 0x0100, alternates())

	_, err := si.Negotiate(context.Background(), &descriptors.VideoProbeCommitControl{FormatIndex: 1})
	assert.True(t, errors.Is(err, ErrNegotiationRejected))
	assert.Len(t, h.calls, 2, "commit must not be sent")
}

func TestNegotiateHonoursContext(t *testing.T) {
	h := &fakeHandle{frameSize: 1}
	si := newStreamingInterface(h, 0x0100, alternates())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := si.Negotiate(ctx, &descriptors.VideoProbeCommitControl{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.calls)
}

func TestStartSuspendClose(t *testing.T) {
	h := &fakeHandle{}
	si := newStreamingInterface(h, 0x0100, alternates())

	require.NoError(t, si.Start(Endpoint{AlternateSetting: 3}))
	require.NoError(t, si.Suspend())
	require.NoError(t, si.Close())

	assert.Equal(t, []uint8{3, 0, 0}, h.alts)
	assert.True(t, h.released)
}

func TestOpenReaderNeedsTransferHandle(t *testing.T) {
	si := newStreamingInterface(&fakeHandle{}, 0x0100, alternates())
	_, err := si.OpenReader(Endpoint{Type: descriptors.TransferTypeIsochronous, PayloadSize: 512}, &descriptors.VideoProbeCommitControl{})
	assert.Error(t, err)
}
