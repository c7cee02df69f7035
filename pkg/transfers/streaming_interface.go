package transfers

import (
	"context"
	"io"
	"time"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/requests"
)

// ControlTimeout bounds class requests when the context has no deadline.
const ControlTimeout = time.Second

var (
	ErrNoEndpoint = errors.New("no usable streaming endpoint")
	// ErrNegotiationRejected reports a probe the device answered with a zero
	// dwMaxVideoFrameSize.
	ErrNegotiationRejected = errors.New("probe rejected by device")
)

// ControlHandle is the part of a device handle used for interface
// management and class requests. *usb.DeviceHandle implements it.
type ControlHandle interface {
	ControlTransfer(requestType, request uint8, value, index uint16, data []byte, timeout time.Duration) (int, error)
	ClaimInterface(iface uint8) error
	ReleaseInterface(iface uint8) error
	SetInterfaceAltSetting(iface, altSetting uint8) error
	DetachKernelDriver(iface uint8) error
}

// Endpoint is an IN data endpoint of one alternate setting.
type Endpoint struct {
	AlternateSetting uint8
	Address          uint8
	Type             descriptors.TransferType
	PayloadSize      uint32
}

// StreamingInterface drives one VideoStreaming interface.
type StreamingInterface struct {
	ctrl ControlHandle
	dev  *usb.DeviceHandle

	number     uint8
	bcdUVC     descriptors.BinaryCodedDecimal
	alternates []descriptors.AlternateSetting

	log *logrus.Entry
}

func NewStreamingInterface(handle *usb.DeviceHandle, bcdUVC descriptors.BinaryCodedDecimal, alternates []descriptors.AlternateSetting) *StreamingInterface {
	si := newStreamingInterface(handle, bcdUVC, alternates)
	si.dev = handle
	return si
}

func newStreamingInterface(ctrl ControlHandle, bcdUVC descriptors.BinaryCodedDecimal, alternates []descriptors.AlternateSetting) *StreamingInterface {
	si := &StreamingInterface{ctrl: ctrl, bcdUVC: bcdUVC, alternates: alternates}
	if len(alternates) > 0 {
		si.number = alternates[0].InterfaceNumber
	}
	si.log = logrus.WithFields(logrus.Fields{"component": "streaming", "interface": si.number})
	return si
}

func (si *StreamingInterface) InterfaceNumber() uint8 { return si.number }

func (si *StreamingInterface) UVCVersion() descriptors.BinaryCodedDecimal { return si.bcdUVC }

// Endpoints lists the isochronous and bulk IN endpoints of every alternate
// setting.
func (si *StreamingInterface) Endpoints() []Endpoint {
	var eps []Endpoint
	for _, alt := range si.alternates {
		for _, ep := range alt.Endpoints {
			t := ep.TransferType()
			if !ep.In() || (t != descriptors.TransferTypeIsochronous && t != descriptors.TransferTypeBulk) {
				continue
			}
			eps = append(eps, Endpoint{
				AlternateSetting: alt.AlternateSetting,
				Address:          ep.EndpointAddress,
				Type:             t,
				PayloadSize:      ep.PayloadSize(),
			})
		}
	}
	return eps
}

// SelectEndpoint returns the endpoint with the largest payload size not
// above limit. A zero limit accepts any size.
func (si *StreamingInterface) SelectEndpoint(limit uint32) (Endpoint, error) {
	var best Endpoint
	found := false
	for _, ep := range si.Endpoints() {
		if limit > 0 && ep.PayloadSize > limit {
			continue
		}
		if !found || ep.PayloadSize > best.PayloadSize {
			best, found = ep, true
		}
	}
	if !found {
		return Endpoint{}, errors.Wrapf(ErrNoEndpoint, "interface %d, limit %d", si.number, limit)
	}
	return best, nil
}

// Claim detaches any kernel driver and claims the interface.
func (si *StreamingInterface) Claim() error {
	if err := si.ctrl.DetachKernelDriver(si.number); err != nil {
		si.log.WithError(err).Debug("detach kernel driver")
	}
	return errors.Wrapf(si.ctrl.ClaimInterface(si.number), "claim interface %d", si.number)
}

// Negotiate runs the probe/commit sequence: SET_CUR probe, GET_CUR probe,
// SET_CUR commit. It returns the parameters the device settled on.
func (si *StreamingInterface) Negotiate(ctx context.Context, probe *descriptors.VideoProbeCommitControl) (*descriptors.VideoProbeCommitControl, error) {
	buf := make([]byte, descriptors.ProbeCommitSize(si.bcdUVC))
	if err := probe.MarshalInto(buf); err != nil {
		return nil, err
	}
	if err := si.control(ctx, requests.RequestTypeVideoInterfaceSetRequest, requests.RequestCodeSetCur, descriptors.VideoStreamingControlSelectorProbe, buf); err != nil {
		return nil, errors.Wrap(err, "set probe")
	}
	if err := si.control(ctx, requests.RequestTypeVideoInterfaceGetRequest, requests.RequestCodeGetCur, descriptors.VideoStreamingControlSelectorProbe, buf); err != nil {
		return nil, errors.Wrap(err, "get probe")
	}
	negotiated := &descriptors.VideoProbeCommitControl{}
	if err := negotiated.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	if negotiated.MaxVideoFrameSize == 0 {
		return nil, errors.Wrapf(ErrNegotiationRejected, "format %d frame %d", probe.FormatIndex, probe.FrameIndex)
	}
	if err := si.control(ctx, requests.RequestTypeVideoInterfaceSetRequest, requests.RequestCodeSetCur, descriptors.VideoStreamingControlSelectorCommit, buf); err != nil {
		return nil, errors.Wrap(err, "set commit")
	}
	si.log.WithFields(logrus.Fields{
		"format":      negotiated.FormatIndex,
		"frame":       negotiated.FrameIndex,
		"interval":    negotiated.FrameInterval,
		"max_frame":   negotiated.MaxVideoFrameSize,
		"max_payload": negotiated.MaxPayloadTransferSize,
	}).Info("stream parameters committed")
	return negotiated, nil
}

func (si *StreamingInterface) control(ctx context.Context, rt requests.RequestType, rc requests.RequestCode, cs descriptors.VideoStreamingControlSelector, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := ControlTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	n, err := si.ctrl.ControlTransfer(uint8(rt), uint8(rc), cs.Value(), uint16(si.number), buf, timeout)
	if err != nil {
		return err
	}
	if rt.DeviceToHost() && n < descriptors.ProbeCommitSizeUVC10 {
		return errors.Wrapf(io.ErrShortBuffer, "%s returned %d bytes", rc, n)
	}
	return nil
}

// Start selects the alternate setting of ep, which starts the stream.
func (si *StreamingInterface) Start(ep Endpoint) error {
	return errors.Wrapf(si.ctrl.SetInterfaceAltSetting(si.number, ep.AlternateSetting), "select alternate setting %d", ep.AlternateSetting)
}

// Suspend returns the interface to the zero bandwidth alternate setting.
// Resume by negotiating and starting again.
func (si *StreamingInterface) Suspend() error {
	return errors.Wrap(si.ctrl.SetInterfaceAltSetting(si.number, 0), "select alternate setting 0")
}

// OpenReader starts transfers on ep sized for the negotiated parameters.
func (si *StreamingInterface) OpenReader(ep Endpoint, negotiated *descriptors.VideoProbeCommitControl) (PacketReader, error) {
	if si.dev == nil {
		return nil, errors.New("streaming interface has no transfer handle")
	}
	switch ep.Type {
	case descriptors.TransferTypeIsochronous:
		size := int(ep.PayloadSize)
		packets := min((int(negotiated.MaxVideoFrameSize)+size-1)/size, 128)
		r, err := NewIsochronousReader(si.dev, ep.Address, max(packets, 1), size)
		if err != nil {
			return nil, err
		}
		return r, nil
	case descriptors.TransferTypeBulk:
		r, err := NewAsyncBulkReader(si.dev, ep.Address, negotiated.MaxPayloadTransferSize, DefaultNumTransfers)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, errors.Wrapf(ErrNoEndpoint, "%s endpoint %#02x", ep.Type, ep.Address)
}

// Close suspends the stream and releases the interface.
func (si *StreamingInterface) Close() error {
	if err := si.Suspend(); err != nil {
		si.log.WithError(err).Debug("suspend on close")
	}
	return errors.Wrapf(si.ctrl.ReleaseInterface(si.number), "release interface %d", si.number)
}
