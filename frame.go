package uvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

type StreamOptions struct {
	Target transfers.Target

	// RxFIFOLimit is the largest endpoint payload size to use, zero for any.
	RxFIFOLimit uint32
	// FrameBufferSize is the capacity of each reassembly buffer. Zero sizes
	// the buffers from the negotiated dwMaxVideoFrameSize.
	FrameBufferSize int
	QueueDepth      int
}

// Stream is a negotiated, running video stream on one streaming interface.
type Stream struct {
	Selection  transfers.Selection
	Endpoint   transfers.Endpoint
	Negotiated *descriptors.VideoProbeCommitControl

	si          *transfers.StreamingInterface
	reader      transfers.PacketReader
	reassembler *transfers.Reassembler
	queue       *transfers.FrameQueue
	packet      []byte
	log         *logrus.Entry
}

// OpenStream selects the format and frame matching opts.Target, negotiates
// it on the first streaming interface with a usable endpoint and starts the
// transfers.
func (info *DeviceInfo) OpenStream(ctx context.Context, opts StreamOptions) (*Stream, error) {
	sel, err := transfers.SelectFormat(info.Catalog, opts.Target)
	if err != nil {
		return nil, err
	}
	var (
		si *transfers.StreamingInterface
		ep transfers.Endpoint
	)
	for _, candidate := range info.StreamingInterfaces {
		if ep, err = candidate.SelectEndpoint(opts.RxFIFOLimit); err == nil {
			si = candidate
			break
		}
	}
	if si == nil {
		return nil, errors.Wrapf(transfers.ErrNoEndpoint, "rx fifo limit %d", opts.RxFIFOLimit)
	}
	s, err := openStream(ctx, si, sel, ep, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openStream(ctx context.Context, si *transfers.StreamingInterface, sel transfers.Selection, ep transfers.Endpoint, opts StreamOptions) (*Stream, error) {
	if err := si.Claim(); err != nil {
		return nil, err
	}
	negotiated, err := si.Negotiate(ctx, sel.ProbeControl(ep.PayloadSize))
	if err != nil {
		si.Close()
		return nil, err
	}
	if err := si.Start(ep); err != nil {
		si.Close()
		return nil, err
	}
	reader, err := si.OpenReader(ep, negotiated)
	if err != nil {
		si.Close()
		return nil, err
	}

	size := opts.FrameBufferSize
	if size <= 0 {
		size = int(max(negotiated.MaxVideoFrameSize, sel.MaxVideoFrameBufferSize))
	}
	log := logrus.WithFields(logrus.Fields{
		"component": "stream",
		"interface": si.InterfaceNumber(),
		"endpoint":  ep.Address,
	})
	s := &Stream{
		Selection:  sel,
		Endpoint:   ep,
		Negotiated: negotiated,
		si:         si,
		reader:     &tracingReader{PacketReader: reader, log: log},
		reassembler: transfers.NewReassembler(
			transfers.WithMaxPacketSize(int(max(ep.PayloadSize, negotiated.MaxPayloadTransferSize))),
			transfers.WithLogger(log.WithField("component", "reassembler")),
		),
		queue:  transfers.NewFrameQueue(max(opts.QueueDepth, 1), size),
		packet: make([]byte, max(ep.PayloadSize, negotiated.MaxPayloadTransferSize)),
		log:    log,
	}
	s.reassembler.InitBuffers(make([]byte, size), make([]byte, size))
	s.reassembler.OnFrame(func(frame []byte) { s.queue.Offer(frame) })
	log.WithFields(logrus.Fields{
		"format":       sel.FormatIndex,
		"frame":        sel.FrameIndex,
		"payload_size": ep.PayloadSize,
		"buffer_size":  size,
	}).Info("stream started")
	return s, nil
}

// Run pumps packets into the reassembler and delivers completed frames to
// fn on a separate goroutine until ctx is done, the packet source ends or fn
// returns an error. The frame passed to fn is only valid until fn returns.
// Ending ctx closes the packet reader, so Run returns even when the device
// has stopped sending.
func (s *Stream) Run(ctx context.Context, fn func(transfers.Frame) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return transfers.Pump(gctx, s.reader, s.reassembler, s.packet)
	})
	g.Go(func() error {
		return s.queue.Run(gctx, fn)
	})
	err := g.Wait()
	if err == nil || ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Stream) Stats() (transfers.ReassemblerStats, transfers.FrameQueueStats) {
	return s.reassembler.Stats(), s.queue.Stats()
}

// Close stops the transfers and returns the interface to zero bandwidth. The
// reader may already be closed by Run.
func (s *Stream) Close() error {
	rerr := s.reader.Close()
	if err := s.si.Close(); err != nil {
		return err
	}
	return errors.Wrap(rerr, "close reader")
}

// tracingReader logs decoded payload headers at trace level.
type tracingReader struct {
	transfers.PacketReader
	log *logrus.Entry
}

func (t *tracingReader) ReadPacket(buf []byte) (int, error) {
	n, err := t.PacketReader.ReadPacket(buf)
	if err != nil || !t.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return n, err
	}
	var p transfers.Payload
	if perr := p.UnmarshalBinary(buf[:n]); perr != nil {
		t.log.WithError(perr).WithField("length", n).Trace("packet")
		return n, nil
	}
	t.log.WithFields(logrus.Fields{
		"length": n,
		"fid":    p.FrameID(),
		"eof":    p.EndOfFrame(),
		"err":    p.Error(),
		"pts":    p.PTS,
		"data":   len(p.Data),
	}).Trace("packet")
	return n, nil
}
