package sink

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

// Each frame travels on its own unidirectional stream: an 8 byte big endian
// sequence number, a 4 byte big endian length, then the frame data.
const frameHeaderSize = 12

// DefaultMaxFrameSize bounds frames accepted by a receiver.
const DefaultMaxFrameSize = 16 << 20

var ErrFrameTooLarge = errors.New("frame exceeds receiver limit")

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	}
}

// EncodeFrame writes f in the stream format to w.
func EncodeFrame(w io.Writer, f transfers.Frame) error {
	var hdr [frameHeaderSize]byte
	binary.BigEndian.PutUint64(hdr[0:8], f.Seq)
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(f.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(f.Data)
	return err
}

// DecodeFrame reads one frame from r, rejecting frames longer than
// maxSize.
func DecodeFrame(r io.Reader, maxSize int) (transfers.Frame, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return transfers.Frame{}, err
	}
	n := binary.BigEndian.Uint32(hdr[8:12])
	if int64(n) > int64(maxSize) {
		return transfers.Frame{}, errors.Wrapf(ErrFrameTooLarge, "%d > %d bytes", n, maxSize)
	}
	f := transfers.Frame{Seq: binary.BigEndian.Uint64(hdr[0:8]), Data: make([]byte, n)}
	if _, err := io.ReadFull(r, f.Data); err != nil {
		return transfers.Frame{}, errors.Wrap(err, "read frame data")
	}
	return f, nil
}

// QUICSender forwards frames to a QUICReceiver.
type QUICSender struct {
	conn quic.Connection
	log  *logrus.Entry
}

func DialQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (*QUICSender, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &QUICSender{
		conn: conn,
		log:  logrus.WithFields(logrus.Fields{"component": "sink", "remote": addr}),
	}, nil
}

func (s *QUICSender) WriteFrame(f transfers.Frame) error {
	str, err := s.conn.OpenUniStreamSync(s.conn.Context())
	if err != nil {
		return errors.Wrap(err, "open stream")
	}
	if err := EncodeFrame(str, f); err != nil {
		str.CancelWrite(0)
		return errors.Wrapf(err, "send frame %d", f.Seq)
	}
	return str.Close()
}

func (s *QUICSender) Close() error {
	return s.conn.CloseWithError(0, "")
}

// QUICReceiver accepts senders and decodes their frames.
type QUICReceiver struct {
	ln           *quic.Listener
	maxFrameSize int
	log          *logrus.Entry
}

func ListenQUIC(addr string, tlsConf *tls.Config, maxFrameSize int) (*QUICReceiver, error) {
	ln, err := quic.ListenAddr(addr, tlsConf, quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &QUICReceiver{
		ln:           ln,
		maxFrameSize: maxFrameSize,
		log:          logrus.WithFields(logrus.Fields{"component": "receiver", "addr": ln.Addr()}),
	}, nil
}

func (r *QUICReceiver) Addr() net.Addr { return r.ln.Addr() }

// Serve accepts connections until ctx is done and passes every received
// frame to fn. Calls to fn are serialized across connections. A frame
// error ends only the connection it arrived on; an error from fn ends
// Serve.
func (r *QUICReceiver) Serve(ctx context.Context, fn func(transfers.Frame) error) error {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	deliver := func(f transfers.Frame) error {
		mu.Lock()
		defer mu.Unlock()
		return fn(f)
	}
	g.Go(func() error {
		for {
			conn, err := r.ln.Accept(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "accept")
			}
			g.Go(func() error { return r.serveConn(ctx, conn, deliver) })
		}
	})
	return g.Wait()
}

func (r *QUICReceiver) serveConn(ctx context.Context, conn quic.Connection, deliver func(transfers.Frame) error) error {
	log := r.log.WithField("remote", conn.RemoteAddr())
	log.Info("sender connected")
	for {
		str, err := conn.AcceptUniStream(ctx)
		if err != nil {
			log.WithError(err).Info("sender disconnected")
			return nil
		}
		f, err := DecodeFrame(str, r.maxFrameSize)
		if err != nil {
			log.WithError(err).Warn("bad frame")
			str.CancelRead(0)
			conn.CloseWithError(1, "bad frame")
			return nil
		}
		if err := deliver(f); err != nil {
			conn.CloseWithError(0, "")
			return err
		}
	}
}

func (r *QUICReceiver) Close() error {
	return r.ln.Close()
}
