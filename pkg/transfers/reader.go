package transfers

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// PacketReader yields one UVC payload packet per call. Close may be called
// while ReadPacket is blocked and must make it return; later calls to Close
// are no-ops.
type PacketReader interface {
	io.Closer
	ReadPacket(buf []byte) (int, error)
}

// Pump reads packets from pr into buf and feeds them to r until ctx is done
// or the reader fails. A reader returning io.EOF ends the pump cleanly.
// Packets are delivered one at a time, so the reassembler callback always
// finishes before the next read. Cancelling ctx closes pr so that a read
// stalled on an idle device returns.
func Pump(ctx context.Context, pr PacketReader, r *Reassembler, buf []byte) error {
	stop := context.AfterFunc(ctx, func() { pr.Close() })
	defer stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := pr.ReadPacket(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read packet")
		}
		r.ProcessPacket(buf[:n])
	}
}
