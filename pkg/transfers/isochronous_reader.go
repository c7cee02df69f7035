package transfers

import (
	"io"
	"sync"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
)

// DefaultIsochronousTransfers is the number of isochronous transfers kept
// in flight.
const DefaultIsochronousTransfers = 8

// IsochronousReader yields one UVC payload per isochronous packet.
type IsochronousReader struct {
	transfers []*usb.IsochronousTransfer
	closed    atomic.Bool

	mu        sync.Mutex
	currentTx int
	packetIdx int
	inflight  []bool

	// Errored counts packets the host controller completed with an error.
	Errored uint64
}

func NewIsochronousReader(handle *usb.DeviceHandle, endpointAddress uint8, packets, packetSize int) (*IsochronousReader, error) {
	r := &IsochronousReader{
		transfers: make([]*usb.IsochronousTransfer, 0, DefaultIsochronousTransfers),
	}
	for i := 0; i < DefaultIsochronousTransfers; i++ {
		tx, err := handle.NewIsochronousTransfer(endpointAddress, packets, packetSize)
		if err != nil {
			r.cancel()
			return nil, errors.Wrap(err, "create isochronous transfer")
		}
		if err := tx.Submit(); err != nil {
			r.cancel()
			return nil, errors.Wrap(err, "submit isochronous transfer")
		}
		r.transfers = append(r.transfers, tx)
		r.inflight = append(r.inflight, true)
	}
	return r, nil
}

// ReadPacket copies the next non-empty packet into buf. Transfers are
// resubmitted as soon as all of their packets have been consumed.
func (r *IsochronousReader) ReadPacket(buf []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if r.closed.Load() {
			return 0, ErrReaderClosed
		}
		tx := r.transfers[r.currentTx]
		if r.packetIdx == 0 && r.inflight[r.currentTx] {
			err := tx.Wait()
			r.inflight[r.currentTx] = false
			if err != nil {
				if r.closed.Load() {
					return 0, ErrReaderClosed
				}
				return 0, errors.Wrap(err, "isochronous transfer")
			}
		}

		packets := tx.Packets()
		if r.packetIdx >= len(packets) {
			if err := tx.Submit(); err != nil {
				return 0, errors.Wrap(err, "resubmit isochronous transfer")
			}
			r.inflight[r.currentTx] = true
			r.packetIdx = 0
			r.currentTx = (r.currentTx + 1) % len(r.transfers)
			continue
		}

		i := r.packetIdx
		r.packetIdx++
		pkt := packets[i]
		if pkt.Status != 0 {
			r.Errored++
			continue
		}
		if pkt.ActualLength == 0 {
			continue
		}
		if len(buf) < int(pkt.ActualLength) {
			return 0, io.ErrShortBuffer
		}
		data, err := tx.IsoPacketBuffer(i)
		if err != nil {
			continue
		}
		return copy(buf, data), nil
	}
}

func (r *IsochronousReader) cancel() {
	for _, tx := range r.transfers {
		tx.Cancel()
	}
}

// Close cancels every transfer, waking a blocked ReadPacket, and reaps the
// ones still in flight. Calling it again does nothing.
func (r *IsochronousReader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tx := range r.transfers {
		if r.inflight[i] {
			tx.Wait() // cancelled transfers complete with an error
			r.inflight[i] = false
		}
	}
	return nil
}
