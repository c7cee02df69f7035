package transfers

import (
	"sync"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
)

const (
	// DefaultNumTransfers is the number of queued transfers for async bulk reads.
	// With 16KB URB buffers, 64 URBs = 1MB total, well under kernel limits.
	DefaultNumTransfers = 64

	// MaxURBBufferSize matches the kernel's MAX_USBFS_BUFFER_SIZE.
	MaxURBBufferSize = 16384
)

var ErrReaderClosed = errors.New("reader closed")

// bulkURB is one queued bulk transfer.
type bulkURB interface {
	Submit() error
	Wait() ([]byte, error)
	Cancel()
}

type usbBulkURB struct {
	*usb.AsyncBulkTransfer
}

func (u usbBulkURB) Cancel() { u.AsyncBulkTransfer.Cancel() }

// AsyncBulkReader keeps multiple bulk URBs in flight and reassembles UVC
// payloads from them. A payload ends with a short transfer.
type AsyncBulkReader struct {
	urbSize   int
	transfers []bulkURB
	closed    atomic.Bool

	// mu is held by ReadPacket for its whole duration, including while it
	// waits on a transfer. Close cancels the transfers before taking it.
	mu       sync.Mutex
	nextRead int
	// inflight marks transfers submitted and not yet reaped by Wait.
	inflight []bool
}

func NewAsyncBulkReader(handle *usb.DeviceHandle, endpointAddress uint8, mtu uint32, numTransfers int) (*AsyncBulkReader, error) {
	numTransfers = max(numTransfers, 1)
	urbSize := min(MaxURBBufferSize, int(mtu))
	urbs := make([]bulkURB, 0, numTransfers)
	for i := 0; i < numTransfers; i++ {
		t, err := handle.NewAsyncBulkTransfer(endpointAddress, urbSize)
		if err != nil {
			for _, u := range urbs {
				u.Cancel()
			}
			return nil, errors.Wrapf(err, "create async transfer %d", i)
		}
		urbs = append(urbs, usbBulkURB{t})
	}
	return newAsyncBulkReader(urbs, urbSize)
}

func newAsyncBulkReader(urbs []bulkURB, urbSize int) (*AsyncBulkReader, error) {
	r := &AsyncBulkReader{
		urbSize:   urbSize,
		transfers: urbs,
		inflight:  make([]bool, len(urbs)),
	}
	for i, t := range r.transfers {
		if err := t.Submit(); err != nil {
			r.cancel()
			return nil, errors.Wrapf(err, "submit initial transfer %d", i)
		}
		r.inflight[i] = true
	}
	return r, nil
}

// ReadPacket accumulates URB data into buf until a short transfer.
func (r *AsyncBulkReader) ReadPacket(buf []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	written := 0
	for {
		if r.closed.Load() {
			return 0, ErrReaderClosed
		}
		i := r.nextRead
		t := r.transfers[i]
		data, err := t.Wait()
		r.inflight[i] = false
		if err != nil {
			if r.closed.Load() {
				return 0, ErrReaderClosed
			}
			return 0, errors.Wrap(err, "async bulk read")
		}
		if len(buf)-written < len(data) {
			if err := r.resubmit(i); err != nil {
				return 0, err
			}
			return 0, errors.Errorf("buffer too small: need %d bytes, have %d", len(data), len(buf)-written)
		}

		// copy before resubmitting, the kernel owns the URB buffer again afterwards
		copy(buf[written:], data)
		written += len(data)

		if err := r.resubmit(i); err != nil {
			return 0, err
		}
		if len(data) < r.urbSize {
			return written, nil
		}
	}
}

func (r *AsyncBulkReader) resubmit(i int) error {
	if err := r.transfers[i].Submit(); err != nil {
		return errors.Wrap(err, "resubmit bulk transfer")
	}
	r.inflight[i] = true
	r.nextRead = (i + 1) % len(r.transfers)
	return nil
}

func (r *AsyncBulkReader) cancel() {
	for _, t := range r.transfers {
		t.Cancel()
	}
}

// Close cancels every transfer, which also wakes a ReadPacket blocked in
// Wait, and then reaps the ones still in flight.
func (r *AsyncBulkReader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.transfers {
		if r.inflight[i] {
			t.Wait() // cancelled transfers complete with an error
			r.inflight[i] = false
		}
	}
	return nil
}
