package transfers

import (
	"context"
	"sync/atomic"
)

// Frame is a completed frame owned by a FrameQueue slot.
type Frame struct {
	// Seq numbers every frame offered to the queue, so gaps reveal drops.
	Seq  uint64
	Data []byte
}

type slot struct {
	seq  uint64
	buf  []byte
	size int
}

// FrameQueue hands completed frames from the packet path to a consumer
// goroutine. Every slot is allocated up front; Offer copies into a free slot
// or drops the frame when the consumer has fallen behind, and never blocks.
type FrameQueue struct {
	free  chan *slot
	ready chan *slot

	offered   atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	truncated atomic.Uint64
}

type FrameQueueStats struct {
	Offered, Delivered, Dropped, Truncated uint64
}

func NewFrameQueue(depth, slotSize int) *FrameQueue {
	depth = max(depth, 1)
	q := &FrameQueue{
		free:  make(chan *slot, depth),
		ready: make(chan *slot, depth),
	}
	for i := 0; i < depth; i++ {
		q.free <- &slot{buf: make([]byte, slotSize)}
	}
	return q
}

// Offer copies frame into a free slot and queues it. It reports false when
// every slot is in flight and the frame was dropped. Frames longer than the
// slot size are truncated.
func (q *FrameQueue) Offer(frame []byte) bool {
	seq := q.offered.Add(1) - 1
	select {
	case s := <-q.free:
		s.seq = seq
		s.size = copy(s.buf, frame)
		if s.size < len(frame) {
			q.truncated.Add(1)
		}
		q.ready <- s
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Run delivers queued frames to fn until ctx is done or fn returns an error.
// Frame.Data is only valid until fn returns.
func (q *FrameQueue) Run(ctx context.Context, fn func(Frame) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-q.ready:
			err := fn(Frame{Seq: s.seq, Data: s.buf[:s.size]})
			q.free <- s
			q.delivered.Add(1)
			if err != nil {
				return err
			}
		}
	}
}

func (q *FrameQueue) Stats() FrameQueueStats {
	return FrameQueueStats{
		Offered:   q.offered.Load(),
		Delivered: q.delivered.Load(),
		Dropped:   q.dropped.Load(),
		Truncated: q.truncated.Load(),
	}
}
