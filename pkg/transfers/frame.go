package transfers

import (
	"github.com/sirupsen/logrus"
)

// Status is the outcome of feeding one packet to a Reassembler.
type Status int

const (
	// StatusContinuing means the packet was appended to a frame in progress.
	StatusContinuing Status = iota
	// StatusFrameReady means the packet completed a frame and the frame
	// callback has run.
	StatusFrameReady
	// StatusBadFrame means the packet ended a frame whose start was never
	// observed. The frame was discarded without invoking the callback.
	StatusBadFrame
	// StatusInvalidPacket means the packet length or header length was
	// outside the valid envelope. Stream state is unchanged.
	StatusInvalidPacket
	// StatusIgnored means the packet carried a header and no payload.
	StatusIgnored
	// StatusUninitialized means no buffers have been registered.
	StatusUninitialized
)

var statusNames = [...]string{
	StatusContinuing:    "continuing",
	StatusFrameReady:    "frame-ready",
	StatusBadFrame:      "bad-frame",
	StatusInvalidPacket: "invalid-packet",
	StatusIgnored:       "ignored",
	StatusUninitialized: "uninitialized",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

const (
	headerBitFrameID    = 0b00000001
	headerBitEndOfFrame = 0b00000010
	headerBitError      = 0b01000000

	minHeaderLength = 2
)

// ReassemblerStats counts packet and frame outcomes since construction.
type ReassemblerStats struct {
	Packets         uint64
	Frames          uint64
	BadFrames       uint64
	InvalidPackets  uint64
	IgnoredPackets  uint64
	ErrorPackets    uint64
	TruncatedFrames uint64
}

// Reassembler rebuilds video frames from UVC payload packets into a pair of
// caller-owned buffers. It is not safe for concurrent use; one goroutine
// must deliver packets in order.
type Reassembler struct {
	buffers [2][]byte
	active  int
	length  int

	prevFID   byte
	prevEOF   bool
	started   bool
	truncated bool

	maxPacketSize int
	onFrame       func(frame []byte)

	stats ReassemblerStats
	log   *logrus.Entry
}

type Option func(*Reassembler)

// WithMaxPacketSize rejects packets longer than n bytes, normally the
// negotiated dwMaxPayloadTransferSize. Zero disables the upper bound.
func WithMaxPacketSize(n int) Option {
	return func(r *Reassembler) { r.maxPacketSize = n }
}

func WithLogger(log *logrus.Entry) Option {
	return func(r *Reassembler) { r.log = log }
}

func NewReassembler(opts ...Option) *Reassembler {
	r := &Reassembler{
		prevEOF: true,
		log:     logrus.NewEntry(logrus.StandardLogger()).WithField("component", "reassembler"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InitBuffers registers the two frame buffers. Their lengths are the frame
// capacity. If either is empty the call does nothing. Registering new
// buffers restarts synchronization.
func (r *Reassembler) InitBuffers(b0, b1 []byte) {
	if len(b0) == 0 || len(b1) == 0 {
		return
	}
	r.buffers = [2][]byte{b0, b1}
	r.Reset()
}

// OnFrame sets the callback invoked with each completed frame. The slice
// aliases one of the registered buffers and is only valid until the
// callback returns. A later call replaces the previous callback.
func (r *Reassembler) OnFrame(fn func(frame []byte)) {
	r.onFrame = fn
}

// ProcessPacket consumes one payload packet.
func (r *Reassembler) ProcessPacket(pkt []byte) Status {
	if r.buffers[0] == nil {
		return StatusUninitialized
	}
	r.stats.Packets++

	n := len(pkt)
	if n < minHeaderLength || (r.maxPacketSize > 0 && n > r.maxPacketSize) {
		r.stats.InvalidPackets++
		return StatusInvalidPacket
	}
	hl := int(pkt[0])
	if hl < minHeaderLength || hl > n {
		r.stats.InvalidPackets++
		return StatusInvalidPacket
	}
	// A header-only packet is dropped before its bits are read, including
	// its EOF bit. Cameras that close a frame with an empty EOF packet
	// therefore see each such frame merged into the next one.
	if n == hl {
		r.stats.IgnoredPackets++
		return StatusIgnored
	}

	info := pkt[1]
	if info&headerBitError != 0 {
		r.stats.ErrorPackets++
		r.log.WithField("info", info).Debug("payload error bit set")
	}

	fid := info & headerBitFrameID
	if fid != r.prevFID && r.prevEOF {
		r.length = 0
		r.started = true
		r.truncated = false
	}
	r.prevFID = fid

	buf := r.buffers[r.active]
	payload := pkt[hl:]
	m := copy(buf[r.length:], payload)
	r.length += m
	if m < len(payload) && !r.truncated {
		r.truncated = true
		r.stats.TruncatedFrames++
		r.log.WithField("capacity", len(buf)).Warn("frame exceeds buffer capacity, truncating")
	}

	if info&headerBitEndOfFrame == 0 {
		r.prevEOF = false
		return StatusContinuing
	}

	r.prevEOF = true
	if !r.started {
		r.length = 0
		r.truncated = false
		r.stats.BadFrames++
		r.log.Debug("end of frame without a frame start, discarding")
		return StatusBadFrame
	}

	if r.onFrame != nil {
		r.onFrame(buf[:r.length:r.length])
	}
	r.active ^= 1
	r.length = 0
	r.started = false
	r.truncated = false
	r.stats.Frames++
	return StatusFrameReady
}

// Len is the number of bytes accumulated for the frame in progress.
func (r *Reassembler) Len() int { return r.length }

// ActiveBuffer is the index of the buffer receiving the frame in progress.
func (r *Reassembler) ActiveBuffer() int { return r.active }

func (r *Reassembler) Stats() ReassemblerStats { return r.stats }

// Reset drops the frame in progress and waits for the next frame start.
// Registered buffers, the callback and the counters are kept.
func (r *Reassembler) Reset() {
	r.active = 0
	r.length = 0
	r.prevFID = 0
	r.prevEOF = true
	r.started = false
	r.truncated = false
}
