package uvc

const (
	// DefaultRxFIFOLimit caps the endpoint payload size SelectEndpoint may
	// pick: one high-bandwidth high-speed isochronous microframe.
	DefaultRxFIFOLimit = 3 * 1024

	// DefaultFrameBufferSize holds one 640x480 YUY2 frame.
	DefaultFrameBufferSize = 640 * 480 * 2

	// DefaultQueueDepth is the number of frames that may wait for a slow
	// consumer before new frames are dropped.
	DefaultQueueDepth = 4
)
