// Package descriptors decodes the class-specific descriptors a UVC camera
// advertises and collects them into a bounded Catalog.
//
// Records never own memory: every decoded descriptor keeps a view into the
// caller's descriptor buffer, which must outlive the Catalog.
package descriptors

// Kind identifies the record sequences held by a Catalog.
type Kind int

const (
	KindHeader Kind = iota
	KindInputTerminal
	KindOutputTerminal
	KindSelectorUnit
	KindInputHeader
	KindMJPEGFormat
	KindMJPEGFrame
	KindUncompressedFormat
	KindUncompressedFrame
)

var kindNames = [...]string{
	KindHeader:             "header",
	KindInputTerminal:      "input terminal",
	KindOutputTerminal:     "output terminal",
	KindSelectorUnit:       "selector unit",
	KindInputHeader:        "input header",
	KindMJPEGFormat:        "mjpeg format",
	KindMJPEGFrame:         "mjpeg frame",
	KindUncompressedFormat: "uncompressed format",
	KindUncompressedFrame:  "uncompressed frame",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}
