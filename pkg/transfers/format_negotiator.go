package transfers

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/formats"
)

var (
	ErrNoMatchingFormat = errors.New("no matching format")
	ErrAmbiguousFormat  = errors.New("ambiguous format")
	ErrNoMatchingFrame  = errors.New("no matching frame")
)

type Encoding int

const (
	EncodingMJPEG Encoding = iota
	EncodingYUY2
)

func (e Encoding) String() string {
	switch e {
	case EncodingMJPEG:
		return "mjpeg"
	case EncodingYUY2:
		return "yuy2"
	}
	return "unknown"
}

// ParseEncoding accepts the names printed by Encoding.String.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "mjpeg", "mjpg":
		return EncodingMJPEG, nil
	case "yuy2", "yuyv":
		return EncodingYUY2, nil
	}
	return 0, errors.Errorf("unknown encoding %q", s)
}

// Target is the stream a caller asks for.
type Target struct {
	Encoding      Encoding
	Width, Height uint16
}

// Selection is the format and frame chosen for a Target.
type Selection struct {
	FormatIndex             uint8
	FrameIndex              uint8
	DefaultFrameInterval    time.Duration
	MaxVideoFrameBufferSize uint32
}

// SelectFormat picks the single format of the target encoding and the
// first frame of that format matching the target size exactly. Formats are
// counted including those the catalog dropped for capacity, so a device
// advertising more formats than the catalog keeps is still ambiguous.
func SelectFormat(cat *descriptors.Catalog, target Target) (Selection, error) {
	switch target.Encoding {
	case EncodingMJPEG:
		if err := exactlyOne(cat.MJPEGFormats.Len(), cat.MJPEGFormats.Seen(), target.Encoding); err != nil {
			return Selection{}, err
		}
		return matchFrame(cat.MJPEGFormats.At(0).FormatIndex, &cat.MJPEGFrames, target)
	case EncodingYUY2:
		if err := exactlyOne(cat.UncompressedFormats.Len(), cat.UncompressedFormats.Seen(), target.Encoding); err != nil {
			return Selection{}, err
		}
		f := cat.UncompressedFormats.At(0)
		if f.FourCC() != formats.FourCCYUY2 {
			return Selection{}, errors.Wrapf(ErrNoMatchingFormat, "uncompressed format is %s", f.FourCC())
		}
		return matchFrame(f.FormatIndex, &cat.UncompressedFrames, target)
	}
	return Selection{}, errors.Wrapf(ErrNoMatchingFormat, "encoding %d", target.Encoding)
}

func exactlyOne(stored, seen int, enc Encoding) error {
	switch {
	case seen == 0 || stored == 0:
		return errors.Wrapf(ErrNoMatchingFormat, "no %s format", enc)
	case seen > 1:
		return errors.Wrapf(ErrAmbiguousFormat, "%d %s formats", seen, enc)
	}
	return nil
}

func matchFrame[T any, P interface {
	*T
	descriptors.FrameDescriptor
}](formatIndex uint8, frames *descriptors.Bounded[T], target Target) (Selection, error) {
	for i := 0; i < frames.Len(); i++ {
		f := P(frames.At(i)).Frame()
		if f.Width == target.Width && f.Height == target.Height {
			return Selection{
				FormatIndex:             formatIndex,
				FrameIndex:              f.FrameIndex,
				DefaultFrameInterval:    f.DefaultFrameInterval,
				MaxVideoFrameBufferSize: f.MaxVideoFrameBufferSize,
			}, nil
		}
	}
	return Selection{}, errors.Wrapf(ErrNoMatchingFrame, "%s %dx%d", target.Encoding, target.Width, target.Height)
}

// ProbeControl is the probe request for the selection, carrying the chosen
// endpoint payload size.
func (s Selection) ProbeControl(maxPayload uint32) *descriptors.VideoProbeCommitControl {
	return &descriptors.VideoProbeCommitControl{
		HintBitmask:            descriptors.HintFrameInterval,
		FormatIndex:            s.FormatIndex,
		FrameIndex:             s.FrameIndex,
		FrameInterval:          s.DefaultFrameInterval,
		MaxVideoFrameSize:      s.MaxVideoFrameBufferSize,
		MaxPayloadTransferSize: maxPayload,
	}
}
