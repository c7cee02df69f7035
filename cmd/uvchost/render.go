package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

var (
	heading = color.New(color.Bold)
	faint   = color.New(color.Faint)
	warn    = color.New(color.FgYellow)
)

func formatTitle(fd descriptors.FormatDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return fmt.Sprintf("MJPEG (%d frames)", fd.NumFrameDescriptors)
	case *descriptors.UncompressedFormatDescriptor:
		return fmt.Sprintf("Uncompressed %s (%d frames)", fd.FourCC(), fd.NumFrameDescriptors)
	}
	return "Unknown"
}

func formatSubtitle(fd descriptors.FormatDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return fmt.Sprintf("Aspect Ratio: %d:%d, default frame %d", fd.AspectRatioX, fd.AspectRatioY, fd.DefaultFrameIndex)
	case *descriptors.UncompressedFormatDescriptor:
		return fmt.Sprintf("%s, bpp: %d, default frame %d", fd.Format(), fd.BitsPerPixel, fd.DefaultFrameIndex)
	}
	return ""
}

func frameTitle(fd descriptors.FrameDescriptor) string {
	vf := fd.Frame()
	return fmt.Sprintf("#%d %dx%d @ %.2f fps", vf.FrameIndex, vf.Width, vf.Height, vf.FrameRate())
}

func frameSubtitle(fd descriptors.FrameDescriptor) string {
	vf := fd.Frame()
	return fmt.Sprintf("Bitrate: %d-%d bps, buffer %d, intervals %s", vf.MinBitRate, vf.MaxBitRate, vf.MaxVideoFrameBufferSize, intervals(vf))
}

// intervals renders the advertised frame rates, as a min-max/step range for
// continuous frames.
func intervals(vf *descriptors.VideoFrame) string {
	fps := func(d time.Duration) string {
		if d <= 0 {
			return "?"
		}
		return fmt.Sprintf("%.4g", float64(time.Second)/float64(d))
	}
	if vf.Continuous() {
		if vf.IntervalCount() < 3 {
			return "continuous"
		}
		return fmt.Sprintf("%s-%s fps step %s", fps(vf.Interval(1)), fps(vf.Interval(0)), vf.Interval(2))
	}
	parts := make([]string, 0, vf.IntervalCount())
	for i := 0; i < vf.IntervalCount(); i++ {
		parts = append(parts, fps(vf.Interval(i)))
	}
	return "[" + strings.Join(parts, " ") + "] fps"
}

// catalogFormats pairs every stored format with the frames of its kind.
type catalogFormat struct {
	format descriptors.FormatDescriptor
	frames []descriptors.FrameDescriptor
}

func catalogFormats(cat *descriptors.Catalog) []catalogFormat {
	var out []catalogFormat
	if cat.MJPEGFormats.Len() > 0 {
		var frames []descriptors.FrameDescriptor
		for i := 0; i < cat.MJPEGFrames.Len(); i++ {
			frames = append(frames, cat.MJPEGFrames.At(i))
		}
		for i := 0; i < cat.MJPEGFormats.Len(); i++ {
			out = append(out, catalogFormat{cat.MJPEGFormats.At(i), frames})
		}
	}
	if cat.UncompressedFormats.Len() > 0 {
		var frames []descriptors.FrameDescriptor
		for i := 0; i < cat.UncompressedFrames.Len(); i++ {
			frames = append(frames, cat.UncompressedFrames.At(i))
		}
		for i := 0; i < cat.UncompressedFormats.Len(); i++ {
			out = append(out, catalogFormat{cat.UncompressedFormats.At(i), frames})
		}
	}
	return out
}

func printCatalog(w io.Writer, cat *descriptors.Catalog, interfaces []*transfers.StreamingInterface) {
	if cat.Header != nil {
		heading.Fprintf(w, "UVC %s", cat.Header.UVC)
		fmt.Fprintf(w, ", clock %d Hz, streaming interfaces %v\n", cat.Header.ClockFrequency, cat.Header.VideoStreamingInterfaceIndexes)
	}
	if cat.Association != nil {
		fmt.Fprintf(w, "Interface association: first %d, count %d\n", cat.Association.FirstInterface, cat.Association.InterfaceCount)
	}
	for _, it := range cat.InputTerminals.Items() {
		fmt.Fprintf(w, "Input terminal %d: %s\n", it.TerminalID, it.TerminalType)
	}
	for _, su := range cat.SelectorUnits.Items() {
		fmt.Fprintf(w, "Selector unit %d: sources %v\n", su.UnitID, su.SourceIDs)
	}
	for _, ot := range cat.OutputTerminals.Items() {
		fmt.Fprintf(w, "Output terminal %d: %s from %d\n", ot.TerminalID, ot.TerminalType, ot.SourceID)
	}
	for _, ih := range cat.InputHeaders.Items() {
		fmt.Fprintf(w, "Input header: endpoint %#02x, %d formats\n", ih.EndpointAddress, ih.NumFormats)
	}

	for _, cf := range catalogFormats(cat) {
		heading.Fprintf(w, "\nFormat %d: %s\n", cf.format.Index(), formatTitle(cf.format))
		faint.Fprintf(w, "  %s\n", formatSubtitle(cf.format))
		for _, fr := range cf.frames {
			fmt.Fprintf(w, "  %s\n", frameTitle(fr))
			faint.Fprintf(w, "    %s\n", frameSubtitle(fr))
		}
	}

	for _, si := range interfaces {
		heading.Fprintf(w, "\nStreaming interface %d\n", si.InterfaceNumber())
		for _, ep := range si.Endpoints() {
			fmt.Fprintf(w, "  alt %d: %s endpoint %#02x, %d bytes\n", ep.AlternateSetting, ep.Type, ep.Address, ep.PayloadSize)
		}
	}

	for _, ks := range cat.Stats() {
		if ks.Dropped > 0 {
			warn.Fprintf(w, "%d %s descriptors dropped over the limit\n", ks.Dropped, ks.Kind)
		}
	}
	if cat.Skipped > 0 {
		warn.Fprintf(w, "%d descriptors skipped\n", cat.Skipped)
	}
}
