package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/formats"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

func newInspectCommand(s *settings) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse the descriptor catalog interactively",
		Example: `  uvchost inspect -d /dev/bus/usb/001/004
  uvchost inspect --file descriptors.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, ifaces, closeFn, err := loadCatalog(s, file)
			if err != nil {
				return err
			}
			defer closeFn()
			return runInspect(cat, ifaces)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read descriptors from a raw dump")
	return cmd
}

// formatEncoding maps a format record to the encoding SelectFormat accepts
// for it.
func formatEncoding(fd descriptors.FormatDescriptor) (transfers.Encoding, bool) {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return transfers.EncodingMJPEG, true
	case *descriptors.UncompressedFormatDescriptor:
		return transfers.EncodingYUY2, fd.FourCC() == formats.FourCCYUY2
	}
	return 0, false
}

// selectionDetails describes what capture would negotiate for fr.
func selectionDetails(cat *descriptors.Catalog, ifaces []*transfers.StreamingInterface, fd descriptors.FormatDescriptor, fr descriptors.FrameDescriptor) string {
	var b strings.Builder
	vf := fr.Frame()
	fmt.Fprintf(&b, "%s\n%s\n\n", frameTitle(fr), frameSubtitle(fr))
	enc, ok := formatEncoding(fd)
	if !ok {
		b.WriteString("This format cannot be captured.")
		return b.String()
	}
	sel, err := transfers.SelectFormat(cat, transfers.Target{Encoding: enc, Width: vf.Width, Height: vf.Height})
	if err != nil {
		fmt.Fprintf(&b, "capture -e %s --width %d --height %d would fail: %v", enc, vf.Width, vf.Height, err)
		return b.String()
	}
	fmt.Fprintf(&b, "capture -e %s --width %d --height %d\n", enc, vf.Width, vf.Height)
	var payload uint32
	for _, si := range ifaces {
		if ep, err := si.SelectEndpoint(0); err == nil {
			payload = ep.PayloadSize
			fmt.Fprintf(&b, "endpoint %#02x alt %d (%s, %d bytes)\n", ep.Address, ep.AlternateSetting, ep.Type, ep.PayloadSize)
			break
		}
	}
	probe := sel.ProbeControl(payload)
	fmt.Fprintf(&b, "probe: bmHint %#04x format %d frame %d interval %v max frame %d max payload %d",
		probe.HintBitmask, probe.FormatIndex, probe.FrameIndex, probe.FrameInterval, probe.MaxVideoFrameSize, probe.MaxPayloadTransferSize)
	return b.String()
}

func runInspect(cat *descriptors.Catalog, ifaces []*transfers.StreamingInterface) error {
	app := tview.NewApplication()

	streamingIfaces := tview.NewList()
	streamingIfaces.SetBorder(true).SetTitle("Streaming Interfaces")

	units := tview.NewList().ShowSecondaryText(false)
	units.SetBorder(true).SetTitle("Terminals and Units")

	formatList := tview.NewList()
	formatList.SetBorder(true).SetTitle("Formats")

	frames := tview.NewList()
	frames.SetBorder(true).SetTitle("Frames")

	details := tview.NewTextView().SetWrap(true)
	details.SetBorder(true).SetTitle("Details")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")
	logrus.SetOutput(logText)

	for _, si := range ifaces {
		eps := si.Endpoints()
		streamingIfaces.AddItem(fmt.Sprintf("Interface %d", si.InterfaceNumber()), fmt.Sprintf("v%s, %d endpoints", si.UVCVersion(), len(eps)), 0, func() {
			var b strings.Builder
			for _, ep := range eps {
				fmt.Fprintf(&b, "alt %d: %s endpoint %#02x, %d bytes\n", ep.AlternateSetting, ep.Type, ep.Address, ep.PayloadSize)
			}
			details.SetText(b.String())
			app.SetFocus(formatList)
		})
	}
	if cat.Header != nil {
		units.AddItem(fmt.Sprintf("Header UVC %s", cat.Header.UVC), "", 0, nil)
	}
	for _, it := range cat.InputTerminals.Items() {
		units.AddItem(fmt.Sprintf("Input Terminal %d (%s)", it.TerminalID, it.TerminalType), "", 0, nil)
	}
	for _, su := range cat.SelectorUnits.Items() {
		units.AddItem(fmt.Sprintf("Selector Unit %d %v", su.UnitID, su.SourceIDs), "", 0, nil)
	}
	for _, ot := range cat.OutputTerminals.Items() {
		units.AddItem(fmt.Sprintf("Output Terminal %d (%s)", ot.TerminalID, ot.TerminalType), "", 0, nil)
	}

	for _, cf := range catalogFormats(cat) {
		formatList.AddItem(formatTitle(cf.format), formatSubtitle(cf.format), 0, func() {
			frames.Clear()
			for _, fr := range cf.frames {
				frames.AddItem(frameTitle(fr), frameSubtitle(fr), 0, func() {
					details.SetText(selectionDetails(cat, ifaces, cf.format, fr))
				})
			}
			app.SetFocus(frames)
		})
	}
	for _, ks := range cat.Stats() {
		if ks.Dropped > 0 {
			logrus.WithFields(logrus.Fields{"kind": ks.Kind, "dropped": ks.Dropped}).Warn("descriptor limit reached")
		}
	}

	focus := []tview.Primitive{streamingIfaces, units, formatList, frames}
	current := 0
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			current = (current + 1) % len(focus)
			app.SetFocus(focus[current])
			return nil
		case tcell.KeyEscape:
			app.Stop()
			return nil
		}
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(streamingIfaces, 0, 1, true).
		AddItem(units, 0, 1, false)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(frames, 0, 2, false).
		AddItem(details, 0, 1, false)
	flex := tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(formatList, 0, 1, false).
		AddItem(right, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(flex, 0, 1, true).
		AddItem(logText, 10, 0, false)
	return app.SetRoot(root, true).Run()
}
