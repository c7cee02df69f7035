package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kevmo314/go-uvcstream"
	"github.com/kevmo314/go-uvcstream/pkg/sink"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

var errFrameLimit = errors.New("frame limit reached")

type captureOptions struct {
	frames      uint64
	fingerprint string
	statsEvery  time.Duration
}

func newCaptureCommand(s *settings) *cobra.Command {
	opts := &captureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Negotiate a stream and write or forward its frames",
		Example: `  uvchost capture -d /dev/bus/usb/001/004 -e mjpeg --width 1280 --height 720 --output-dir frames
  uvchost capture -d /dev/bus/usb/001/004 --quic 10.0.0.2:4242 --fingerprint 3f1a...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), s, opts)
		},
	}
	flags := cmd.Flags()
	addStreamFlags(flags)
	flags.String("output-dir", "", "write each frame to this directory")
	flags.String("quic", "", "forward frames to a receiver at host:port")
	flags.StringVar(&opts.fingerprint, "fingerprint", "", "SHA-256 fingerprint of the receiver certificate")
	flags.Uint64VarP(&opts.frames, "frames", "n", 0, "stop after this many frames, 0 for no limit")
	flags.DurationVar(&opts.statsEvery, "stats", 5*time.Second, "log stream statistics at this interval, 0 to disable")
	return cmd
}

func openSinks(ctx context.Context, s *settings, enc transfers.Encoding, fingerprint string) (sink.Tee, error) {
	var sinks sink.Tee
	if dir := s.cfg.Output.Dir; dir != "" {
		d, err := sink.NewDirectory(dir, sink.Extension(enc))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, d)
	}
	if addr := s.cfg.Output.QUIC; addr != "" {
		tlsConf, err := sink.ClientTLS(fingerprint)
		if err != nil {
			return nil, err
		}
		q, err := sink.DialQUIC(ctx, addr, tlsConf)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, q)
	}
	if len(sinks) == 0 {
		return nil, errors.New("no output, use --output-dir or --quic")
	}
	return sinks, nil
}

func runCapture(ctx context.Context, s *settings, opts *captureOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := s.cfg.Target()
	if err != nil {
		return err
	}
	sinks, err := openSinks(ctx, s, target.Encoding, opts.fingerprint)
	if err != nil {
		return err
	}
	defer sinks.Close()

	dev, info, err := openDevice(s)
	if err != nil {
		return err
	}
	defer dev.Close()

	stream, err := info.OpenStream(ctx, uvc.StreamOptions{
		Target:          target,
		RxFIFOLimit:     s.cfg.RxFIFOLimit,
		FrameBufferSize: s.cfg.FrameBufferSize,
		QueueDepth:      s.cfg.QueueDepth,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		written := uint64(0)
		err := stream.Run(gctx, func(f transfers.Frame) error {
			if err := sinks.WriteFrame(f); err != nil {
				return err
			}
			written++
			if opts.frames > 0 && written >= opts.frames {
				return errFrameLimit
			}
			return nil
		})
		if errors.Is(err, errFrameLimit) {
			return nil
		}
		return err
	})
	if opts.statsEvery > 0 {
		g.Go(func() error {
			logStats(gctx, stream, opts.statsEvery)
			return nil
		})
	}
	err = g.Wait()

	rs, qs := stream.Stats()
	color.New(color.FgGreen).Printf("%d frames delivered", qs.Delivered)
	faint.Printf(" (%d dropped by writer lag, %d bad, %d truncated, %d invalid packets)\n",
		qs.Dropped, rs.BadFrames, rs.TruncatedFrames, rs.InvalidPackets)
	return err
}

func logStats(ctx context.Context, stream *uvc.Stream, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rs, qs := stream.Stats()
			logrus.WithFields(logrus.Fields{
				"packets":   rs.Packets,
				"frames":    rs.Frames,
				"bad":       rs.BadFrames,
				"invalid":   rs.InvalidPackets,
				"err_bit":   rs.ErrorPackets,
				"truncated": rs.TruncatedFrames,
				"delivered": qs.Delivered,
				"dropped":   qs.Dropped,
			}).Info("stream stats")
		}
	}
}
