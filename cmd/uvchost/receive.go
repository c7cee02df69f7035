package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcstream/pkg/sink"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

type receiveOptions struct {
	listen       string
	ext          string
	maxFrameSize int
	hosts        []string
}

func newReceiveCommand(s *settings) *cobra.Command {
	opts := &receiveOptions{}
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Accept frames forwarded by capture --quic",
		Long: `Listen for QUIC connections from uvchost capture and write the received frames
to the output directory. A self-signed certificate is generated on start;
pass its fingerprint to the sender with --fingerprint.`,
		Example: `  uvchost receive --listen :4242 --output-dir frames`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(cmd, s, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.listen, "listen", "l", ":4242", "UDP address to listen on")
	flags.String("output-dir", "", "write each frame to this directory")
	flags.StringVar(&opts.ext, "ext", "jpg", "file extension for written frames")
	flags.IntVar(&opts.maxFrameSize, "max-frame-size", sink.DefaultMaxFrameSize, "largest frame accepted")
	flags.StringSliceVar(&opts.hosts, "host", nil, "extra host names or addresses for the certificate")
	return cmd
}

func runReceive(cmd *cobra.Command, s *settings, opts *receiveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out sink.Sink
	if s.cfg.Output.Dir != "" {
		d, err := sink.NewDirectory(s.cfg.Output.Dir, opts.ext)
		if err != nil {
			return err
		}
		out = d
	}

	cert, err := sink.SelfSigned(7*24*time.Hour, opts.hosts...)
	if err != nil {
		return err
	}
	r, err := sink.ListenQUIC(opts.listen, sink.ServerTLS(cert), opts.maxFrameSize)
	if err != nil {
		return err
	}
	defer r.Close()

	w := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(w, "listening on %s\n", r.Addr())
	fmt.Fprintf(w, "fingerprint: %s\n", color.CyanString(cert.FingerprintHex()))

	return r.Serve(ctx, func(f transfers.Frame) error {
		logrus.WithFields(logrus.Fields{"seq": f.Seq, "size": len(f.Data)}).Debug("frame received")
		if out == nil {
			return nil
		}
		return out.WriteFrame(f)
	})
}
