package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kevmo314/go-uvcstream/pkg/config"
)

// settings is shared by every subcommand once the root pre-run has loaded
// the configuration.
type settings struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"device":            "device",
	"encoding":          "encoding",
	"width":             "width",
	"height":            "height",
	"rx-fifo-limit":     "rx_fifo_limit",
	"frame-buffer-size": "frame_buffer_size",
	"queue-depth":       "queue_depth",
	"output-dir":        "output.dir",
	"quic":              "output.quic",
	"log-level":         "log.level",
	"log-format":        "log.format",
}

func newRootCommand() *cobra.Command {
	s := &settings{}
	cmd := &cobra.Command{
		Use:   "uvchost",
		Short: "Inspect and capture USB Video Class cameras",
		Long: `uvchost parses the descriptors of a USB Video Class camera, negotiates an
MJPEG or YUY2 stream and reassembles the payload packets into frames that are
written to disk or forwarded over QUIC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.configFile, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringP("device", "d", "", "usbfs device path, e.g. /dev/bus/usb/001/004")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format (text or json)")

	cmd.AddCommand(newDevicesCommand())
	cmd.AddCommand(newFormatsCommand(s))
	cmd.AddCommand(newCaptureCommand(s))
	cmd.AddCommand(newReceiveCommand(s))
	cmd.AddCommand(newInspectCommand(s))
	cmd.AddCommand(newConfigCommand(s))
	return cmd
}

func (s *settings) load(flags *pflag.FlagSet) error {
	s.v = config.New(s.configFile)
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := s.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(s.v)
	if err != nil {
		return err
	}
	s.cfg = cfg
	return cfg.ConfigureLogger(logrus.StandardLogger(), os.Stderr)
}

// addStreamFlags registers the flags that select and size a stream.
func addStreamFlags(flags *pflag.FlagSet) {
	flags.StringP("encoding", "e", "", "payload encoding (mjpeg or yuy2)")
	flags.Int("width", 0, "frame width")
	flags.Int("height", 0, "frame height")
	flags.Uint32("rx-fifo-limit", 0, "largest endpoint payload size to use")
	flags.Int("frame-buffer-size", 0, "reassembly buffer size, 0 to size from negotiation")
	flags.Int("queue-depth", 0, "frames that may wait for the writer before dropping")
}
