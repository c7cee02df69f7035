package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcstream"
	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

func newFormatsCommand(s *settings) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "Print the descriptor catalog of a camera",
		Long: `Print the video control and streaming descriptors of a camera. With --file the
descriptors are read from a raw dump instead, such as the sysfs
/sys/bus/usb/devices/<port>/descriptors file.`,
		Example: `  uvchost formats -d /dev/bus/usb/001/004
  uvchost formats --file /sys/bus/usb/devices/1-1/descriptors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, ifaces, closeFn, err := loadCatalog(s, file)
			if err != nil {
				return err
			}
			defer closeFn()
			printCatalog(cmd.OutOrStdout(), cat, ifaces)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read descriptors from a raw dump")
	return cmd
}

// loadCatalog parses a raw descriptor dump when file is set and otherwise
// opens the configured device.
func loadCatalog(s *settings, file string) (*descriptors.Catalog, []*transfers.StreamingInterface, func(), error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "read %s", file)
		}
		cat := descriptors.NewCatalog(descriptors.DefaultLimits())
		if err := cat.ParseConfiguration(raw); err != nil {
			return nil, nil, nil, err
		}
		return cat, nil, func() {}, nil
	}
	dev, info, err := openDevice(s)
	if err != nil {
		return nil, nil, nil, err
	}
	return info.Catalog, info.StreamingInterfaces, func() { dev.Close() }, nil
}

func openDevice(s *settings) (*uvc.Device, *uvc.DeviceInfo, error) {
	if s.cfg.Device == "" {
		return nil, nil, errors.New("no device given, use --device or set device in the config file")
	}
	dev, err := uvc.Open(s.cfg.Device)
	if err != nil {
		return nil, nil, err
	}
	info, err := dev.DeviceInfo(descriptors.DefaultLimits())
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return dev, info, nil
}
