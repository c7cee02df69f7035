package uvc

import (
	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
)

// DeviceSummary describes one enumerated USB device.
type DeviceSummary struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	USBVersion   descriptors.BinaryCodedDecimal
	Manufacturer string
	Product      string
	Serial       string

	// Video is set when the active configuration has a video class
	// interface. It stays false when the device could not be opened.
	Video bool
	// OpenError is why the device could not be opened, if it could not.
	OpenError error
}

// ListDevices enumerates usbfs devices and probes each for a video
// interface.
func ListDevices() ([]DeviceSummary, error) {
	devices, err := usb.DeviceList()
	if err != nil {
		return nil, errors.Wrap(err, "list usb devices")
	}
	summaries := make([]DeviceSummary, 0, len(devices))
	for i := range devices {
		dev := devices[i]
		s := DeviceSummary{
			Path:       dev.Path,
			VendorID:   dev.Descriptor.VendorID,
			ProductID:  dev.Descriptor.ProductID,
			USBVersion: descriptors.BinaryCodedDecimal(dev.Descriptor.USBVersion),
		}
		if dev.SysfsStrings != nil {
			s.Manufacturer = dev.SysfsStrings.Manufacturer
			s.Product = dev.SysfsStrings.Product
			s.Serial = dev.SysfsStrings.Serial
		}
		handle, err := dev.Open()
		if err != nil {
			s.OpenError = err
			summaries = append(summaries, s)
			continue
		}
		configDesc, err := handle.GetActiveConfigDescriptor()
		if err != nil {
			logrus.WithError(err).WithField("path", s.Path).Debug("read active config descriptor")
		} else {
			s.Video = hasVideoInterface(configDesc)
		}
		handle.Close()
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func hasVideoInterface(configDesc *usb.ConfigDescriptor) bool {
	for _, iface := range configDesc.Interfaces {
		for _, alt := range iface.AltSettings {
			if descriptors.ClassCode(alt.InterfaceClass) == descriptors.ClassCodeVideo {
				return true
			}
		}
	}
	return false
}
