// Package uvc opens a USB Video Class camera through usbfs and exposes its
// descriptor catalog and streaming interfaces.
package uvc

import (
	"sort"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/kevmo314/go-uvcstream/pkg/descriptors"
	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

type Device struct {
	handle *usb.DeviceHandle
	log    *logrus.Entry
}

// Open opens a usbfs device node such as /dev/bus/usb/001/004.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	d, err := NewDevice(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	d.log = d.log.WithField("path", path)
	return d, nil
}

// NewDevice wraps an already open usbfs file descriptor, for example one
// handed over by Android's UsbDeviceConnection. The device takes ownership of
// fd.
func NewDevice(fd int) (*Device, error) {
	handle, err := usb.WrapSysDevice(fd)
	if err != nil {
		return nil, errors.Wrap(err, "wrap usb device")
	}
	return &Device{
		handle: handle,
		log:    logrus.WithField("component", "device"),
	}, nil
}

// Handle exposes the underlying go-usb handle.
func (d *Device) Handle() *usb.DeviceHandle { return d.handle }

func (d *Device) Close() error {
	return d.handle.Close()
}

// DeviceInfo is everything DeviceInfo learned from the first configuration.
type DeviceInfo struct {
	Catalog *descriptors.Catalog

	// ControlInterface is the bInterfaceNumber of the VideoControl interface.
	ControlInterface uint8

	StreamingInterfaces []*transfers.StreamingInterface
}

// UVCVersion is bcdUVC from the VideoControl header.
func (info *DeviceInfo) UVCVersion() descriptors.BinaryCodedDecimal {
	if info.Catalog.Header == nil {
		return 0
	}
	return info.Catalog.Header.UVC
}

// DeviceInfo reads the first configuration descriptor and parses the video
// function into a catalog bounded by limits.
func (d *Device) DeviceInfo(limits descriptors.Limits) (*DeviceInfo, error) {
	configDesc, err := d.handle.ConfigDescriptorByValue(0)
	if err != nil {
		return nil, errors.Wrap(err, "read config descriptor")
	}
	cat := descriptors.NewCatalog(limits)
	cat.Logger = d.log.WithField("component", "descriptors")
	control, err := buildCatalog(cat, configDesc)
	if err != nil {
		return nil, err
	}
	info := &DeviceInfo{Catalog: cat, ControlInterface: control}
	for _, alts := range groupAlternates(cat.Alternates) {
		info.StreamingInterfaces = append(info.StreamingInterfaces, transfers.NewStreamingInterface(d.handle, info.UVCVersion(), alts))
	}
	if len(info.StreamingInterfaces) == 0 {
		return nil, ErrNoStreamingInterface
	}
	d.log.WithFields(logrus.Fields{
		"uvc":       info.UVCVersion(),
		"streaming": len(info.StreamingInterfaces),
		"skipped":   cat.Skipped,
	}).Debug("parsed device info")
	return info, nil
}

// buildCatalog feeds every video interface's class-specific block into cat
// and records the alternate settings of the streaming interfaces. It returns
// the VideoControl interface number.
func buildCatalog(cat *descriptors.Catalog, configDesc *usb.ConfigDescriptor) (uint8, error) {
	if !hasVideoInterface(configDesc) {
		return 0, ErrNotVideoDevice
	}
	control := -1
	for _, iface := range configDesc.Interfaces {
		for _, alt := range iface.AltSettings {
			if descriptors.ClassCode(alt.InterfaceClass) != descriptors.ClassCodeVideo {
				continue
			}
			subclass := descriptors.SubclassCode(alt.InterfaceSubClass)
			if subclass == descriptors.SubclassCodeVideoControl && control < 0 {
				control = int(alt.InterfaceNumber)
			}
			if err := cat.ParseBlock(subclass, alt.Extra); err != nil {
				return 0, errors.Wrapf(err, "interface %d alternate %d", alt.InterfaceNumber, alt.AlternateSetting)
			}
			if subclass != descriptors.SubclassCodeVideoStreaming {
				continue
			}
			as := descriptors.AlternateSetting{InterfaceNumber: alt.InterfaceNumber, AlternateSetting: alt.AlternateSetting}
			for _, ep := range alt.Endpoints {
				as.Endpoints = append(as.Endpoints, descriptors.VideoDataEndpointDescriptor{
					EndpointAddress:   ep.EndpointAddr,
					AttributesBitmask: ep.Attributes,
					MaxPacketSize:     ep.MaxPacketSize,
					Interval:          ep.Interval,
				})
			}
			cat.Alternates = append(cat.Alternates, as)
		}
	}
	if control < 0 {
		return 0, ErrNoVideoControl
	}
	return uint8(control), nil
}

// groupAlternates splits alternate settings by interface number, ordered by
// interface number.
func groupAlternates(alts []descriptors.AlternateSetting) [][]descriptors.AlternateSetting {
	byNumber := map[uint8][]descriptors.AlternateSetting{}
	var numbers []uint8
	for _, as := range alts {
		if _, ok := byNumber[as.InterfaceNumber]; !ok {
			numbers = append(numbers, as.InterfaceNumber)
		}
		byNumber[as.InterfaceNumber] = append(byNumber[as.InterfaceNumber], as)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	groups := make([][]descriptors.AlternateSetting, 0, len(numbers))
	for _, n := range numbers {
		groups = append(groups, byNumber[n])
	}
	return groups
}
