package descriptors

import (
	"encoding/binary"
	"io"
	"time"
)

// VideoStreamingControlSelector as defined in UVC spec 1.5, A.9.8.
type VideoStreamingControlSelector uint8

const (
	VideoStreamingControlSelectorUndefined VideoStreamingControlSelector = 0x00
	VideoStreamingControlSelectorProbe     VideoStreamingControlSelector = 0x01
	VideoStreamingControlSelectorCommit    VideoStreamingControlSelector = 0x02
)

// Value is the wValue of a class request addressing this control.
func (s VideoStreamingControlSelector) Value() uint16 {
	return uint16(s) << 8
}

// Probe/commit payload sizes for each UVC revision.
const (
	ProbeCommitSizeUVC10 = 26
	ProbeCommitSizeUVC11 = 34
	ProbeCommitSizeUVC15 = 48
)

// ProbeCommitSize returns the probe/commit payload length a device
// reporting bcdUVC expects.
func ProbeCommitSize(bcdUVC BinaryCodedDecimal) int {
	switch {
	case bcdUVC >= 0x0150:
		return ProbeCommitSizeUVC15
	case bcdUVC >= 0x0110:
		return ProbeCommitSizeUVC11
	}
	return ProbeCommitSizeUVC10
}

// VideoProbeCommitControl as defined in UVC spec 1.5, 4.3.1.1.
type VideoProbeCommitControl struct {
	HintBitmask            uint16
	FormatIndex            uint8
	FrameIndex             uint8
	FrameInterval          time.Duration
	KeyFrameRate           uint16
	PFrameRate             uint16
	CompQuality            uint16
	CompWindowSize         uint16
	Delay                  uint16
	MaxVideoFrameSize      uint32
	MaxPayloadTransferSize uint32

	// added in uvc 1.1
	ClockFrequency     uint32
	FramingInfoBitmask uint8
	PreferedVersion    uint8
	MinVersion         uint8
	MaxVersion         uint8

	// added in uvc 1.5
	Usage                     uint8
	BitDepthLuma              uint8
	SettingsBitmask           uint8
	MaxNumberOfRefFramesPlus1 uint8
	RateControlModes          uint16
	LayoutPerStream           [4]uint16
}

// HintFrameInterval asks the device to keep dwFrameInterval fixed.
const HintFrameInterval = 0x0001

// MarshalInto encodes the control into buf. The length of buf selects the
// revision: 26 bytes for UVC 1.0, 34 for 1.1 and 48 for 1.5.
func (vpcc *VideoProbeCommitControl) MarshalInto(buf []byte) error {
	if len(buf) < ProbeCommitSizeUVC10 {
		return io.ErrShortBuffer
	}
	binary.LittleEndian.PutUint16(buf[0:2], vpcc.HintBitmask)
	buf[2] = vpcc.FormatIndex
	buf[3] = vpcc.FrameIndex
	binary.LittleEndian.PutUint32(buf[4:8], uint32(vpcc.FrameInterval/100/time.Nanosecond))
	binary.LittleEndian.PutUint16(buf[8:10], vpcc.KeyFrameRate)
	binary.LittleEndian.PutUint16(buf[10:12], vpcc.PFrameRate)
	binary.LittleEndian.PutUint16(buf[12:14], vpcc.CompQuality)
	binary.LittleEndian.PutUint16(buf[14:16], vpcc.CompWindowSize)
	binary.LittleEndian.PutUint16(buf[16:18], vpcc.Delay)
	binary.LittleEndian.PutUint32(buf[18:22], vpcc.MaxVideoFrameSize)
	binary.LittleEndian.PutUint32(buf[22:26], vpcc.MaxPayloadTransferSize)
	if len(buf) >= ProbeCommitSizeUVC11 {
		binary.LittleEndian.PutUint32(buf[26:30], vpcc.ClockFrequency)
		buf[30] = vpcc.FramingInfoBitmask
		buf[31] = vpcc.PreferedVersion
		buf[32] = vpcc.MinVersion
		buf[33] = vpcc.MaxVersion
	}
	if len(buf) >= ProbeCommitSizeUVC15 {
		buf[34] = vpcc.Usage
		buf[35] = vpcc.BitDepthLuma
		buf[36] = vpcc.SettingsBitmask
		buf[37] = vpcc.MaxNumberOfRefFramesPlus1
		binary.LittleEndian.PutUint16(buf[38:40], vpcc.RateControlModes)
		for i, v := range vpcc.LayoutPerStream {
			binary.LittleEndian.PutUint16(buf[40+2*i:42+2*i], v)
		}
	}
	return nil
}

func (vpcc *VideoProbeCommitControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ProbeCommitSizeUVC15)
	return buf, vpcc.MarshalInto(buf)
}

func (vpcc *VideoProbeCommitControl) UnmarshalBinary(buf []byte) error {
	// this payload is not length and control-selector prefixed because the
	// control transfer data stage carries it bare.
	if len(buf) < ProbeCommitSizeUVC10 {
		return io.ErrShortBuffer
	}
	vpcc.HintBitmask = binary.LittleEndian.Uint16(buf[0:2])
	vpcc.FormatIndex = buf[2]
	vpcc.FrameIndex = buf[3]
	vpcc.FrameInterval = time.Duration(binary.LittleEndian.Uint32(buf[4:8])) * 100 * time.Nanosecond

	vpcc.KeyFrameRate = binary.LittleEndian.Uint16(buf[8:10])
	vpcc.PFrameRate = binary.LittleEndian.Uint16(buf[10:12])

	vpcc.CompQuality = binary.LittleEndian.Uint16(buf[12:14])
	vpcc.CompWindowSize = binary.LittleEndian.Uint16(buf[14:16])

	vpcc.Delay = binary.LittleEndian.Uint16(buf[16:18])

	vpcc.MaxVideoFrameSize = binary.LittleEndian.Uint32(buf[18:22])
	vpcc.MaxPayloadTransferSize = binary.LittleEndian.Uint32(buf[22:26])

	if len(buf) >= ProbeCommitSizeUVC11 {
		vpcc.ClockFrequency = binary.LittleEndian.Uint32(buf[26:30])
		vpcc.FramingInfoBitmask = buf[30]
		vpcc.PreferedVersion = buf[31]
		vpcc.MinVersion = buf[32]
		vpcc.MaxVersion = buf[33]
	}

	if len(buf) >= ProbeCommitSizeUVC15 {
		vpcc.Usage = buf[34]
		vpcc.BitDepthLuma = buf[35]
		vpcc.SettingsBitmask = buf[36]
		vpcc.MaxNumberOfRefFramesPlus1 = buf[37]
		vpcc.RateControlModes = binary.LittleEndian.Uint16(buf[38:40])
		for i := range vpcc.LayoutPerStream {
			vpcc.LayoutPerStream[i] = binary.LittleEndian.Uint16(buf[40+2*i : 42+2*i])
		}
	}
	return nil
}
