package descriptors

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestVideoProbeCommitControl_RoundTripUVC15(t *testing.T) {
	original := &VideoProbeCommitControl{
		HintBitmask:            HintFrameInterval,
		FormatIndex:            1,
		FrameIndex:             2,
		FrameInterval:          333333 * 100 * time.Nanosecond,
		MaxVideoFrameSize:      640 * 480 * 2,
		MaxPayloadTransferSize: 3072,
		ClockFrequency:         48000000,
		PreferedVersion:        0x01,
		MaxVersion:             0x01,
		RateControlModes:       0x0102,
		LayoutPerStream:        [4]uint16{1, 2, 3, 4},
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if len(data) != ProbeCommitSizeUVC15 {
		t.Fatalf("MarshalBinary length = %d, want %d", len(data), ProbeCommitSizeUVC15)
	}

	decoded := &VideoProbeCommitControl{}
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if *decoded != *original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestVideoProbeCommitControl_UnmarshalBinaryUVC10(t *testing.T) {
	buf := make([]byte, ProbeCommitSizeUVC10)
	buf[2] = 1
	buf[3] = 2
	buf[4], buf[5], buf[6], buf[7] = 0x15, 0x16, 0x05, 0x00     // 333333
	buf[18], buf[19], buf[20], buf[21] = 0x00, 0x00, 0x10, 0x00 // 1048576

	vpcc := &VideoProbeCommitControl{ClockFrequency: 7}
	if err := vpcc.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if vpcc.FormatIndex != 1 || vpcc.FrameIndex != 2 {
		t.Errorf("indexes = %d/%d, want 1/2", vpcc.FormatIndex, vpcc.FrameIndex)
	}
	if vpcc.FrameInterval != 33333300*time.Nanosecond {
		t.Errorf("FrameInterval = %v, want 33.3333ms", vpcc.FrameInterval)
	}
	if vpcc.MaxVideoFrameSize != 1048576 {
		t.Errorf("MaxVideoFrameSize = %d, want 1048576", vpcc.MaxVideoFrameSize)
	}
	if vpcc.ClockFrequency != 7 {
		t.Errorf("ClockFrequency = %d, a 1.0 payload must leave it untouched", vpcc.ClockFrequency)
	}
}

func TestVideoProbeCommitControl_MarshalIntoRevisions(t *testing.T) {
	vpcc := &VideoProbeCommitControl{
		FormatIndex:       1,
		FrameIndex:        3,
		MaxVideoFrameSize: 1024,
		ClockFrequency:    48000000,
		PreferedVersion:   0x01,
		Usage:             9,
	}

	buf26 := make([]byte, ProbeCommitSizeUVC10)
	if err := vpcc.MarshalInto(buf26); err != nil {
		t.Fatalf("MarshalInto(26) failed: %v", err)
	}
	if buf26[2] != 1 || buf26[3] != 3 {
		t.Errorf("indexes = %d/%d, want 1/3", buf26[2], buf26[3])
	}

	buf34 := make([]byte, ProbeCommitSizeUVC11)
	if err := vpcc.MarshalInto(buf34); err != nil {
		t.Fatalf("MarshalInto(34) failed: %v", err)
	}
	if buf34[31] != 0x01 {
		t.Errorf("buf34[31] (PreferedVersion) = %d, want 1", buf34[31])
	}

	buf48 := make([]byte, ProbeCommitSizeUVC15)
	if err := vpcc.MarshalInto(buf48); err != nil {
		t.Fatalf("MarshalInto(48) failed: %v", err)
	}
	if buf48[34] != 9 {
		t.Errorf("buf48[34] (Usage) = %d, want 9", buf48[34])
	}
}

func TestVideoProbeCommitControl_ShortBuffer(t *testing.T) {
	vpcc := &VideoProbeCommitControl{}
	if err := vpcc.MarshalInto(make([]byte, 25)); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("MarshalInto(25) = %v, want io.ErrShortBuffer", err)
	}
	if err := vpcc.UnmarshalBinary(make([]byte, 12)); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("UnmarshalBinary(12) = %v, want io.ErrShortBuffer", err)
	}
}

func TestVideoProbeCommitControl_ByteOrder(t *testing.T) {
	vpcc := &VideoProbeCommitControl{
		HintBitmask:       0x1234,
		MaxVideoFrameSize: 0xDEADBEEF,
	}

	data, _ := vpcc.MarshalBinary()

	if data[0] != 0x34 || data[1] != 0x12 {
		t.Errorf("HintBitmask bytes = [%02x, %02x], want [34, 12]", data[0], data[1])
	}
	if !bytes.Equal(data[18:22], []byte{0xEF, 0xBE, 0xAD, 0xDE}) {
		t.Errorf("MaxVideoFrameSize bytes = %x, want EFBEADDE", data[18:22])
	}
}

func TestProbeCommitSize(t *testing.T) {
	tests := []struct {
		bcd  BinaryCodedDecimal
		want int
	}{
		{0x0100, ProbeCommitSizeUVC10},
		{0x0110, ProbeCommitSizeUVC11},
		{0x0150, ProbeCommitSizeUVC15},
	}
	for _, tt := range tests {
		if got := ProbeCommitSize(tt.bcd); got != tt.want {
			t.Errorf("ProbeCommitSize(%s) = %d, want %d", tt.bcd, got, tt.want)
		}
	}
	if got := VideoStreamingControlSelectorCommit.Value(); got != 0x0200 {
		t.Errorf("commit wValue = %#04x, want 0x0200", got)
	}
}
