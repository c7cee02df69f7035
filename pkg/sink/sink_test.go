package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

func TestDirectoryWritesBySequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	d, err := NewDirectory(dir, Extension(transfers.EncodingMJPEG))
	require.NoError(t, err)

	require.NoError(t, d.WriteFrame(transfers.Frame{Seq: 7, Data: []byte{0xff, 0xd8}}))

	data, err := os.ReadFile(filepath.Join(dir, "frame-000007.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", Extension(transfers.EncodingMJPEG))
	assert.Equal(t, "yuy2", Extension(transfers.EncodingYUY2))
}

type recordingSink struct {
	seqs   []uint64
	err    error
	closed bool
}

func (r *recordingSink) WriteFrame(f transfers.Frame) error {
	r.seqs = append(r.seqs, f.Seq)
	return r.err
}

func (r *recordingSink) Close() error { r.closed = true; return nil }

func TestTeeStopsAtFirstError(t *testing.T) {
	a, b := &recordingSink{err: errors.New("full")}, &recordingSink{}
	tee := Tee{a, b}

	assert.Error(t, tee.WriteFrame(transfers.Frame{Seq: 1}))
	assert.Equal(t, []uint64{1}, a.seqs)
	assert.Empty(t, b.seqs)

	require.NoError(t, tee.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestFrameEncoding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrame(&buf, transfers.Frame{Seq: 0x0102, Data: []byte("abc")}))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2, 0, 0, 0, 3, 'a', 'b', 'c'}, buf.Bytes())

	f, err := DecodeFrame(bytes.NewReader(buf.Bytes()), 16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102), f.Seq)
	assert.Equal(t, []byte("abc"), f.Data)
}

func TestDecodeFrameLimits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrame(&buf, transfers.Frame{Seq: 1, Data: make([]byte, 32)}))

	_, err := DecodeFrame(bytes.NewReader(buf.Bytes()), 31)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))

	_, err = DecodeFrame(bytes.NewReader(buf.Bytes()[:20]), 64)
	assert.Error(t, err)
}
