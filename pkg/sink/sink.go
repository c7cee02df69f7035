// Package sink delivers completed frames to a directory or to a remote
// receiver over QUIC.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

// Sink consumes frames on the consumer goroutine of a FrameQueue. The frame
// data is only valid for the duration of WriteFrame.
type Sink interface {
	WriteFrame(f transfers.Frame) error
	Close() error
}

// Extension is the file extension used for frames of enc.
func Extension(enc transfers.Encoding) string {
	switch enc {
	case transfers.EncodingMJPEG:
		return "jpg"
	case transfers.EncodingYUY2:
		return "yuy2"
	}
	return "bin"
}

// Directory writes every frame to its own file named by sequence number.
type Directory struct {
	dir string
	ext string
	log *logrus.Entry
}

func NewDirectory(dir, ext string) (*Directory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	return &Directory{
		dir: dir,
		ext: ext,
		log: logrus.WithFields(logrus.Fields{"component": "sink", "dir": dir}),
	}, nil
}

// Path is the file a frame with sequence number seq is written to.
func (d *Directory) Path(seq uint64) string {
	return filepath.Join(d.dir, fmt.Sprintf("frame-%06d.%s", seq, d.ext))
}

func (d *Directory) WriteFrame(f transfers.Frame) error {
	path := d.Path(f.Seq)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	d.log.WithFields(logrus.Fields{"seq": f.Seq, "size": len(f.Data)}).Debug("wrote frame")
	return nil
}

func (d *Directory) Close() error { return nil }

// Tee writes each frame to every sink in order and stops at the first
// error.
type Tee []Sink

func (t Tee) WriteFrame(f transfers.Frame) error {
	for _, s := range t {
		if err := s.WriteFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (t Tee) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
