package uvc

import "github.com/pkg/errors"

var (
	ErrNoVideoControl       = errors.New("video control interface not found")
	ErrNoStreamingInterface = errors.New("video streaming interface not found")
	ErrNotVideoDevice       = errors.New("not a video device")
)
