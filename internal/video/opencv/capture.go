// Package opencv decodes videos with OpenCV through gocv.
package opencv

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"incidenttagger/internal/video"
)

// Opener opens files with gocv.VideoCaptureFile.
type Opener struct{}

// NewOpener returns a gocv-backed video.Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open starts decoding path.
func (o *Opener) Open(ctx context.Context, path string) (video.Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("open video %s: capture not opened", path)
	}

	return &captureSource{
		capture: capture,
		mat:     gocv.NewMat(),
		fps:     capture.Get(gocv.VideoCaptureFPS),
	}, nil
}

// captureSource reuses one Mat for every decoded frame.
type captureSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	fps     float64
	hasMat  bool
	closed  bool
}

// Next reads the next frame. OpenCV does not separate end of stream from a
// decode error, so Err is always nil.
func (s *captureSource) Next() bool {
	if s.closed {
		return false
	}
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		s.hasMat = false
		return false
	}
	s.hasMat = true
	return true
}

func (s *captureSource) JPEG() ([]byte, error) {
	if !s.hasMat {
		return nil, fmt.Errorf("no current frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, s.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

func (s *captureSource) FPS() float64 {
	return s.fps
}

func (s *captureSource) Err() error {
	return nil
}

func (s *captureSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.mat.Close()
	return s.capture.Close()
}
