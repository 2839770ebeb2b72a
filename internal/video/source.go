// Package video decodes uploaded incident videos frame by frame.
package video

import "context"

// Source yields decoded frames one at a time.
//
// Next advances to the next frame and reports whether one was decoded. It
// returns false both at end of stream and on a read error; Err tells them
// apart for logging. JPEG encodes the current frame.
type Source interface {
	Next() bool
	JPEG() ([]byte, error)
	FPS() float64
	Err() error
	Close() error
}

// Opener opens a Source for a video file on disk.
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, path string) (Source, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string) (Source, error) {
	return f(ctx, path)
}
